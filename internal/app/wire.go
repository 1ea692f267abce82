package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/wordstream-bot/internal/adapter/postgres"
	pguser "github.com/heartmarshall/wordstream-bot/internal/adapter/postgres/user"
	pgvocabulary "github.com/heartmarshall/wordstream-bot/internal/adapter/postgres/vocabulary"
	"github.com/heartmarshall/wordstream-bot/internal/adapter/provider/translate"
	"github.com/heartmarshall/wordstream-bot/internal/adapter/redis"
	"github.com/heartmarshall/wordstream-bot/internal/adapter/session"
	"github.com/heartmarshall/wordstream-bot/internal/adapter/storage"
	"github.com/heartmarshall/wordstream-bot/internal/adapter/storage/file"
	"github.com/heartmarshall/wordstream-bot/internal/config"
	"github.com/heartmarshall/wordstream-bot/internal/domain"
	"github.com/heartmarshall/wordstream-bot/internal/transport/rest"
)

type translator interface {
	Translate(ctx context.Context, text, lang string) (string, bool, error)
}

type sessionStore interface {
	Get(ctx context.Context, userID int64) (domain.RegistrationSession, bool, error)
	Put(ctx context.Context, s domain.RegistrationSession) error
	Delete(ctx context.Context, userID int64) error
}

// cleanupStack runs release funcs in reverse order.
type cleanupStack []func()

func (c *cleanupStack) push(fn func()) { *c = append(*c, fn) }

func (c *cleanupStack) run() {
	for i := len(*c) - 1; i >= 0; i-- {
		(*c)[i]()
	}
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger, cleanup *cleanupStack) (*storage.Store, error) {
	var backend storage.Backend

	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("app: connect to database: %w", err)
		}
		cleanup.push(pool.Close)

		if err := postgres.Migrate(ctx, pool, logger); err != nil {
			return nil, fmt.Errorf("app: migrate: %w", err)
		}

		tx := postgres.NewTxManager(pool)
		backend = storage.Combine(pguser.New(pool, tx), pgvocabulary.New(pool, tx), pool)
		logger.Info("storage connected", slog.String("driver", "postgres"))

	default:
		fb, err := file.New(cfg.Storage.Dir, logger)
		if err != nil {
			return nil, fmt.Errorf("app: open file storage: %w", err)
		}
		backend = fb
		logger.Info("storage opened", slog.String("driver", "file"), slog.String("dir", cfg.Storage.Dir))
	}

	return storage.New(backend, logger), nil
}

// openSessions returns the dialogue session store and, for networked
// stores, a pinger for health checks.
func openSessions(ctx context.Context, cfg *config.Config, logger *slog.Logger, cleanup *cleanupStack) (sessionStore, rest.Pinger, error) {
	if cfg.Session.Driver != config.SessionRedis {
		return session.NewMemory(), nil, nil
	}

	client, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("app: connect to redis: %w", err)
	}
	cleanup.push(func() { _ = client.Close() })

	logger.Info("session store connected", slog.String("driver", "redis"), slog.String("addr", cfg.Redis.Addr))
	ping := rest.PingFunc(func(ctx context.Context) error { return client.Ping(ctx).Err() })
	return redis.NewSessionStore(client, logger), ping, nil
}

func newTranslator(cfg config.TranslateConfig, logger *slog.Logger) (translator, error) {
	if cfg.Provider == config.TranslateOpenAI {
		return translate.NewOpenAI(cfg, logger), nil
	}
	st, err := translate.NewStatic()
	if err != nil {
		return nil, fmt.Errorf("app: static translator: %w", err)
	}
	return st, nil
}
