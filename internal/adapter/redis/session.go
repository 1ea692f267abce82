// Package redis keeps registration dialogue sessions in Redis so that a
// half-finished dialogue survives a restart.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	goredis "github.com/redis/go-redis/v9"

	"github.com/heartmarshall/wordstream-bot/internal/config"
	"github.com/heartmarshall/wordstream-bot/internal/domain"
)

const keyPrefix = "dialogue:"

// NewClient connects to Redis and pings it.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// SessionStore stores one JSON value per user under "dialogue:<id>".
// Keys carry no TTL: an abandoned dialogue stays parked until /start.
type SessionStore struct {
	client *goredis.Client
	log    *slog.Logger
}

func NewSessionStore(client *goredis.Client, logger *slog.Logger) *SessionStore {
	return &SessionStore{client: client, log: logger.With("adapter", "redis_session")}
}

func key(userID int64) string {
	return keyPrefix + strconv.FormatInt(userID, 10)
}

func (s *SessionStore) Get(ctx context.Context, userID int64) (domain.RegistrationSession, bool, error) {
	data, err := s.client.Get(ctx, key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return domain.RegistrationSession{}, false, nil
		}
		return domain.RegistrationSession{}, false, fmt.Errorf("redis.Get: %w", err)
	}

	var sess domain.RegistrationSession
	if err := json.Unmarshal(data, &sess); err != nil || !sess.State.IsValid() {
		s.log.WarnContext(ctx, "dropping unreadable session", slog.Int64("user_id", userID))
		_ = s.client.Del(ctx, key(userID)).Err()
		return domain.RegistrationSession{}, false, nil
	}
	return sess, true, nil
}

func (s *SessionStore) Put(ctx context.Context, sess domain.RegistrationSession) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("redis.Put: encode: %w", err)
	}
	if err := s.client.Set(ctx, key(sess.UserID), data, 0).Err(); err != nil {
		return fmt.Errorf("redis.Put: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("redis.Delete: %w", err)
	}
	return nil
}
