package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/wordstream-bot/internal/adapter/provider/freedict"
	"github.com/heartmarshall/wordstream-bot/internal/adapter/telegram"
	"github.com/heartmarshall/wordstream-bot/internal/config"
	"github.com/heartmarshall/wordstream-bot/internal/service/corpus"
	"github.com/heartmarshall/wordstream-bot/internal/service/delivery"
	"github.com/heartmarshall/wordstream-bot/internal/service/dialogue"
	"github.com/heartmarshall/wordstream-bot/internal/service/quota"
	"github.com/heartmarshall/wordstream-bot/internal/service/registry"
	"github.com/heartmarshall/wordstream-bot/internal/transport/bot"
	"github.com/heartmarshall/wordstream-bot/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, connects
// the storage and session backends, fills the corpus, then runs the bot
// poller, the scheduler and the ops HTTP server until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, closeLog, err := NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog() //nolint:errcheck

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("storage", cfg.Storage.Driver),
		slog.String("session", cfg.Session.Driver),
		slog.String("translate", cfg.Translate.Provider),
	)

	var cleanup cleanupStack
	defer cleanup.run()

	// --- Infrastructure ---
	store, err := openStore(ctx, cfg, logger, &cleanup)
	if err != nil {
		return err
	}
	sessions, sessionPing, err := openSessions(ctx, cfg, logger, &cleanup)
	if err != nil {
		return err
	}
	translator, err := newTranslator(cfg.Translate, logger)
	if err != nil {
		return err
	}
	pool, err := corpus.SeedPool()
	if err != nil {
		return fmt.Errorf("app: seed pool: %w", err)
	}

	tg := telegram.NewClient(cfg.Telegram, logger)
	me, err := tg.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("app: telegram getMe: %w", err)
	}
	logger.Info("telegram authorized", slog.String("bot", me.Username))

	// --- Services ---
	registrySvc := registry.NewService(logger, store)
	corpusSvc := corpus.NewService(logger, store,
		freedict.NewProviderWithURL(cfg.Corpus.DictionaryURL, logger),
		translator, pool, nil,
		corpus.Config{
			LowerBound:    cfg.Corpus.LowerBound,
			EnrichTimeout: cfg.Corpus.EnrichTimeout,
			SeedLang:      cfg.Corpus.SeedLang,
		},
	)
	dialogueSvc := dialogue.NewService(logger, sessions, registrySvc,
		dialogue.Machine{MaxWordsPerDay: cfg.Registration.MaxWordsPerDay})
	quotaSvc := quota.NewService(logger, registrySvc, translator, quota.Config{
		DailyLimit: cfg.Quota.DailyLimit,
		AdminID:    cfg.Telegram.AdminID,
		Timeout:    cfg.Translate.Timeout,
	})
	deliverySvc := delivery.NewService(logger, registrySvc, corpusSvc, bot.NewNotifier(tg), cfg.Delivery.Workers)

	added, err := corpusSvc.EnsureCorpus(ctx, cfg.Corpus.MinSize)
	if err != nil {
		return fmt.Errorf("app: ensure corpus: %w", err)
	}
	logger.Info("corpus ready", slog.Int("size", corpusSvc.Size(ctx)), slog.Int("added", added))

	// --- Transport ---
	poller := bot.New(logger, tg, dialogueSvc, registrySvc, quotaSvc, bot.Config{})
	scheduler := NewScheduler(logger, deliverySvc, corpusSvc, SchedulerConfig{
		TickInterval:   cfg.Delivery.TickInterval,
		FirstRunDelay:  cfg.Delivery.FirstRunDelay,
		ResetSpec:      cfg.Reset.Spec,
		RefillInterval: cfg.Corpus.RefillInterval,
		CorpusMinSize:  cfg.Corpus.MinSize,
		Location:       cfg.Scheduler.Location,
	})

	components := map[string]rest.Pinger{"storage": store}
	if sessionPing != nil {
		components["sessions"] = sessionPing
	}
	srv := &http.Server{
		Addr: net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler: rest.NewRouter(logger,
			rest.NewHealthHandler(components, BuildVersion()),
			rest.NewStatsHandler(registrySvc, corpusSvc),
		),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return poller.Run(gctx) })
	g.Go(func() error { return scheduler.Run(gctx) })
	g.Go(func() error {
		logger.Info("ops server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("app: http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	logger.Info("application stopped")
	return err
}
