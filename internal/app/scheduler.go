package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/heartmarshall/wordstream-bot/internal/service/delivery"
	"github.com/heartmarshall/wordstream-bot/pkg/ctxutil"
)

type deliverer interface {
	Tick(ctx context.Context, now time.Time) delivery.TickResult
	ResetDaily(ctx context.Context, now time.Time) (bool, error)
}

type corpusFiller interface {
	EnsureCorpus(ctx context.Context, minimumSize int) (int, error)
}

// SchedulerConfig holds job timings.
type SchedulerConfig struct {
	TickInterval   time.Duration
	FirstRunDelay  time.Duration
	ResetSpec      string
	RefillInterval time.Duration
	CorpusMinSize  int
	Location       *time.Location
}

// Scheduler runs the delivery tick, the daily reset and the corpus refill.
// A job still running when its next run is due is skipped; a panicking
// job is logged and the schedule continues.
type Scheduler struct {
	log      *slog.Logger
	delivery deliverer
	corpus   corpusFiller
	cfg      SchedulerConfig
	now      func() time.Time
}

func NewScheduler(logger *slog.Logger, delivery deliverer, corpus corpusFiller, cfg SchedulerConfig) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Scheduler{
		log:      logger.With("component", "scheduler"),
		delivery: delivery,
		corpus:   corpus,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Run starts all jobs and blocks until ctx is cancelled, then waits for
// running jobs to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	clog := cronLogger{log: s.log}
	// Recover must sit inside SkipIfStillRunning, which does not release
	// its slot when the job panics.
	chain := cron.NewChain(cron.SkipIfStillRunning(clog), cron.Recover(clog))
	c := cron.New(cron.WithLocation(s.cfg.Location), cron.WithLogger(clog))

	// The first run shares the wrapped job so it cannot overlap a scheduled tick.
	tick := chain.Then(cron.FuncJob(func() { s.runTick(ctx) }))
	c.Schedule(cron.Every(s.cfg.TickInterval), tick)

	reset := chain.Then(cron.FuncJob(func() { s.runReset(ctx) }))
	if _, err := c.AddJob(s.cfg.ResetSpec, reset); err != nil {
		return fmt.Errorf("app.Scheduler: reset spec: %w", err)
	}
	c.Schedule(cron.Every(s.cfg.RefillInterval), chain.Then(cron.FuncJob(func() { s.runRefill(ctx) })))

	c.Start()
	s.log.InfoContext(ctx, "scheduler started",
		slog.Duration("tick_interval", s.cfg.TickInterval),
		slog.String("reset_spec", s.cfg.ResetSpec),
		slog.String("timezone", s.cfg.Location.String()),
	)

	first := time.NewTimer(s.cfg.FirstRunDelay)
	defer first.Stop()

	var wg sync.WaitGroup

	for {
		select {
		case <-first.C:
			wg.Add(1)
			go func() {
				defer wg.Done()
				tick.Run()
			}()
		case <-ctx.Done():
			<-c.Stop().Done()
			wg.Wait()
			s.log.Info("scheduler stopped")
			return nil
		}
	}
}

func (s *Scheduler) runTick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	ctx, reqID := ctxutil.WithNewRequestID(ctx)
	now := s.now().In(s.cfg.Location)

	res := s.delivery.Tick(ctx, now)

	level := slog.LevelDebug
	if res.Delivered > 0 || res.Failed > 0 {
		level = slog.LevelInfo
	}
	s.log.Log(ctx, level, "delivery tick",
		slog.String("request_id", reqID),
		slog.Int("checked", res.Checked),
		slog.Int("delivered", res.Delivered),
		slog.Int("words", res.Words),
		slog.Int("failed", res.Failed),
	)
}

func (s *Scheduler) runReset(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	ctx, reqID := ctxutil.WithNewRequestID(ctx)

	done, err := s.delivery.ResetDaily(ctx, s.now().In(s.cfg.Location))
	if err != nil {
		s.log.ErrorContext(ctx, "daily reset failed", slog.String("request_id", reqID), slog.String("error", err.Error()))
		return
	}
	if done {
		s.log.InfoContext(ctx, "daily counters reset", slog.String("request_id", reqID))
	}
}

func (s *Scheduler) runRefill(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	ctx, reqID := ctxutil.WithNewRequestID(ctx)

	added, err := s.corpus.EnsureCorpus(ctx, s.cfg.CorpusMinSize)
	if err != nil {
		s.log.ErrorContext(ctx, "corpus refill failed", slog.String("request_id", reqID), slog.String("error", err.Error()))
		return
	}
	if added > 0 {
		s.log.InfoContext(ctx, "corpus refilled", slog.String("request_id", reqID), slog.Int("added", added))
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append(keysAndValues, "error", err)...)
}
