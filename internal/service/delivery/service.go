// Package delivery sends each due user their daily words and resets the
// daily translation counters.
package delivery

import (
	"context"
	"log/slog"
	"sync"

	"github.com/heartmarshall/wordstream-bot/internal/domain"
)

type registry interface {
	List(ctx context.Context) []domain.UserEntry
	UpdateUser(ctx context.Context, id int64, fn func(p *domain.UserProfile) error) (domain.UserProfile, error)
	UpdateAll(ctx context.Context, fn func(id int64, p *domain.UserProfile)) error
}

type corpus interface {
	List(ctx context.Context) []domain.VocabularyItem
}

// notifier delivers messages to users through the chat transport.
type notifier interface {
	SendWords(ctx context.Context, userID int64, items []domain.VocabularyItem) error
	SendExhausted(ctx context.Context, userID int64) error
}

// Service runs delivery ticks and daily resets.
type Service struct {
	log      *slog.Logger
	registry registry
	corpus   corpus
	notifier notifier
	workers  int

	resetMu   sync.Mutex
	lastReset string
}

// NewService creates a delivery service. workers bounds concurrent
// per-user deliveries within one tick.
func NewService(logger *slog.Logger, registry registry, corpus corpus, notifier notifier, workers int) *Service {
	if workers <= 0 {
		workers = 1
	}
	return &Service{
		log:      logger.With("service", "delivery"),
		registry: registry,
		corpus:   corpus,
		notifier: notifier,
		workers:  workers,
	}
}
