// Package quota meters free translations and manages premium upgrades.
package quota

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/heartmarshall/wordstream-bot/internal/domain"
)

// ErrQuotaExceeded is returned when a non-premium user has used up the
// daily translation allowance.
var ErrQuotaExceeded = errors.New("daily translation quota exceeded")

type registry interface {
	Lookup(ctx context.Context, id int64) (domain.UserProfile, bool)
	UpdateUser(ctx context.Context, id int64, fn func(p *domain.UserProfile) error) (domain.UserProfile, error)
}

type translator interface {
	Translate(ctx context.Context, text, lang string) (string, bool, error)
}

// Config holds gate settings. AdminID 0 means nobody may approve upgrades.
type Config struct {
	DailyLimit int
	AdminID    int64
	Timeout    time.Duration
}

// Service is the gate in front of the translator.
type Service struct {
	log        *slog.Logger
	registry   registry
	translator translator
	cfg        Config
}

func NewService(logger *slog.Logger, registry registry, translator translator, cfg Config) *Service {
	return &Service{
		log:        logger.With("service", "quota"),
		registry:   registry,
		translator: translator,
		cfg:        cfg,
	}
}

// IsAdmin reports whether id is the configured administrator.
func (s *Service) IsAdmin(id int64) bool {
	return s.cfg.AdminID != 0 && id == s.cfg.AdminID
}

// AdminID returns the configured administrator id (0 if none).
func (s *Service) AdminID() int64 { return s.cfg.AdminID }

// Limit returns the daily allowance for non-premium users.
func (s *Service) Limit() int { return s.cfg.DailyLimit }
