package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/heartmarshall/wordstream-bot/internal/domain"
)

// ResetDaily zeroes every user's translation counter. It runs at most once
// per calendar date of now; a repeat on the same date returns false.
func (s *Service) ResetDaily(ctx context.Context, now time.Time) (bool, error) {
	date := now.Format(time.DateOnly)

	s.resetMu.Lock()
	defer s.resetMu.Unlock()

	if s.lastReset == date {
		return false, nil
	}

	reset := 0
	err := s.registry.UpdateAll(ctx, func(_ int64, p *domain.UserProfile) {
		if p.TranslationsToday != 0 {
			reset++
		}
		p.TranslationsToday = 0
	})
	if err != nil {
		return false, fmt.Errorf("delivery.ResetDaily: %w", err)
	}

	s.lastReset = date
	s.log.InfoContext(ctx, "daily counters reset", slog.String("date", date), slog.Int("users", reset))
	return true, nil
}
