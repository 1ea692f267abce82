package quota

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/wordstream-bot/internal/domain"
)

// Decision is the result of a quota check. Remaining is meaningless when
// Unlimited is set.
type Decision struct {
	Allowed   bool
	Unlimited bool
	Remaining int
	Limit     int
}

// TranslationResult is a gated translation. Found is false when the
// translator had no answer; nothing is charged then.
type TranslationResult struct {
	Text     string
	Found    bool
	Decision Decision
}

// AuthorizeTranslation checks whether id may translate now. Premium users
// are always allowed.
func (s *Service) AuthorizeTranslation(ctx context.Context, id int64) (Decision, error) {
	p, ok := s.registry.Lookup(ctx, id)
	if !ok {
		return Decision{}, fmt.Errorf("quota.AuthorizeTranslation: %w", domain.ErrNotFound)
	}
	return s.decide(p), nil
}

func (s *Service) decide(p domain.UserProfile) Decision {
	if p.IsPremium {
		return Decision{Allowed: true, Unlimited: true, Limit: s.cfg.DailyLimit}
	}
	remaining := max(s.cfg.DailyLimit-p.TranslationsToday, 0)
	return Decision{
		Allowed:   remaining > 0,
		Remaining: remaining,
		Limit:     s.cfg.DailyLimit,
	}
}

// RecordTranslation charges one translation to id and returns the
// decision as of after the charge. A free user already at the limit is not
// charged and gets ErrQuotaExceeded.
func (s *Service) RecordTranslation(ctx context.Context, id int64) (Decision, error) {
	var over Decision
	p, err := s.registry.UpdateUser(ctx, id, func(p *domain.UserProfile) error {
		if d := s.decide(*p); !d.Allowed {
			over = d
			return ErrQuotaExceeded
		}
		p.TranslationsToday++
		return nil
	})
	if errors.Is(err, ErrQuotaExceeded) {
		return over, ErrQuotaExceeded
	}
	if err != nil {
		return Decision{}, fmt.Errorf("quota.RecordTranslation: %w", err)
	}
	return s.decide(p), nil
}

// Translate authorizes, translates text into the user's target language,
// then records the use. A translator failure charges nothing.
func (s *Service) Translate(ctx context.Context, id int64, text string) (TranslationResult, error) {
	p, ok := s.registry.Lookup(ctx, id)
	if !ok {
		return TranslationResult{}, fmt.Errorf("quota.Translate: %w", domain.ErrNotFound)
	}

	d := s.decide(p)
	if !d.Allowed {
		return TranslationResult{Decision: d}, ErrQuotaExceeded
	}

	tctx := ctx
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		tctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	out, found, err := s.translator.Translate(tctx, text, p.TargetLang)
	if err != nil {
		s.log.WarnContext(ctx, "translation failed", slog.Int64("user_id", id), slog.String("error", err.Error()))
		return TranslationResult{Decision: d}, fmt.Errorf("quota.Translate: %w", err)
	}
	if !found {
		return TranslationResult{Decision: d}, nil
	}

	d, err = s.RecordTranslation(ctx, id)
	if errors.Is(err, ErrQuotaExceeded) {
		return TranslationResult{Decision: d}, ErrQuotaExceeded
	}
	if err != nil {
		return TranslationResult{}, fmt.Errorf("quota.Translate: %w", err)
	}

	return TranslationResult{Text: out, Found: true, Decision: d}, nil
}
