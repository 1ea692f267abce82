package quota

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/wordstream-bot/internal/domain"
)

// RequestUpgrade marks id as waiting for premium. changed is false when
// the user is already premium or already pending; the caller notifies the
// administrator only when changed is true.
func (s *Service) RequestUpgrade(ctx context.Context, id int64) (bool, error) {
	changed := false
	_, err := s.registry.UpdateUser(ctx, id, func(p *domain.UserProfile) error {
		if p.IsPremium || p.PendingPremium {
			return nil
		}
		p.PendingPremium = true
		changed = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("quota.RequestUpgrade: %w", err)
	}

	if changed {
		s.log.InfoContext(ctx, "premium requested", slog.Int64("user_id", id))
	}
	return changed, nil
}

// ApproveUpgrade grants premium to targetID and clears the pending flag,
// whatever the prior state. Only the administrator may approve.
func (s *Service) ApproveUpgrade(ctx context.Context, actorID, targetID int64) (domain.UserProfile, error) {
	if !s.IsAdmin(actorID) {
		s.log.WarnContext(ctx, "premium approval denied",
			slog.Int64("actor_id", actorID),
			slog.Int64("target_id", targetID),
		)
		return domain.UserProfile{}, fmt.Errorf("quota.ApproveUpgrade: %w", domain.ErrForbidden)
	}

	p, err := s.registry.UpdateUser(ctx, targetID, func(p *domain.UserProfile) error {
		p.IsPremium = true
		p.PendingPremium = false
		return nil
	})
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("quota.ApproveUpgrade: %w", err)
	}

	s.log.InfoContext(ctx, "premium granted", slog.Int64("user_id", targetID))
	return p, nil
}
