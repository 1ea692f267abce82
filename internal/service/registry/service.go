// Package registry owns the per-user profiles.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/heartmarshall/wordstream-bot/internal/domain"
)

type userStore interface {
	Users(ctx context.Context) map[int64]domain.UserProfile
	UpdateUsers(ctx context.Context, fn func(users map[int64]domain.UserProfile) error) error
}

// Service implements create-or-fetch and serialized updates of profiles.
type Service struct {
	log   *slog.Logger
	users userStore
}

func NewService(logger *slog.Logger, users userStore) *Service {
	return &Service{
		log:   logger.With("service", "registry"),
		users: users,
	}
}

// EnsureUser returns the stored profile, creating it with defaults when
// absent. The username hint is only used on creation.
func (s *Service) EnsureUser(ctx context.Context, id int64, usernameHint string) (domain.UserProfile, error) {
	var (
		profile domain.UserProfile
		created bool
	)
	err := s.users.UpdateUsers(ctx, func(users map[int64]domain.UserProfile) error {
		if p, ok := users[id]; ok {
			profile = p
			return errNoChange
		}
		profile = domain.NewUserProfile(usernameHint)
		users[id] = profile
		created = true
		return nil
	})
	if err != nil && !errors.Is(err, errNoChange) {
		return domain.UserProfile{}, fmt.Errorf("registry.EnsureUser: %w", err)
	}

	if created {
		s.log.InfoContext(ctx, "user registered", slog.Int64("user_id", id))
	}
	return profile.Clone(), nil
}

// Lookup returns the profile and whether it exists.
func (s *Service) Lookup(ctx context.Context, id int64) (domain.UserProfile, bool) {
	p, ok := s.users.Users(ctx)[id]
	return p, ok
}

// UpdateUser applies fn to one profile inside a single load-mutate-save
// cycle. An error from fn aborts the write and is returned as is.
func (s *Service) UpdateUser(ctx context.Context, id int64, fn func(p *domain.UserProfile) error) (domain.UserProfile, error) {
	var updated domain.UserProfile
	err := s.users.UpdateUsers(ctx, func(users map[int64]domain.UserProfile) error {
		p, ok := users[id]
		if !ok {
			return domain.ErrNotFound
		}
		if err := fn(&p); err != nil {
			return err
		}
		users[id] = p
		updated = p
		return nil
	})
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("registry.UpdateUser: %w", err)
	}
	return updated.Clone(), nil
}

// UpdateAll applies fn to every profile in one cycle.
func (s *Service) UpdateAll(ctx context.Context, fn func(id int64, p *domain.UserProfile)) error {
	err := s.users.UpdateUsers(ctx, func(users map[int64]domain.UserProfile) error {
		for id, p := range users {
			fn(id, &p)
			users[id] = p
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("registry.UpdateAll: %w", err)
	}
	return nil
}

// List returns all users sorted by id.
func (s *Service) List(ctx context.Context) []domain.UserEntry {
	users := s.users.Users(ctx)
	out := make([]domain.UserEntry, 0, len(users))
	for id, p := range users {
		out = append(out, domain.UserEntry{ID: id, Profile: p})
	}
	slices.SortFunc(out, func(a, b domain.UserEntry) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}

// Stats counts registered, premium and pending users.
func (s *Service) Stats(ctx context.Context) domain.UserStats {
	var st domain.UserStats
	for _, p := range s.users.Users(ctx) {
		st.Total++
		if p.IsPremium {
			st.Premium++
		}
		if p.PendingPremium {
			st.Pending++
		}
	}
	return st
}
