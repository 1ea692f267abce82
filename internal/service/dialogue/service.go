package dialogue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/wordstream-bot/internal/domain"
)

type sessionStore interface {
	Get(ctx context.Context, userID int64) (domain.RegistrationSession, bool, error)
	Put(ctx context.Context, s domain.RegistrationSession) error
	Delete(ctx context.Context, userID int64) error
}

type registry interface {
	EnsureUser(ctx context.Context, id int64, usernameHint string) (domain.UserProfile, error)
	UpdateUser(ctx context.Context, id int64, fn func(p *domain.UserProfile) error) (domain.UserProfile, error)
}

// Reply is what the transport renders after a dialogue step. Profile is
// set only when the dialogue completed.
type Reply struct {
	Effect  Effect
	Profile domain.UserProfile
}

// Service drives registration dialogues and commits finished ones.
type Service struct {
	log      *slog.Logger
	sessions sessionStore
	registry registry
	machine  Machine
}

func NewService(logger *slog.Logger, sessions sessionStore, registry registry, machine Machine) *Service {
	return &Service{
		log:      logger.With("service", "dialogue"),
		sessions: sessions,
		registry: registry,
		machine:  machine,
	}
}

// Start ensures the user exists and (re)starts the dialogue at the level
// question, discarding any partial answers.
func (s *Service) Start(ctx context.Context, id int64, username string) (Reply, error) {
	if _, err := s.registry.EnsureUser(ctx, id, username); err != nil {
		return Reply{}, fmt.Errorf("dialogue.Start: %w", err)
	}

	if err := s.sessions.Put(ctx, domain.NewRegistrationSession(id)); err != nil {
		return Reply{}, fmt.Errorf("dialogue.Start: %w", err)
	}

	s.log.DebugContext(ctx, "dialogue started", slog.Int64("user_id", id))
	return Reply{Effect: Effect{Kind: EffectPrompt, Field: FieldLevel}}, nil
}

// Handle feeds text into the user's active dialogue. active is false when
// the user has no dialogue in progress.
func (s *Service) Handle(ctx context.Context, id int64, text string) (reply Reply, active bool, err error) {
	sess, ok, err := s.sessions.Get(ctx, id)
	if err != nil {
		return Reply{}, false, fmt.Errorf("dialogue.Handle: %w", err)
	}
	if !ok || sess.State == domain.StateComplete {
		return Reply{}, false, nil
	}

	next, effect := s.machine.Transition(sess, text)

	switch effect.Kind {
	case EffectReprompt:
		return Reply{Effect: effect}, true, nil

	case EffectPrompt:
		if err := s.sessions.Put(ctx, next); err != nil {
			return Reply{}, true, fmt.Errorf("dialogue.Handle: %w", err)
		}
		return Reply{Effect: effect}, true, nil
	}

	// Completed: commit the draft, then drop the session. On a commit
	// failure the session stays at its previous step.
	profile, err := s.registry.UpdateUser(ctx, id, func(p *domain.UserProfile) error {
		next.Draft.Apply(p)
		return nil
	})
	if err != nil {
		return Reply{}, true, fmt.Errorf("dialogue.Handle: %w", err)
	}

	if err := s.sessions.Delete(ctx, id); err != nil {
		s.log.WarnContext(ctx, "delete finished session", slog.Int64("user_id", id), slog.String("error", err.Error()))
	}

	s.log.InfoContext(ctx, "registration completed",
		slog.Int64("user_id", id),
		slog.String("level", profile.Level.String()),
		slog.Int("words_per_day", profile.WordsPerDay),
		slog.String("time", profile.DeliveryTime.String()),
	)
	return Reply{Effect: effect, Profile: profile}, true, nil
}

// Active reports whether id has a dialogue in progress.
func (s *Service) Active(ctx context.Context, id int64) (bool, error) {
	sess, ok, err := s.sessions.Get(ctx, id)
	if err != nil {
		return false, fmt.Errorf("dialogue.Active: %w", err)
	}
	return ok && sess.State != domain.StateComplete, nil
}
