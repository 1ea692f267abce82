// Package storage is the persistence store for the two bot collections:
// users and vocabulary. It wraps a Backend with the single-writer lock and
// the failure policy every caller relies on: reads never fail, a failed
// write leaves the in-memory copy authoritative, and an update is never
// built on a collection that could not be read.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/heartmarshall/wordstream-bot/internal/domain"
)

// ErrCorrupt reports a collection that exists but cannot be decoded.
var ErrCorrupt = errors.New("storage: corrupt collection")

// ErrUnavailable is returned by the Update methods when the collection
// could not be read and no earlier copy is known. Writing back the empty
// fallback would replace, and so delete, every stored record.
var ErrUnavailable = errors.New("storage: collection unavailable")

// UserBackend reads and replaces the whole users collection.
type UserBackend interface {
	ReadUsers(ctx context.Context) (map[int64]domain.UserProfile, error)
	WriteUsers(ctx context.Context, users map[int64]domain.UserProfile) error
}

// WordBackend reads and replaces the whole vocabulary collection.
// Order is insertion order and must survive a round trip.
type WordBackend interface {
	ReadWords(ctx context.Context) ([]domain.VocabularyItem, error)
	WriteWords(ctx context.Context, words []domain.VocabularyItem) error
}

// Backend is a durable home for both collections.
type Backend interface {
	UserBackend
	WordBackend
	Ping(ctx context.Context) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

type combined struct {
	UserBackend
	WordBackend
	pinger
}

// Combine assembles a Backend from separately implemented parts.
func Combine(users UserBackend, words WordBackend, p pinger) Backend {
	return combined{UserBackend: users, WordBackend: words, pinger: p}
}

// Store serializes all access to a Backend.
type Store struct {
	backend Backend
	log     *slog.Logger

	mu sync.Mutex
	// pendingUsers / pendingWords hold the last state whose write failed.
	// While set they are served instead of the backend.
	pendingUsers map[int64]domain.UserProfile
	pendingWords []domain.VocabularyItem
	usersDirty   bool
	wordsDirty   bool

	// lastUsers / lastWords are the last collections read from or written
	// to the backend. They stand in for a failed read.
	lastUsers map[int64]domain.UserProfile
	lastWords []domain.VocabularyItem
	haveUsers bool
	haveWords bool
}

// New creates a Store over backend.
func New(backend Backend, logger *slog.Logger) *Store {
	return &Store{
		backend: backend,
		log:     logger.With("adapter", "storage"),
	}
}

// Ping checks the backend.
func (s *Store) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

// Users returns a fresh copy of the users collection. On backend failure
// the error is logged and an empty map is returned.
func (s *Store) Users(ctx context.Context) map[int64]domain.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, _ := s.loadUsersLocked(ctx)
	return users
}

// SaveUsers replaces the users collection. Failures are logged, not returned.
func (s *Store) SaveUsers(ctx context.Context, users map[int64]domain.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.saveUsersLocked(ctx, cloneUsers(users))
}

// UpdateUsers runs load, fn, save as one serialized cycle. If fn returns an
// error nothing is written and the error is returned. If the collection
// cannot be read, fn is not called and ErrUnavailable is returned.
func (s *Store) UpdateUsers(ctx context.Context, fn func(users map[int64]domain.UserProfile) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, ok := s.loadUsersLocked(ctx)
	if !ok {
		return fmt.Errorf("storage.UpdateUsers: %w", ErrUnavailable)
	}
	if err := fn(users); err != nil {
		return err
	}
	s.saveUsersLocked(ctx, users)
	return nil
}

// loadUsersLocked returns the users and whether they reflect stored
// state. ok is false only for the empty fallback after a failed read.
func (s *Store) loadUsersLocked(ctx context.Context) (users map[int64]domain.UserProfile, ok bool) {
	if s.usersDirty {
		return cloneUsers(s.pendingUsers), true
	}

	users, err := s.backend.ReadUsers(ctx)
	if err != nil {
		if s.haveUsers {
			s.log.WarnContext(ctx, "read users, using last known copy", slog.String("error", err.Error()))
			return cloneUsers(s.lastUsers), true
		}
		s.log.ErrorContext(ctx, "read users, using empty collection", slog.String("error", err.Error()))
		return map[int64]domain.UserProfile{}, false
	}
	if users == nil {
		users = map[int64]domain.UserProfile{}
	}
	s.lastUsers, s.haveUsers = cloneUsers(users), true
	return users, true
}

func (s *Store) saveUsersLocked(ctx context.Context, users map[int64]domain.UserProfile) {
	if err := s.backend.WriteUsers(ctx, users); err != nil {
		s.log.ErrorContext(ctx, "write users, keeping in-memory copy",
			slog.Int("count", len(users)),
			slog.String("error", err.Error()),
		)
		s.pendingUsers = cloneUsers(users)
		s.usersDirty = true
		return
	}
	s.pendingUsers = nil
	s.usersDirty = false
	s.lastUsers, s.haveUsers = cloneUsers(users), true
}

// ---------------------------------------------------------------------------
// Words
// ---------------------------------------------------------------------------

// Words returns a fresh copy of the vocabulary in insertion order. On backend
// failure the error is logged and an empty slice is returned.
func (s *Store) Words(ctx context.Context) []domain.VocabularyItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	words, _ := s.loadWordsLocked(ctx)
	return words
}

// SaveWords replaces the vocabulary. Failures are logged, not returned.
func (s *Store) SaveWords(ctx context.Context, words []domain.VocabularyItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.saveWordsLocked(ctx, slices.Clone(words))
}

// UpdateWords runs load, fn, save as one serialized cycle. fn returns the
// new collection. If fn returns an error nothing is written. If the
// vocabulary cannot be read, fn is not called and ErrUnavailable is returned.
func (s *Store) UpdateWords(ctx context.Context, fn func(words []domain.VocabularyItem) ([]domain.VocabularyItem, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.loadWordsLocked(ctx)
	if !ok {
		return fmt.Errorf("storage.UpdateWords: %w", ErrUnavailable)
	}
	words, err := fn(current)
	if err != nil {
		return err
	}
	s.saveWordsLocked(ctx, words)
	return nil
}

func (s *Store) loadWordsLocked(ctx context.Context) (words []domain.VocabularyItem, ok bool) {
	if s.wordsDirty {
		return slices.Clone(s.pendingWords), true
	}

	words, err := s.backend.ReadWords(ctx)
	if err != nil {
		if s.haveWords {
			s.log.WarnContext(ctx, "read words, using last known copy", slog.String("error", err.Error()))
			return slices.Clone(s.lastWords), true
		}
		s.log.ErrorContext(ctx, "read words, using empty collection", slog.String("error", err.Error()))
		return []domain.VocabularyItem{}, false
	}
	if words == nil {
		words = []domain.VocabularyItem{}
	}
	s.lastWords, s.haveWords = slices.Clone(words), true
	return words, true
}

func (s *Store) saveWordsLocked(ctx context.Context, words []domain.VocabularyItem) {
	if err := s.backend.WriteWords(ctx, words); err != nil {
		s.log.ErrorContext(ctx, "write words, keeping in-memory copy",
			slog.Int("count", len(words)),
			slog.String("error", err.Error()),
		)
		s.pendingWords = slices.Clone(words)
		s.wordsDirty = true
		return
	}
	s.pendingWords = nil
	s.wordsDirty = false
	s.lastWords, s.haveWords = slices.Clone(words), true
}

func cloneUsers(users map[int64]domain.UserProfile) map[int64]domain.UserProfile {
	out := make(map[int64]domain.UserProfile, len(users))
	for id, p := range users {
		out[id] = p.Clone()
	}
	return out
}
