// Package session keeps registration dialogue sessions in process memory.
package session

import (
	"context"
	"sync"

	"github.com/heartmarshall/wordstream-bot/internal/domain"
)

// Memory is a mutex-guarded map of sessions keyed by user id.
// Sessions are lost on restart.
type Memory struct {
	mu       sync.RWMutex
	sessions map[int64]domain.RegistrationSession
}

func NewMemory() *Memory {
	return &Memory{sessions: make(map[int64]domain.RegistrationSession)}
}

func (m *Memory) Get(_ context.Context, userID int64) (domain.RegistrationSession, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	return s, ok, nil
}

func (m *Memory) Put(_ context.Context, s domain.RegistrationSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.UserID] = s
	return nil
}

func (m *Memory) Delete(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}
