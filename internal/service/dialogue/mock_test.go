package dialogue

import (
	"context"
	"sync"

	"github.com/heartmarshall/wordstream-bot/internal/domain"
)

var _ registry = &registryMock{}

type registryMock struct {
	EnsureUserFunc func(ctx context.Context, id int64, usernameHint string) (domain.UserProfile, error)
	UpdateUserFunc func(ctx context.Context, id int64, fn func(p *domain.UserProfile) error) (domain.UserProfile, error)

	calls struct {
		EnsureUser []struct {
			ID           int64
			UsernameHint string
		}
		UpdateUser []struct {
			ID int64
		}
	}
	lockEnsureUser sync.RWMutex
	lockUpdateUser sync.RWMutex
}

func (mock *registryMock) EnsureUser(ctx context.Context, id int64, usernameHint string) (domain.UserProfile, error) {
	if mock.EnsureUserFunc == nil {
		panic("registryMock.EnsureUserFunc: method is nil but registry.EnsureUser was just called")
	}
	mock.lockEnsureUser.Lock()
	mock.calls.EnsureUser = append(mock.calls.EnsureUser, struct {
		ID           int64
		UsernameHint string
	}{ID: id, UsernameHint: usernameHint})
	mock.lockEnsureUser.Unlock()
	return mock.EnsureUserFunc(ctx, id, usernameHint)
}

func (mock *registryMock) EnsureUserCalls() []struct {
	ID           int64
	UsernameHint string
} {
	mock.lockEnsureUser.RLock()
	defer mock.lockEnsureUser.RUnlock()
	return mock.calls.EnsureUser
}

func (mock *registryMock) UpdateUser(ctx context.Context, id int64, fn func(p *domain.UserProfile) error) (domain.UserProfile, error) {
	if mock.UpdateUserFunc == nil {
		panic("registryMock.UpdateUserFunc: method is nil but registry.UpdateUser was just called")
	}
	mock.lockUpdateUser.Lock()
	mock.calls.UpdateUser = append(mock.calls.UpdateUser, struct{ ID int64 }{ID: id})
	mock.lockUpdateUser.Unlock()
	return mock.UpdateUserFunc(ctx, id, fn)
}

func (mock *registryMock) UpdateUserCalls() []struct{ ID int64 } {
	mock.lockUpdateUser.RLock()
	defer mock.lockUpdateUser.RUnlock()
	return mock.calls.UpdateUser
}
