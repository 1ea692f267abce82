package delivery

import (
	"context"
	"sync"

	"github.com/heartmarshall/wordstream-bot/internal/domain"
)

var _ notifier = &notifierMock{}

type notifierMock struct {
	SendWordsFunc     func(ctx context.Context, userID int64, items []domain.VocabularyItem) error
	SendExhaustedFunc func(ctx context.Context, userID int64) error

	calls struct {
		SendWords []struct {
			UserID int64
			Items  []domain.VocabularyItem
		}
		SendExhausted []struct {
			UserID int64
		}
	}
	lockSendWords     sync.RWMutex
	lockSendExhausted sync.RWMutex
}

func (mock *notifierMock) SendWords(ctx context.Context, userID int64, items []domain.VocabularyItem) error {
	mock.lockSendWords.Lock()
	mock.calls.SendWords = append(mock.calls.SendWords, struct {
		UserID int64
		Items  []domain.VocabularyItem
	}{UserID: userID, Items: items})
	mock.lockSendWords.Unlock()
	if mock.SendWordsFunc == nil {
		return nil
	}
	return mock.SendWordsFunc(ctx, userID, items)
}

func (mock *notifierMock) SendWordsCalls() []struct {
	UserID int64
	Items  []domain.VocabularyItem
} {
	mock.lockSendWords.RLock()
	defer mock.lockSendWords.RUnlock()
	return mock.calls.SendWords
}

func (mock *notifierMock) SendExhausted(ctx context.Context, userID int64) error {
	mock.lockSendExhausted.Lock()
	mock.calls.SendExhausted = append(mock.calls.SendExhausted, struct{ UserID int64 }{UserID: userID})
	mock.lockSendExhausted.Unlock()
	if mock.SendExhaustedFunc == nil {
		return nil
	}
	return mock.SendExhaustedFunc(ctx, userID)
}

func (mock *notifierMock) SendExhaustedCalls() []struct{ UserID int64 } {
	mock.lockSendExhausted.RLock()
	defer mock.lockSendExhausted.RUnlock()
	return mock.calls.SendExhausted
}

type staticCorpus []domain.VocabularyItem

func (c staticCorpus) List(context.Context) []domain.VocabularyItem { return c }
