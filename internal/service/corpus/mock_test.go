package corpus

import (
	"context"
	"slices"
	"sync"

	"github.com/heartmarshall/wordstream-bot/internal/domain"
)

var (
	_ definer    = &definerMock{}
	_ translator = &translatorMock{}
	_ wordStore  = &memWordStore{}
)

type definerMock struct {
	LookupDefinitionFunc func(ctx context.Context, word string) (string, bool, error)

	calls struct {
		LookupDefinition []struct {
			Word string
		}
	}
	lockLookupDefinition sync.RWMutex
}

func (mock *definerMock) LookupDefinition(ctx context.Context, word string) (string, bool, error) {
	if mock.LookupDefinitionFunc == nil {
		panic("definerMock.LookupDefinitionFunc: method is nil but definer.LookupDefinition was just called")
	}
	mock.lockLookupDefinition.Lock()
	mock.calls.LookupDefinition = append(mock.calls.LookupDefinition, struct{ Word string }{Word: word})
	mock.lockLookupDefinition.Unlock()
	return mock.LookupDefinitionFunc(ctx, word)
}

func (mock *definerMock) LookupDefinitionCalls() []struct{ Word string } {
	mock.lockLookupDefinition.RLock()
	defer mock.lockLookupDefinition.RUnlock()
	return mock.calls.LookupDefinition
}

type translatorMock struct {
	TranslateFunc func(ctx context.Context, text, lang string) (string, bool, error)

	calls struct {
		Translate []struct {
			Text string
			Lang string
		}
	}
	lockTranslate sync.RWMutex
}

func (mock *translatorMock) Translate(ctx context.Context, text, lang string) (string, bool, error) {
	if mock.TranslateFunc == nil {
		panic("translatorMock.TranslateFunc: method is nil but translator.Translate was just called")
	}
	mock.lockTranslate.Lock()
	mock.calls.Translate = append(mock.calls.Translate, struct {
		Text string
		Lang string
	}{Text: text, Lang: lang})
	mock.lockTranslate.Unlock()
	return mock.TranslateFunc(ctx, text, lang)
}

func (mock *translatorMock) TranslateCalls() []struct {
	Text string
	Lang string
} {
	mock.lockTranslate.RLock()
	defer mock.lockTranslate.RUnlock()
	return mock.calls.Translate
}

// memWordStore is an in-memory wordStore. beforeUpdate, when set, runs
// inside UpdateWords before fn to simulate a concurrent writer.
type memWordStore struct {
	mu           sync.Mutex
	words        []domain.VocabularyItem
	beforeUpdate func(words []domain.VocabularyItem) []domain.VocabularyItem
	updates      int
}

func (m *memWordStore) Words(context.Context) []domain.VocabularyItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.words)
}

func (m *memWordStore) UpdateWords(_ context.Context, fn func([]domain.VocabularyItem) ([]domain.VocabularyItem, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	cur := slices.Clone(m.words)
	if m.beforeUpdate != nil {
		cur = m.beforeUpdate(cur)
	}
	out, err := fn(cur)
	if err != nil {
		return err
	}
	m.words = out
	return nil
}
