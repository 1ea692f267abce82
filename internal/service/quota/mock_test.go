package quota

import (
	"context"
	"sync"
)

var _ translator = &translatorMock{}

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
