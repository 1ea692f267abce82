package bot

import (
	"context"
	"sync"

	tg "github.com/heartmarshall/wordstream-bot/internal/adapter/telegram"
)

var _ botClient = &botClientMock{}

type botClientMock struct {
	SendMessageFunc         func(ctx context.Context, params tg.SendMessageParams) (*tg.Message, error)
	AnswerCallbackQueryFunc func(ctx context.Context, callbackQueryID, text string) error
	GetUpdatesFunc          func(ctx context.Context, offset int64, limit int) ([]tg.Update, error)

	calls struct {
		SendMessage []struct {
			Params tg.SendMessageParams
		}
		AnswerCallbackQuery []struct {
			CallbackQueryID string
			Text            string
		}
		GetUpdates []struct {
			Offset int64
			Limit  int
		}
	}
	lockSendMessage         sync.RWMutex
	lockAnswerCallbackQuery sync.RWMutex
	lockGetUpdates          sync.RWMutex
}

func (mock *botClientMock) SendMessage(ctx context.Context, params tg.SendMessageParams) (*tg.Message, error) {
	mock.lockSendMessage.Lock()
	mock.calls.SendMessage = append(mock.calls.SendMessage, struct {
		Params tg.SendMessageParams
	}{Params: params})
	mock.lockSendMessage.Unlock()
	if mock.SendMessageFunc == nil {
		return &tg.Message{}, nil
	}
	return mock.SendMessageFunc(ctx, params)
}

func (mock *botClientMock) SendMessageCalls() []struct {
	Params tg.SendMessageParams
} {
	mock.lockSendMessage.RLock()
	defer mock.lockSendMessage.RUnlock()
	return mock.calls.SendMessage
}

func (mock *botClientMock) AnswerCallbackQuery(ctx context.Context, callbackQueryID, text string) error {
	mock.lockAnswerCallbackQuery.Lock()
	mock.calls.AnswerCallbackQuery = append(mock.calls.AnswerCallbackQuery, struct {
		CallbackQueryID string
		Text            string
	}{CallbackQueryID: callbackQueryID, Text: text})
	mock.lockAnswerCallbackQuery.Unlock()
	if mock.AnswerCallbackQueryFunc == nil {
		return nil
	}
	return mock.AnswerCallbackQueryFunc(ctx, callbackQueryID, text)
}

func (mock *botClientMock) AnswerCallbackQueryCalls() []struct {
	CallbackQueryID string
	Text            string
} {
	mock.lockAnswerCallbackQuery.RLock()
	defer mock.lockAnswerCallbackQuery.RUnlock()
	return mock.calls.AnswerCallbackQuery
}

func (mock *botClientMock) GetUpdates(ctx context.Context, offset int64, limit int) ([]tg.Update, error) {
	if mock.GetUpdatesFunc == nil {
		panic("botClientMock.GetUpdatesFunc: method is nil but botClient.GetUpdates was just called")
	}
	mock.lockGetUpdates.Lock()
	mock.calls.GetUpdates = append(mock.calls.GetUpdates, struct {
		Offset int64
		Limit  int
	}{Offset: offset, Limit: limit})
	mock.lockGetUpdates.Unlock()
	return mock.GetUpdatesFunc(ctx, offset, limit)
}

func (mock *botClientMock) GetUpdatesCalls() []struct {
	Offset int64
	Limit  int
} {
	mock.lockGetUpdates.RLock()
	defer mock.lockGetUpdates.RUnlock()
	return mock.calls.GetUpdates
}

// sentTo returns the texts sent to chatID, in order.
func (mock *botClientMock) sentTo(chatID int64) []tg.SendMessageParams {
	var out []tg.SendMessageParams
	for _, c := range mock.SendMessageCalls() {
		if c.Params.ChatID == chatID {
			out = append(out, c.Params)
		}
	}
	return out
}

type translatorFunc func(ctx context.Context, text, lang string) (string, bool, error)

func (f translatorFunc) Translate(ctx context.Context, text, lang string) (string, bool, error) {
	return f(ctx, text, lang)
}
