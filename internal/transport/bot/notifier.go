package bot

import (
	"context"
	"fmt"

	tg "github.com/heartmarshall/wordstream-bot/internal/adapter/telegram"
	"github.com/heartmarshall/wordstream-bot/internal/domain"
)

type messageSender interface {
	SendMessage(ctx context.Context, params tg.SendMessageParams) (*tg.Message, error)
}

// Notifier sends scheduled deliveries. Users are addressed by their id,
// which is also their private chat id.
type Notifier struct {
	client messageSender
}

func NewNotifier(client messageSender) *Notifier {
	return &Notifier{client: client}
}

func (n *Notifier) SendWords(ctx context.Context, userID int64, items []domain.VocabularyItem) error {
	_, err := n.client.SendMessage(ctx, tg.SendMessageParams{
		ChatID:    userID,
		Text:      renderWords(items),
		ParseMode: parseMode,
	})
	if err != nil {
		return fmt.Errorf("bot.SendWords: %w", err)
	}
	return nil
}

func (n *Notifier) SendExhausted(ctx context.Context, userID int64) error {
	_, err := n.client.SendMessage(ctx, tg.SendMessageParams{
		ChatID: userID,
		Text:   msgExhausted,
	})
	if err != nil {
		return fmt.Errorf("bot.SendExhausted: %w", err)
	}
	return nil
}
