package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tg "github.com/heartmarshall/wordstream-bot/internal/adapter/telegram"
	"github.com/heartmarshall/wordstream-bot/internal/service/quota"
)

// handleText feeds an active registration dialogue first. Text from an
// unknown user starts registration; a registered user's text is translated.
func (b *Bot) handleText(ctx context.Context, msg *tg.Message) error {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return nil
	}
	chatID, userID := msg.Chat.ID, msg.From.ID

	reply, active, err := b.dialogue.Handle(ctx, userID, text)
	if err != nil {
		b.log.ErrorContext(ctx, "dialogue step failed", slog.Int64("user_id", userID), slog.String("error", err.Error()))
		return b.send(ctx, chatID, msgTryAgain, nil)
	}
	if active {
		out, markup := renderDialogue(reply)
		return b.send(ctx, chatID, out, markup)
	}

	if _, ok := b.registry.Lookup(ctx, userID); !ok {
		return b.startDialogue(ctx, chatID, msg.From)
	}
	return b.translate(ctx, chatID, userID, text)
}

func (b *Bot) translate(ctx context.Context, chatID, userID int64, text string) error {
	res, err := b.quota.Translate(ctx, userID, text)
	switch {
	case errors.Is(err, quota.ErrQuotaExceeded):
		return b.send(ctx, chatID, fmt.Sprintf(msgQuotaExceeded, res.Decision.Limit), premiumKeyboard())
	case err != nil:
		b.log.WarnContext(ctx, "translate failed", slog.Int64("user_id", userID), slog.String("error", err.Error()))
		return b.send(ctx, chatID, msgTranslateUnavailable, nil)
	case !res.Found:
		return b.send(ctx, chatID, msgNoTranslation, nil)
	}
	return b.send(ctx, chatID, renderTranslation(res), nil)
}
