package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tg "github.com/heartmarshall/wordstream-bot/internal/adapter/telegram"
	"github.com/heartmarshall/wordstream-bot/internal/domain"
	"github.com/heartmarshall/wordstream-bot/pkg/ctxutil"
)

// Callback data understood by the bot.
const (
	cbMenuProfile    = "menu:profile"
	cbMenuRestart    = "menu:restart"
	cbPremiumRequest = "premium:request"
	cbPremiumApprove = "premium:approve:"
)

func (b *Bot) handleCallback(ctx context.Context, cq *tg.CallbackQuery) error {
	if cq.From == nil {
		return nil
	}
	ctx = ctxutil.WithUserID(ctx, cq.From.ID)

	// Private chats share the user's id.
	chatID := cq.From.ID
	if cq.Message != nil && cq.Message.Chat != nil {
		chatID = cq.Message.Chat.ID
	}

	var err error
	switch {
	case cq.Data == cbMenuProfile:
		err = b.showProfile(ctx, chatID, cq.From)
	case cq.Data == cbMenuRestart:
		err = b.startDialogue(ctx, chatID, cq.From)
	case cq.Data == cbPremiumRequest:
		err = b.requestPremium(ctx, chatID, cq.From)
	case strings.HasPrefix(cq.Data, cbPremiumApprove):
		target, perr := strconv.ParseInt(strings.TrimPrefix(cq.Data, cbPremiumApprove), 10, 64)
		if perr != nil {
			break
		}
		err = b.approve(ctx, chatID, cq.From.ID, target)
	default:
		b.log.DebugContext(ctx, "unknown callback", slog.String("data", cq.Data))
	}

	if aerr := b.client.AnswerCallbackQuery(ctx, cq.ID, ""); aerr != nil {
		b.log.WarnContext(ctx, "answer callback query", slog.String("error", aerr.Error()))
	}
	return err
}

func (b *Bot) showProfile(ctx context.Context, chatID int64, from *tg.User) error {
	p, ok := b.registry.Lookup(ctx, from.ID)
	if !ok {
		return b.startDialogue(ctx, chatID, from)
	}
	return b.send(ctx, chatID, renderProfile(p, b.quota.Limit()), nil)
}

func (b *Bot) requestPremium(ctx context.Context, chatID int64, from *tg.User) error {
	changed, err := b.quota.RequestUpgrade(ctx, from.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return b.startDialogue(ctx, chatID, from)
	}
	if err != nil {
		return fmt.Errorf("bot.requestPremium: %w", err)
	}

	if !changed {
		p, _ := b.registry.Lookup(ctx, from.ID)
		if p.IsPremium {
			return b.send(ctx, chatID, msgAlreadyPremium, nil)
		}
		return b.send(ctx, chatID, msgPremiumPending, nil)
	}

	if admin := b.quota.AdminID(); admin != 0 {
		text := renderPremiumRequest(from)
		markup := tg.InlineKeyboard(tg.Button(btnApprove, cbPremiumApprove+strconv.FormatInt(from.ID, 10)))
		if err := b.send(ctx, admin, text, markup); err != nil {
			b.log.WarnContext(ctx, "notify admin", slog.Int64("user_id", from.ID), slog.String("error", err.Error()))
		}
	}
	return b.send(ctx, chatID, msgPremiumRequested, nil)
}
