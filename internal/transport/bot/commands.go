package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	tg "github.com/heartmarshall/wordstream-bot/internal/adapter/telegram"
	"github.com/heartmarshall/wordstream-bot/internal/domain"
)

func (b *Bot) handleCommand(ctx context.Context, msg *tg.Message, cmd, args string) error {
	chatID := msg.Chat.ID
	userID := msg.From.ID

	switch cmd {
	case "start":
		return b.startDialogue(ctx, chatID, msg.From)
	case "menu":
		return b.showMenu(ctx, chatID, msg.From)
	case "makepremium", "users", "ping":
		if !b.quota.IsAdmin(userID) {
			return b.send(ctx, chatID, msgAdminOnly, nil)
		}
	default:
		return b.send(ctx, chatID, msgUnknownCommand, nil)
	}

	switch cmd {
	case "makepremium":
		return b.makePremium(ctx, chatID, userID, args)
	case "users":
		return b.send(ctx, chatID, renderStats(b.registry.Stats(ctx)), nil)
	default:
		return b.send(ctx, chatID, renderPong(b.now().Sub(b.startedAt)), nil)
	}
}

func (b *Bot) startDialogue(ctx context.Context, chatID int64, from *tg.User) error {
	reply, err := b.dialogue.Start(ctx, from.ID, from.DisplayName())
	if err != nil {
		return fmt.Errorf("bot.startDialogue: %w", err)
	}
	text, markup := renderDialogue(reply)
	return b.send(ctx, chatID, msgWelcome+"\n\n"+text, markup)
}

func (b *Bot) showMenu(ctx context.Context, chatID int64, from *tg.User) error {
	if _, ok := b.registry.Lookup(ctx, from.ID); !ok {
		return b.startDialogue(ctx, chatID, from)
	}
	return b.send(ctx, chatID, msgMenu, menuKeyboard())
}

func (b *Bot) makePremium(ctx context.Context, chatID, actorID int64, args string) error {
	targetID, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		return b.send(ctx, chatID, msgMakePremiumUsage, nil)
	}
	return b.approve(ctx, chatID, actorID, targetID)
}

// approve grants premium and tells both sides.
func (b *Bot) approve(ctx context.Context, chatID, actorID, targetID int64) error {
	_, err := b.quota.ApproveUpgrade(ctx, actorID, targetID)
	switch {
	case errors.Is(err, domain.ErrForbidden):
		return b.send(ctx, chatID, msgAdminOnly, nil)
	case errors.Is(err, domain.ErrNotFound):
		return b.send(ctx, chatID, fmt.Sprintf(msgUserNotFound, targetID), nil)
	case err != nil:
		return fmt.Errorf("bot.approve: %w", err)
	}

	if err := b.send(ctx, targetID, msgPremiumGranted, nil); err != nil {
		b.log.WarnContext(ctx, "notify premium user", slog.Int64("target_id", targetID), slog.String("error", err.Error()))
	}
	return b.send(ctx, chatID, fmt.Sprintf(msgPremiumApproved, targetID), nil)
}
