// Package bot routes Telegram updates to the services and renders their
// results as chat messages.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	tg "github.com/heartmarshall/wordstream-bot/internal/adapter/telegram"
	"github.com/heartmarshall/wordstream-bot/internal/domain"
	"github.com/heartmarshall/wordstream-bot/internal/service/dialogue"
	"github.com/heartmarshall/wordstream-bot/internal/service/quota"
	"github.com/heartmarshall/wordstream-bot/pkg/ctxutil"
)

type botClient interface {
	SendMessage(ctx context.Context, params tg.SendMessageParams) (*tg.Message, error)
	AnswerCallbackQuery(ctx context.Context, callbackQueryID, text string) error
	GetUpdates(ctx context.Context, offset int64, limit int) ([]tg.Update, error)
}

type dialogueService interface {
	Start(ctx context.Context, id int64, username string) (dialogue.Reply, error)
	Handle(ctx context.Context, id int64, text string) (dialogue.Reply, bool, error)
}

type registryService interface {
	Lookup(ctx context.Context, id int64) (domain.UserProfile, bool)
	Stats(ctx context.Context) domain.UserStats
}

type quotaService interface {
	Translate(ctx context.Context, id int64, text string) (quota.TranslationResult, error)
	RequestUpgrade(ctx context.Context, id int64) (bool, error)
	ApproveUpgrade(ctx context.Context, actorID, targetID int64) (domain.UserProfile, error)
	IsAdmin(id int64) bool
	AdminID() int64
	Limit() int
}

// Config holds polling settings.
type Config struct {
	// BatchSize caps updates per getUpdates call.
	BatchSize int
	// RetryDelay is the pause after a failed poll.
	RetryDelay time.Duration
}

// Bot long-polls the Bot API and dispatches each update.
type Bot struct {
	log       *slog.Logger
	client    botClient
	dialogue  dialogueService
	registry  registryService
	quota     quotaService
	cfg       Config
	startedAt time.Time
	now       func() time.Time
}

func New(
	logger *slog.Logger,
	client botClient,
	dialogue dialogueService,
	registry registryService,
	quota quotaService,
	cfg Config,
) *Bot {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 3 * time.Second
	}
	return &Bot{
		log:       logger.With("transport", "bot"),
		client:    client,
		dialogue:  dialogue,
		registry:  registry,
		quota:     quota,
		cfg:       cfg,
		startedAt: time.Now(),
		now:       time.Now,
	}
}

// Run polls until ctx is cancelled. Poll failures are logged and retried;
// Run returns nil on cancellation.
func (b *Bot) Run(ctx context.Context) error {
	b.log.InfoContext(ctx, "polling started")

	var offset int64
	for {
		updates, err := b.client.GetUpdates(ctx, offset, b.cfg.BatchSize)
		if err != nil {
			if ctx.Err() != nil {
				b.log.InfoContext(ctx, "polling stopped")
				return nil
			}
			delay := b.retryDelay(err)
			b.log.WarnContext(ctx, "get updates failed",
				slog.String("error", err.Error()),
				slog.Duration("retry_in", delay),
			)
			select {
			case <-ctx.Done():
				b.log.InfoContext(ctx, "polling stopped")
				return nil
			case <-time.After(delay):
			}
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			b.HandleUpdate(ctx, u)
		}
	}
}

func (b *Bot) retryDelay(err error) time.Duration {
	var apiErr *tg.APIError
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		return time.Duration(apiErr.RetryAfter) * time.Second
	}
	return b.cfg.RetryDelay
}

// HandleUpdate processes one update under its own request id. A panic in
// a handler is logged and swallowed.
func (b *Bot) HandleUpdate(ctx context.Context, u tg.Update) {
	ctx, reqID := ctxutil.WithNewRequestID(ctx)

	defer func() {
		if rec := recover(); rec != nil {
			b.log.ErrorContext(ctx, "panic in update handler",
				slog.String("request_id", reqID),
				slog.Int64("update_id", u.UpdateID),
				slog.String("panic", fmt.Sprint(rec)),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()

	var err error
	switch {
	case u.Message != nil:
		err = b.handleMessage(ctx, u.Message)
	case u.CallbackQuery != nil:
		err = b.handleCallback(ctx, u.CallbackQuery)
	default:
		return
	}

	if err != nil {
		b.log.ErrorContext(ctx, "update failed",
			slog.String("request_id", reqID),
			slog.Int64("update_id", u.UpdateID),
			slog.String("error", err.Error()),
		)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tg.Message) error {
	if msg.From == nil || msg.Chat == nil || msg.From.IsBot {
		return nil
	}
	ctx = ctxutil.WithUserID(ctx, msg.From.ID)

	if cmd, args, ok := tg.Command(msg); ok {
		return b.handleCommand(ctx, msg, cmd, args)
	}
	return b.handleText(ctx, msg)
}

func (b *Bot) send(ctx context.Context, chatID int64, text string, markup tg.ReplyMarkup) error {
	_, err := b.client.SendMessage(ctx, tg.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   parseMode,
		ReplyMarkup: markup,
	})
	if err != nil {
		return fmt.Errorf("bot.send: %w", err)
	}
	return nil
}
