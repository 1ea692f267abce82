package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/wordstream-bot/internal/adapter/session"
	"github.com/heartmarshall/wordstream-bot/internal/adapter/storage"
	"github.com/heartmarshall/wordstream-bot/internal/adapter/storage/file"
	tg "github.com/heartmarshall/wordstream-bot/internal/adapter/telegram"
	"github.com/heartmarshall/wordstream-bot/internal/domain"
	"github.com/heartmarshall/wordstream-bot/internal/service/dialogue"
	"github.com/heartmarshall/wordstream-bot/internal/service/quota"
	"github.com/heartmarshall/wordstream-bot/internal/service/registry"
)

const (
	adminID int64 = 1
	userID  int64 = 42
)

type fixture struct {
	bot      *Bot
	client   *botClientMock
	registry *registry.Service
}

func newFixture(t *testing.T, tr translatorFunc) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	backend, err := file.New(t.TempDir(), logger)
	require.NoError(t, err)
	reg := registry.NewService(logger, storage.New(backend, logger))

	if tr == nil {
		tr = func(context.Context, string, string) (string, bool, error) { return "", false, nil }
	}

	client := &botClientMock{}
	dlg := dialogue.NewService(logger, session.NewMemory(), reg, dialogue.Machine{MaxWordsPerDay: 50})
	q := quota.NewService(logger, reg, tr, quota.Config{DailyLimit: 50, AdminID: adminID})

	return &fixture{
		bot:      New(logger, client, dlg, reg, q, Config{}),
		client:   client,
		registry: reg,
	}
}

func textUpdate(from int64, text string) tg.Update {
	return tg.Update{Message: &tg.Message{
		From: &tg.User{ID: from, FirstName: "Ann", Username: "ann"},
		Chat: &tg.Chat{ID: from, Type: "private"},
		Text: text,
	}}
}

func callbackUpdate(from int64, data string) tg.Update {
	return tg.Update{CallbackQuery: &tg.CallbackQuery{
		ID:      "cb-" + data,
		From:    &tg.User{ID: from, Username: "ann"},
		Message: &tg.Message{Chat: &tg.Chat{ID: from}},
		Data:    data,
	}}
}

func (f *fixture) say(from int64, text string) tg.SendMessageParams {
	f.bot.HandleUpdate(context.Background(), textUpdate(from, text))
	sent := f.client.sentTo(from)
	if len(sent) == 0 {
		return tg.SendMessageParams{}
	}
	return sent[len(sent)-1]
}

func (f *fixture) register(t *testing.T, id int64) {
	t.Helper()
	_, err := f.registry.EnsureUser(context.Background(), id, "ann")
	require.NoError(t, err)
}

func TestStart_PromptsLevelWithKeyboard(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	msg := f.say(userID, "/start")

	assert.Contains(t, msg.Text, msgAskLevel)
	kb, ok := msg.ReplyMarkup.(*tg.ReplyKeyboardMarkup)
	require.True(t, ok, "expected reply keyboard, got %T", msg.ReplyMarkup)
	require.Len(t, kb.Keyboard, 1)
	assert.Len(t, kb.Keyboard[0], 3)

	_, exists := f.registry.Lookup(context.Background(), userID)
	assert.True(t, exists)
}

func TestRegistration_FullDialogue(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	f.say(userID, "/start")

	msg := f.say(userID, "expert")
	assert.Contains(t, msg.Text, "unknown level")
	assert.IsType(t, &tg.ReplyKeyboardMarkup{}, msg.ReplyMarkup)

	msg = f.say(userID, "intermediate")
	assert.Equal(t, msgAskWordsPerDay, msg.Text)

	msg = f.say(userID, "0")
	assert.Contains(t, msg.Text, "must be a positive integer")

	msg = f.say(userID, "7")
	assert.Equal(t, msgAskDeliveryTime, msg.Text)

	msg = f.say(userID, "10:30")
	assert.Contains(t, msg.Text, "All set")
	assert.IsType(t, &tg.ReplyKeyboardRemove{}, msg.ReplyMarkup)

	p, ok := f.registry.Lookup(context.Background(), userID)
	require.True(t, ok)
	assert.Equal(t, domain.LevelIntermediate, p.Level)
	assert.Equal(t, 7, p.WordsPerDay)
	assert.Equal(t, "10:30", p.DeliveryTime.String())
}

func TestText_UnregisteredUser(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	msg := f.say(777, "hello")
	assert.Contains(t, msg.Text, msgWelcome)
	assert.Contains(t, msg.Text, msgAskLevel)
	assert.IsType(t, &tg.ReplyKeyboardMarkup{}, msg.ReplyMarkup)

	_, exists := f.registry.Lookup(context.Background(), 777)
	assert.True(t, exists)

	msg = f.say(777, "beginner")
	assert.Equal(t, msgAskWordsPerDay, msg.Text)
}

func TestCallbacks_UnregisteredUserStartsRegistration(t *testing.T) {
	t.Parallel()

	for _, data := range []string{cbMenuProfile, cbPremiumRequest} {
		f := newFixture(t, nil)
		f.bot.HandleUpdate(context.Background(), callbackUpdate(userID, data))

		sent := f.client.sentTo(userID)
		require.Len(t, sent, 1, data)
		assert.Contains(t, sent[0].Text, msgAskLevel, data)
		assert.Empty(t, f.client.sentTo(adminID), data)

		p, ok := f.registry.Lookup(context.Background(), userID)
		require.True(t, ok, data)
		assert.False(t, p.PendingPremium, data)
	}
}

func TestText_Translates(t *testing.T) {
	t.Parallel()
	f := newFixture(t, func(_ context.Context, text, lang string) (string, bool, error) {
		assert.Equal(t, "ru", lang)
		return "яблоко", true, nil
	})
	f.register(t, userID)

	msg := f.say(userID, "apple")

	assert.Contains(t, msg.Text, "яблоко")
	assert.Contains(t, msg.Text, "Translations left today: 49")
}

func TestText_NoTranslation(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	f.register(t, userID)

	msg := f.say(userID, "qwzx")
	assert.Equal(t, msgNoTranslation, msg.Text)

	p, _ := f.registry.Lookup(context.Background(), userID)
	assert.Zero(t, p.TranslationsToday)
}

func TestText_TranslatorError(t *testing.T) {
	t.Parallel()
	f := newFixture(t, func(context.Context, string, string) (string, bool, error) {
		return "", false, errors.New("upstream down")
	})
	f.register(t, userID)

	msg := f.say(userID, "apple")
	assert.Equal(t, msgTranslateUnavailable, msg.Text)
}

func TestText_QuotaExceeded(t *testing.T) {
	t.Parallel()
	f := newFixture(t, func(context.Context, string, string) (string, bool, error) {
		t.Error("translator must not be called over quota")
		return "", false, nil
	})
	f.register(t, userID)
	_, err := f.registry.UpdateUser(context.Background(), userID, func(p *domain.UserProfile) error {
		p.TranslationsToday = 50
		return nil
	})
	require.NoError(t, err)

	msg := f.say(userID, "apple")

	assert.Contains(t, msg.Text, "all 50 free translations")
	kb, ok := msg.ReplyMarkup.(*tg.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Equal(t, cbPremiumRequest, kb.InlineKeyboard[0][0].CallbackData)
}

func TestMenu(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	assert.Contains(t, f.say(userID, "/menu").Text, msgAskLevel)
	f.say(userID, "beginner")
	f.say(userID, "5")
	f.say(userID, "09:00")

	msg := f.say(userID, "/menu")
	kb, ok := msg.ReplyMarkup.(*tg.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Len(t, kb.InlineKeyboard, 3)
}

func TestAdminCommands_DeniedForOthers(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	f.register(t, userID)

	for _, cmd := range []string{"/users", "/ping", "/makepremium 42"} {
		assert.Equal(t, msgAdminOnly, f.say(userID, cmd).Text, cmd)
	}

	p, _ := f.registry.Lookup(context.Background(), userID)
	assert.False(t, p.IsPremium)
}

func TestAdminCommands(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	f.register(t, userID)

	assert.Equal(t, msgMakePremiumUsage, f.say(adminID, "/makepremium abc").Text)
	assert.Equal(t, "User 7 not found.", f.say(adminID, "/makepremium 7").Text)

	msg := f.say(adminID, "/makepremium 42")
	assert.Equal(t, "User 42 is premium now.", msg.Text)

	p, _ := f.registry.Lookup(context.Background(), userID)
	assert.True(t, p.IsPremium)

	toUser := f.client.sentTo(userID)
	require.Len(t, toUser, 1)
	assert.Equal(t, msgPremiumGranted, toUser[0].Text)

	assert.Equal(t, "Users: 1\nPremium: 1\nPending premium: 0", f.say(adminID, "/users").Text)
	assert.True(t, strings.HasPrefix(f.say(adminID, "/ping@wordstream_bot").Text, "pong"))
}

func TestPremiumRequest_NotifiesAdminOnce(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	f.register(t, userID)
	ctx := context.Background()

	f.bot.HandleUpdate(ctx, callbackUpdate(userID, cbPremiumRequest))
	f.bot.HandleUpdate(ctx, callbackUpdate(userID, cbPremiumRequest))

	toUser := f.client.sentTo(userID)
	require.Len(t, toUser, 2)
	assert.Equal(t, msgPremiumRequested, toUser[0].Text)
	assert.Equal(t, msgPremiumPending, toUser[1].Text)

	toAdmin := f.client.sentTo(adminID)
	require.Len(t, toAdmin, 1)
	kb, ok := toAdmin[0].ReplyMarkup.(*tg.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Equal(t, "premium:approve:42", kb.InlineKeyboard[0][0].CallbackData)

	assert.Len(t, f.client.AnswerCallbackQueryCalls(), 2)
}

func TestPremiumApproveCallback(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	f.register(t, userID)
	ctx := context.Background()

	f.bot.HandleUpdate(ctx, callbackUpdate(userID, cbPremiumRequest))

	// Only the administrator may approve.
	f.bot.HandleUpdate(ctx, callbackUpdate(userID, "premium:approve:42"))
	p, _ := f.registry.Lookup(ctx, userID)
	assert.False(t, p.IsPremium)

	f.bot.HandleUpdate(ctx, callbackUpdate(adminID, "premium:approve:42"))
	p, _ = f.registry.Lookup(ctx, userID)
	assert.True(t, p.IsPremium)
	assert.False(t, p.PendingPremium)

	f.bot.HandleUpdate(ctx, callbackUpdate(userID, cbPremiumRequest))
	toUser := f.client.sentTo(userID)
	assert.Equal(t, msgAlreadyPremium, toUser[len(toUser)-1].Text)
}

func TestProfileCallback(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	f.register(t, userID)

	f.bot.HandleUpdate(context.Background(), callbackUpdate(userID, cbMenuProfile))

	sent := f.client.sentTo(userID)
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Text, "Level: Beginner")
	assert.Contains(t, sent[0].Text, "Translations today: 0/50")
}

func TestHandleUpdate_RecoversPanic(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	f.client.SendMessageFunc = func(context.Context, tg.SendMessageParams) (*tg.Message, error) {
		panic("boom")
	}

	assert.NotPanics(t, func() {
		f.bot.HandleUpdate(context.Background(), textUpdate(userID, "/start"))
	})
}

func TestRun_AdvancesOffset(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.client.GetUpdatesFunc = func(ctx context.Context, offset int64, _ int) ([]tg.Update, error) {
		if offset == 0 {
			a := textUpdate(userID, "hi")
			a.UpdateID = 5
			b := textUpdate(userID, "there")
			b.UpdateID = 6
			return []tg.Update{a, b}, nil
		}
		cancel()
		return nil, ctx.Err()
	}

	done := make(chan error, 1)
	go func() { done <- f.bot.Run(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop")
	}

	calls := f.client.GetUpdatesCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, int64(0), calls[0].Offset)
	assert.Equal(t, int64(7), calls[1].Offset)
	assert.Len(t, f.client.sentTo(userID), 2)
}

func TestRun_RetriesAfterError(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	f.bot.cfg.RetryDelay = time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	attempts := 0
	f.client.GetUpdatesFunc = func(ctx context.Context, _ int64, _ int) ([]tg.Update, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("network down")
		}
		cancel()
		return nil, ctx.Err()
	}

	require.NoError(t, f.bot.Run(ctx))
	assert.Equal(t, 3, attempts)
}

func TestNotifier_SendWords(t *testing.T) {
	t.Parallel()
	client := &botClientMock{}
	n := NewNotifier(client)

	err := n.SendWords(context.Background(), userID, []domain.VocabularyItem{
		domain.NewVocabularyItem("apple", "яблоко", "a round fruit"),
		domain.NewVocabularyItem("r&d", "", "research <and> development"),
	})
	require.NoError(t, err)
	require.NoError(t, n.SendExhausted(context.Background(), userID))

	sent := client.sentTo(userID)
	require.Len(t, sent, 2)
	assert.Equal(t, parseMode, sent[0].ParseMode)
	assert.Contains(t, sent[0].Text, "<b>apple</b> - яблоко\n<i>a round fruit</i>")
	assert.Contains(t, sent[0].Text, "<b>r&amp;d</b>\n<i>research &lt;and&gt; development</i>")
	assert.Equal(t, msgExhausted, sent[1].Text)
}

func TestNotifier_PropagatesError(t *testing.T) {
	t.Parallel()
	client := &botClientMock{
		SendMessageFunc: func(context.Context, tg.SendMessageParams) (*tg.Message, error) {
			return nil, &tg.APIError{Code: 403, Description: "bot was blocked by the user"}
		},
	}

	err := NewNotifier(client).SendWords(context.Background(), userID, nil)

	var apiErr *tg.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.Code)
}
