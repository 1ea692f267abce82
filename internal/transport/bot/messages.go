package bot

import (
	"fmt"
	"html"
	"strings"
	"time"

	tg "github.com/heartmarshall/wordstream-bot/internal/adapter/telegram"
	"github.com/heartmarshall/wordstream-bot/internal/domain"
	"github.com/heartmarshall/wordstream-bot/internal/service/dialogue"
	"github.com/heartmarshall/wordstream-bot/internal/service/quota"
)

const parseMode = "HTML"

const (
	msgWelcome              = "Hi! I will send you new English words every day. Let's set things up."
	msgAskLevel             = "What is your English level?"
	msgAskWordsPerDay       = "How many new words a day would you like?"
	msgAskDeliveryTime      = "At what time should I send them? Use HH:MM, for example 09:00."
	msgMenu                 = "Main menu:"
	msgUnknownCommand       = "Unknown command. Try /menu."
	msgAdminOnly            = "This command is only available to the administrator."
	msgMakePremiumUsage     = "Usage: /makepremium &lt;user_id&gt;"
	msgUserNotFound         = "User %d not found."
	msgPremiumApproved      = "User %d is premium now."
	msgPremiumGranted       = "Premium is active! Translations are unlimited now."
	msgPremiumRequested     = "Your request was sent to the administrator."
	msgPremiumPending       = "Your premium request is already waiting for approval."
	msgAlreadyPremium       = "You already have premium."
	msgTryAgain             = "Something went wrong. Please try again."
	msgQuotaExceeded        = "You have used all %d free translations for today. Get premium for unlimited translations."
	msgNoTranslation        = "I could not find a translation for that."
	msgTranslateUnavailable = "Translation is unavailable right now. Please try again later."
	msgExhausted            = "You have learned every word I have! New words are on the way."

	btnProfile = "My profile"
	btnPremium = "Get premium"
	btnRestart = "Restart setup"
	btnApprove = "Approve"
)

func menuKeyboard() *tg.InlineKeyboardMarkup {
	return tg.InlineKeyboard(
		tg.Button(btnProfile, cbMenuProfile),
		tg.Button(btnPremium, cbPremiumRequest),
		tg.Button(btnRestart, cbMenuRestart),
	)
}

func premiumKeyboard() *tg.InlineKeyboardMarkup {
	return tg.InlineKeyboard(tg.Button(btnPremium, cbPremiumRequest))
}

func levelKeyboard() *tg.ReplyKeyboardMarkup {
	labels := make([]string, len(domain.Levels))
	for i, l := range domain.Levels {
		labels[i] = l.String()
	}
	return tg.ReplyKeyboard(labels...)
}

// renderDialogue turns a dialogue step into a message and the keyboard
// that goes with it.
func renderDialogue(r dialogue.Reply) (string, tg.ReplyMarkup) {
	switch r.Effect.Kind {
	case dialogue.EffectCompleted:
		p := r.Profile
		text := fmt.Sprintf("All set! Every day at %s you will get %d words for the %s level.\nUse /menu to see your profile.",
			p.DeliveryTime, p.WordsPerDay, p.Level)
		return text, tg.RemoveKeyboard()
	case dialogue.EffectReprompt:
		text, markup := question(r.Effect.Field)
		return fmt.Sprintf("Sorry, %s.\n%s", html.EscapeString(r.Effect.Reason), text), markup
	default:
		return question(r.Effect.Field)
	}
}

func question(f dialogue.Field) (string, tg.ReplyMarkup) {
	switch f {
	case dialogue.FieldLevel:
		return msgAskLevel, levelKeyboard()
	case dialogue.FieldWordsPerDay:
		return msgAskWordsPerDay, tg.RemoveKeyboard()
	default:
		return msgAskDeliveryTime, nil
	}
}

func renderProfile(p domain.UserProfile, limit int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>%s</b>\n", html.EscapeString(displayOr(p.Username, "Your profile")))
	fmt.Fprintf(&sb, "Level: %s\n", p.Level)
	fmt.Fprintf(&sb, "Words per day: %d\n", p.WordsPerDay)
	fmt.Fprintf(&sb, "Delivery time: %s\n", p.DeliveryTime)
	fmt.Fprintf(&sb, "Words learned: %d\n", len(p.LearnedWords))
	switch {
	case p.IsPremium:
		sb.WriteString("Premium: yes, unlimited translations")
	case p.PendingPremium:
		fmt.Fprintf(&sb, "Premium: requested\nTranslations today: %d/%d", p.TranslationsToday, limit)
	default:
		fmt.Fprintf(&sb, "Premium: no\nTranslations today: %d/%d", p.TranslationsToday, limit)
	}
	return sb.String()
}

func displayOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func renderTranslation(r quota.TranslationResult) string {
	text := html.EscapeString(r.Text)
	if r.Decision.Unlimited {
		return text
	}
	return fmt.Sprintf("%s\n\n<i>Translations left today: %d</i>", text, r.Decision.Remaining)
}

func renderPremiumRequest(u *tg.User) string {
	name := u.DisplayName()
	if u.Username != "" {
		name = "@" + name
	}
	return fmt.Sprintf("Premium request from %s (id %d).", html.EscapeString(name), u.ID)
}

func renderStats(st domain.UserStats) string {
	return fmt.Sprintf("Users: %d\nPremium: %d\nPending premium: %d", st.Total, st.Premium, st.Pending)
}

func renderPong(uptime time.Duration) string {
	return fmt.Sprintf("pong, uptime %s", uptime.Truncate(time.Second))
}

// renderWords formats a delivery: one block per word.
func renderWords(items []domain.VocabularyItem) string {
	var sb strings.Builder
	sb.WriteString("<b>Your words for today</b>\n")
	for _, it := range items {
		sb.WriteString("\n<b>")
		sb.WriteString(html.EscapeString(it.Word))
		sb.WriteString("</b>")
		if it.Translation != "" {
			sb.WriteString(" - ")
			sb.WriteString(html.EscapeString(it.Translation))
		}
		if it.Definition != "" {
			sb.WriteString("\n<i>")
			sb.WriteString(html.EscapeString(it.Definition))
			sb.WriteString("</i>")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
