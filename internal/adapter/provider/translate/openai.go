package translate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/heartmarshall/wordstream-bot/internal/config"
)

const systemPrompt = "You are a translator. Translate the user's message into the language " +
	"with ISO 639-1 code %q. Reply with the translation only, without quotes or comments."

// OpenAI translates through a chat completion model.
type OpenAI struct {
	client *openai.Client
	model  string
	log    *slog.Logger
}

// NewOpenAI builds a translator from config. An empty base URL keeps the
// public OpenAI endpoint.
func NewOpenAI(cfg config.TranslateConfig, logger *slog.Logger) *OpenAI {
	oc := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		oc.BaseURL = cfg.OpenAIBaseURL
	}
	return &OpenAI{
		client: openai.NewClientWithConfig(oc),
		model:  cfg.OpenAIModel,
		log:    logger.With("adapter", "openai_translate"),
	}
}

// Translate returns "", false, nil when the model answers with nothing.
func (o *OpenAI) Translate(ctx context.Context, text, lang string) (string, bool, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: fmt.Sprintf(systemPrompt, lang)},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0,
	})
	if err != nil {
		o.log.WarnContext(ctx, "openai translate failed", slog.String("lang", lang), slog.String("error", err.Error()))
		return "", false, fmt.Errorf("openai: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", false, nil
	}

	out := strings.Trim(strings.TrimSpace(resp.Choices[0].Message.Content), "\"")
	if out == "" {
		return "", false, nil
	}

	o.log.DebugContext(ctx, "openai translate",
		slog.String("lang", lang),
		slog.Int("total_tokens", resp.Usage.TotalTokens),
	)
	return out, true, nil
}
