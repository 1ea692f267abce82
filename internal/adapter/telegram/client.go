// Package telegram is a minimal Bot API client: long polling, messages
// with keyboards and callback answers.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/heartmarshall/wordstream-bot/internal/config"
)

const defaultBaseURL = "https://api.telegram.org"

// APIError is a non-ok Bot API response.
type APIError struct {
	Code        int
	Description string
	RetryAfter  int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram api error %d: %s", e.Code, e.Description)
}

// Client talks to the Bot API over HTTPS.
type Client struct {
	baseURL     string
	token       string
	pollTimeout time.Duration
	httpClient  *http.Client
	log         *slog.Logger
}

// NewClient creates a client from config. The HTTP timeout must exceed the
// long-poll timeout.
func NewClient(cfg config.TelegramConfig, logger *slog.Logger) *Client {
	baseURL := strings.TrimRight(cfg.APIURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:     baseURL,
		token:       cfg.Token,
		pollTimeout: cfg.PollTimeout,
		httpClient:  &http.Client{Timeout: cfg.RequestTimeout},
		log:         logger.With("adapter", "telegram"),
	}
}

// SendMessageParams describes one outgoing message.
type SendMessageParams struct {
	ChatID      int64
	Text        string
	ParseMode   string
	ReplyMarkup ReplyMarkup
}

func (c *Client) SendMessage(ctx context.Context, params SendMessageParams) (*Message, error) {
	body := map[string]any{
		"chat_id": params.ChatID,
		"text":    params.Text,
	}
	if params.ParseMode != "" {
		body["parse_mode"] = params.ParseMode
	}
	if params.ReplyMarkup != nil {
		body["reply_markup"] = params.ReplyMarkup
	}

	var msg Message
	if err := c.call(ctx, "sendMessage", body, &msg); err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	return &msg, nil
}

// SendText sends plain text without markup.
func (c *Client) SendText(ctx context.Context, chatID int64, text string) error {
	_, err := c.SendMessage(ctx, SendMessageParams{ChatID: chatID, Text: text})
	return err
}

func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackQueryID, text string) error {
	body := map[string]any{"callback_query_id": callbackQueryID}
	if text != "" {
		body["text"] = text
	}

	var ok bool
	if err := c.call(ctx, "answerCallbackQuery", body, &ok); err != nil {
		return fmt.Errorf("answer callback query: %w", err)
	}
	return nil
}

// GetUpdates long-polls for updates with id >= offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, limit int) ([]Update, error) {
	body := map[string]any{
		"timeout":         int(c.pollTimeout / time.Second),
		"allowed_updates": []string{"message", "callback_query"},
	}
	if offset > 0 {
		body["offset"] = offset
	}
	if limit > 0 {
		body["limit"] = limit
	}

	var updates []Update
	if err := c.call(ctx, "getUpdates", body, &updates); err != nil {
		return nil, fmt.Errorf("get updates: %w", err)
	}
	return updates, nil
}

// GetMe verifies the token.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	var u User
	if err := c.call(ctx, "getMe", nil, &u); err != nil {
		return nil, fmt.Errorf("get me: %w", err)
	}
	return &u, nil
}

func (c *Client) call(ctx context.Context, method string, body map[string]any, result any) error {
	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)

	var reader io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.DebugContext(ctx, "telegram api call", slog.String("method", method))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(raw, &apiResp); err != nil {
		return fmt.Errorf("unmarshal response (status %d): %w", resp.StatusCode, err)
	}

	if !apiResp.OK {
		apiErr := &APIError{Code: apiResp.ErrorCode, Description: apiResp.Description}
		if apiResp.Parameters != nil {
			apiErr.RetryAfter = apiResp.Parameters.RetryAfter
		}
		return apiErr
	}

	if result != nil && len(apiResp.Result) > 0 {
		if err := json.Unmarshal(apiResp.Result, result); err != nil {
			return fmt.Errorf("unmarshal result: %w", err)
		}
	}
	return nil
}

// Command returns the bot command of msg without the slash and @botname,
// plus the trimmed argument text. ok is false for non-command messages.
func Command(msg *Message) (cmd, args string, ok bool) {
	if msg == nil || !strings.HasPrefix(msg.Text, "/") {
		return "", "", false
	}

	head, rest, _ := strings.Cut(msg.Text, " ")
	head = strings.TrimPrefix(head, "/")
	if i := strings.IndexByte(head, '@'); i >= 0 {
		head = head[:i]
	}
	if head == "" {
		return "", "", false
	}
	return strings.ToLower(head), strings.TrimSpace(rest), true
}
