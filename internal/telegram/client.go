package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// ErrNotConfigured is returned when the bot token or chat id is missing.
var ErrNotConfigured = errors.New("telegram credentials missing")

// DefaultBaseURL is the public Bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

// Client talks to the Bot API on behalf of one authorised chat.
type Client struct {
	token   string
	chatID  int64
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient validates the credentials and returns a client.
func NewClient(token, chatID string, logger *zap.Logger) (*Client, error) {
	if token == "" || chatID == "" {
		return nil, ErrNotConfigured
	}
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", chatID, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		token:   token,
		chatID:  id,
		baseURL: DefaultBaseURL,
		// Long polling holds requests open for up to pollTimeout seconds.
		http:   &http.Client{Timeout: (pollTimeout + 10) * time.Second},
		logger: logger,
	}, nil
}

// WithBaseURL points the client at another Bot API server.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

// ChatID is the only chat the client talks to.
func (c *Client) ChatID() int64 { return c.chatID }

func (c *Client) endpoint(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
}

// Notify sends a Markdown message to the configured chat.
func (c *Client) Notify(ctx context.Context, text string) error {
	payload := map[string]any{
		"chat_id":    c.chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	c.logger.Debug("Telegram notify", zap.String("text", text))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("sendMessage"), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("telegram sendMessage: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram sendMessage: status %s", resp.Status)
	}
	return nil
}
