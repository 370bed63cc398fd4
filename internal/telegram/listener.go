package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// pollTimeout is the long-poll duration passed to getUpdates, in seconds.
const pollTimeout = 60

// retryDelay is how long the listener waits after a failed poll.
var retryDelay = 5 * time.Second

// Update represents a Telegram Update object (partial schema)
type Update struct {
	UpdateID int `json:"update_id"`
	Message  struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		From struct {
			Username string `json:"username"`
		} `json:"from"`
	} `json:"message"`
}

type UpdateResponse struct {
	Ok          bool     `json:"ok"`
	Result      []Update `json:"result"`
	Description string   `json:"description"`
	ErrorCode   int      `json:"error_code"`
}

// CommandHandler processes a slash command and returns the reply text.
type CommandHandler func(command string) string

// Listen long-polls for commands until ctx is cancelled. Messages from any
// chat other than the configured one are logged and dropped unanswered.
func (c *Client) Listen(ctx context.Context, handler CommandHandler) error {
	offset := 0
	c.logger.Info("Telegram listener started")

	for {
		if ctx.Err() != nil {
			c.logger.Info("Telegram listener stopped")
			return nil
		}

		updates, err := c.getUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			c.logger.Warn("Telegram poll failed", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(retryDelay):
			}
			continue
		}

		for _, update := range updates {
			offset = update.UpdateID + 1

			if update.Message.Chat.ID != c.chatID {
				c.logger.Warn("Unauthorized command attempt",
					zap.String("username", update.Message.From.Username),
					zap.Int64("chat_id", update.Message.Chat.ID),
					zap.String("text", update.Message.Text))
				continue
			}

			text := strings.TrimSpace(update.Message.Text)
			if !strings.HasPrefix(text, "/") {
				continue
			}
			c.logger.Info("Command received", zap.String("command", text))
			reply := handler(text)
			if reply == "" {
				continue
			}
			if err := c.Notify(ctx, reply); err != nil {
				c.logger.Warn("Telegram reply failed", zap.Error(err))
			}
		}
	}
}

func (c *Client) getUpdates(ctx context.Context, offset int) ([]Update, error) {
	url := fmt.Sprintf("%s?offset=%d&timeout=%d", c.endpoint("getUpdates"), offset, pollTimeout)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result UpdateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}
	if !result.Ok {
		return nil, fmt.Errorf("telegram API error: %s (code %d)", result.Description, result.ErrorCode)
	}
	return result.Result, nil
}
