package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sentinelpay/fraudlog/internal/fraud/entity"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramChannel sends alerts through the Telegram bot API.
type TelegramChannel struct {
	base   string
	token  string
	chatID string
	client *http.Client
}

func NewTelegramChannel(token, chatID string, timeout time.Duration) *TelegramChannel {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &TelegramChannel{
		base:   telegramAPIBase,
		token:  token,
		chatID: chatID,
		client: &http.Client{Timeout: timeout},
	}
}

func (c *TelegramChannel) Name() string {
	return "telegram"
}

func (c *TelegramChannel) Recipient() string {
	return c.chatID
}

func (c *TelegramChannel) Send(ctx context.Context, alert entity.AlertEvent) error {
	text := fmt.Sprintf("Fraud alert: rule %q matched transaction %s (amount %d): %s",
		alert.RuleName, alert.TransactionID, alert.Amount, alert.Reason)

	payload, err := json.Marshal(map[string]string{
		"chat_id": c.chatID,
		"text":    text,
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.base, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}
