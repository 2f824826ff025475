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
	"github.com/sentinelpay/fraudlog/internal/pkg/pkgrouter"
)

// WebhookChannel posts the alert as a JSON document to a configured URL.
type WebhookChannel struct {
	url    string
	client *http.Client
}

func NewWebhookChannel(url string, timeout time.Duration) *WebhookChannel {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &WebhookChannel{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (c *WebhookChannel) Name() string {
	return "webhook"
}

func (c *WebhookChannel) Recipient() string {
	return c.url
}

func (c *WebhookChannel) Send(ctx context.Context, alert entity.AlertEvent) error {
	payload, err := json.Marshal(map[string]any{
		"event_id":       alert.EventID,
		"transaction_id": alert.TransactionID,
		"rule_id":        alert.RuleID,
		"rule_name":      alert.RuleName,
		"rule_type":      alert.RuleType,
		"amount":         alert.Amount,
		"from_account":   alert.FromAccount,
		"reason":         alert.Reason,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if alert.CorrelationID != "" {
		req.Header.Set(pkgrouter.HeaderCorrelationID, alert.CorrelationID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
