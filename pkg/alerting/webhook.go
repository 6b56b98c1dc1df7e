package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/placesgate/placesgate/pkg/limits/budget"
)

// WebhookConfig configures a webhook notifier.
type WebhookConfig struct {
	// URL receives a JSON POST per alert.
	URL string

	// Timeout bounds each delivery. Default: 5s
	Timeout time.Duration

	// Headers are added to every request (e.g. an auth token).
	Headers map[string]string
}

// webhookPayload is the POST body. The text field makes it usable as a
// Slack or Mattermost incoming webhook without transformation.
type webhookPayload struct {
	Text             string       `json:"text"`
	ThresholdPercent float64      `json:"thresholdPercent"`
	Timestamp        time.Time    `json:"timestamp"`
	Budget           budget.State `json:"budget"`
}

// WebhookNotifier posts alerts to an HTTP endpoint.
type WebhookNotifier struct {
	config WebhookConfig
	client *http.Client
}

// NewWebhookNotifier creates a webhook notifier.
func NewWebhookNotifier(cfg WebhookConfig) (*WebhookNotifier, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("webhook url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	return &WebhookNotifier{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Notify posts the alert and requires a 2xx response.
func (n *WebhookNotifier) Notify(ctx context.Context, alert budget.Alert) error {
	body, err := json.Marshal(webhookPayload{
		Text:             Summary(alert),
		ThresholdPercent: alert.ThresholdPercent,
		Timestamp:        alert.Timestamp,
		Budget:           alert.State,
	})
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range n.config.Headers {
		req.Header.Set(key, value)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook delivery failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
