// Package alerting delivers budget threshold alerts.
//
// Three channels are available behind budget.Notifier: a structured log
// line, a JSON webhook (Slack-compatible "text" field) and SMTP email.
// New selects one from configuration.
package alerting

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/placesgate/placesgate/pkg/limits/budget"
)

// Channel names accepted by New.
const (
	ChannelLog     = "log"
	ChannelWebhook = "webhook"
	ChannelEmail   = "email"
)

// Config selects and configures an alert channel.
type Config struct {
	// Channel is "log", "webhook" or "email".
	Channel string

	// Webhook settings, used when Channel is "webhook".
	Webhook WebhookConfig

	// Email settings, used when Channel is "email".
	Email EmailConfig
}

// New builds the notifier for cfg.Channel.
func New(cfg Config, logger *slog.Logger) (budget.Notifier, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch strings.ToLower(cfg.Channel) {
	case "", ChannelLog:
		return NewLogNotifier(logger), nil
	case ChannelWebhook:
		return NewWebhookNotifier(cfg.Webhook)
	case ChannelEmail:
		return NewEmailNotifier(cfg.Email)
	default:
		return nil, fmt.Errorf("unknown alert channel %q", cfg.Channel)
	}
}

// Summary renders a one-line description of an alert.
func Summary(alert budget.Alert) string {
	s := alert.State
	return fmt.Sprintf(
		"Places API budget alert: %.0f%% threshold crossed. Spent $%.2f of $%.2f (%.1f%%), projected $%.2f this month, %d days remaining.",
		alert.ThresholdPercent,
		s.CurrentUsage,
		s.BudgetLimit,
		s.PercentageUsed,
		s.ProjectedMonthlyCost,
		s.DaysRemainingInMonth,
	)
}

// subject is the email subject line for an alert.
func subject(alert budget.Alert) string {
	return fmt.Sprintf("[placesgate] Budget %.0f%% threshold reached (%s)",
		alert.ThresholdPercent, alert.Timestamp.UTC().Format(time.RFC3339))
}

// AlertCounter counts alerts as they are raised.
type AlertCounter interface {
	RecordBudgetAlert(thresholdPercent float64)
}

// Counted wraps next so every alert is counted before delivery. A nil
// counter returns next unchanged.
func Counted(next budget.Notifier, counter AlertCounter) budget.Notifier {
	if counter == nil {
		return next
	}
	return budget.NotifierFunc(func(ctx context.Context, alert budget.Alert) error {
		counter.RecordBudgetAlert(alert.ThresholdPercent)
		if next == nil {
			return nil
		}
		return next.Notify(ctx, alert)
	})
}
