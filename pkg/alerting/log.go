package alerting

import (
	"context"
	"log/slog"

	"github.com/placesgate/placesgate/pkg/limits/budget"
)

// LogNotifier writes alerts as structured warnings.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a log notifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger.With("component", "alerting.log")}
}

// Notify logs the alert. It never fails.
func (n *LogNotifier) Notify(ctx context.Context, alert budget.Alert) error {
	s := alert.State
	n.logger.WarnContext(ctx, "BUDGET ALERT",
		"threshold_percent", alert.ThresholdPercent,
		"current_usage", s.CurrentUsage,
		"budget_limit", s.BudgetLimit,
		"percentage_used", s.PercentageUsed,
		"projected_monthly_cost", s.ProjectedMonthlyCost,
		"days_remaining", s.DaysRemainingInMonth,
		"summary", Summary(alert),
	)
	return nil
}
