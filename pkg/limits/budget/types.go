package budget

import (
	"context"
	"time"
)

// Default budget settings.
const (
	// DefaultMonthlyLimit is the monthly budget in USD.
	DefaultMonthlyLimit = 50.0

	// DailyRetention is how many daily buckets are kept.
	DailyRetention = 30

	// projectionDays is the month length used by the linear projection.
	projectionDays = 30
)

// DefaultThresholds returns the alert thresholds in percent.
func DefaultThresholds() []float64 {
	return []float64{50, 75, 90}
}

// Config configures a Monitor.
type Config struct {
	// MonthlyLimit is the budget for one calendar month in USD.
	MonthlyLimit float64

	// Thresholds are alert percentages. They are sorted and deduplicated.
	Thresholds []float64
}

// DailyUsage is the spend recorded on one calendar day.
type DailyUsage struct {
	Date string  `json:"date"`
	Cost float64 `json:"cost"`
}

// State is a snapshot of the budget.
type State struct {
	CurrentUsage         float64      `json:"currentUsage"`
	BudgetLimit          float64      `json:"budgetLimit"`
	PercentageUsed       float64      `json:"percentageUsed"`
	DaysRemainingInMonth int          `json:"daysRemainingInMonth"`
	ProjectedMonthlyCost float64      `json:"projectedMonthlyCost"`
	AlertsSent           []float64    `json:"alertsSent"`
	Thresholds           []float64    `json:"thresholds"`
	DailyUsage           []DailyUsage `json:"dailyUsage"`
	CycleStart           time.Time    `json:"cycleStart"`
}

// Remaining returns the unspent budget, floored at zero.
func (s State) Remaining() float64 {
	if s.CurrentUsage >= s.BudgetLimit {
		return 0
	}
	return s.BudgetLimit - s.CurrentUsage
}

// Alert is raised the first time usage crosses a threshold in a cycle.
type Alert struct {
	ThresholdPercent float64   `json:"thresholdPercent"`
	State            State     `json:"state"`
	Timestamp        time.Time `json:"timestamp"`
}

// Notifier delivers budget alerts.
type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, alert Alert) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, alert Alert) error {
	return f(ctx, alert)
}
