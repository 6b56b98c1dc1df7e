package budget

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/placesgate/placesgate/pkg/clock"
	"github.com/placesgate/placesgate/pkg/limits"
)

// Monitor accumulates monthly spend and raises threshold alerts.
type Monitor struct {
	limit      float64
	thresholds []float64
	clock      clock.Clock
	notifier   Notifier
	logger     *slog.Logger

	currentUsage float64
	alertsSent   map[float64]bool
	daily        *DailyLog

	// cycleStart is the first instant of the month being tracked.
	cycleStart time.Time

	mu sync.Mutex

	// nextTicket orders alert batches by when they were decided. It is
	// guarded by mu; serving and deliverTurn are guarded by deliverMu.
	nextTicket  uint64
	serving     uint64
	deliverMu   sync.Mutex
	deliverTurn *sync.Cond
}

// New creates a monitor for the current calendar month.
//
// A non-positive MonthlyLimit uses DefaultMonthlyLimit and empty
// Thresholds use DefaultThresholds. A nil notifier drops alerts after
// logging them.
func New(cfg Config, clk clock.Clock, notifier Notifier) *Monitor {
	clk = clock.OrReal(clk)
	if cfg.MonthlyLimit <= 0 {
		cfg.MonthlyLimit = DefaultMonthlyLimit
	}

	m := &Monitor{
		limit:      cfg.MonthlyLimit,
		thresholds: normalizeThresholds(cfg.Thresholds),
		clock:      clk,
		notifier:   notifier,
		logger:     slog.Default().With("component", "budget.monitor"),
		alertsSent: make(map[float64]bool),
		daily:      NewDailyLog(DailyRetention),
		cycleStart: startOfMonth(clk.Now()),
	}
	m.deliverTurn = sync.NewCond(&m.deliverMu)
	return m
}

// WithLogger replaces the monitor's logger.
func (m *Monitor) WithLogger(logger *slog.Logger) *Monitor {
	if logger != nil {
		m.logger = logger.With("component", "budget.monitor")
	}
	return m
}

// Charge adds cost to the running total and today's bucket, then raises
// any thresholds crossed for the first time this cycle.
//
// Alerts are delivered before Charge returns, outside the monitor lock and
// detached from ctx cancellation so a dropped request cannot lose a
// one-shot alert. The notifier's own timeout bounds delivery. Failures are
// logged and do not fail the charge.
func (m *Monitor) Charge(ctx context.Context, cost float64) (State, error) {
	if err := limits.ValidateAmount(cost); err != nil {
		return m.Status(), err
	}

	m.mu.Lock()
	now := m.clock.Now()
	m.maybeResetLocked(now)

	m.currentUsage += cost
	m.daily.Add(now, cost)

	state := m.stateLocked(now)

	var pending []float64
	for _, threshold := range m.thresholds {
		if state.PercentageUsed >= threshold && !m.alertsSent[threshold] {
			m.alertsSent[threshold] = true
			pending = append(pending, threshold)
		}
	}
	if len(pending) == 0 {
		m.mu.Unlock()
		return state, nil
	}
	state.AlertsSent = m.sentLocked()
	ticket := m.nextTicket
	m.nextTicket++
	m.mu.Unlock()

	m.awaitTurn(ticket)
	defer m.finishTurn()

	deliverCtx := context.WithoutCancel(ctx)
	for _, threshold := range pending {
		m.deliver(deliverCtx, Alert{
			ThresholdPercent: threshold,
			State:            state,
			Timestamp:        now,
		})
	}

	return state, nil
}

// awaitTurn blocks until every batch decided before ticket has been
// delivered.
func (m *Monitor) awaitTurn(ticket uint64) {
	m.deliverMu.Lock()
	defer m.deliverMu.Unlock()
	for m.serving != ticket {
		m.deliverTurn.Wait()
	}
}

func (m *Monitor) finishTurn() {
	m.deliverMu.Lock()
	defer m.deliverMu.Unlock()
	m.serving++
	m.deliverTurn.Broadcast()
}

// deliver sends one alert. Only the batch holding the current turn calls it.
func (m *Monitor) deliver(ctx context.Context, alert Alert) {
	m.logger.Warn("budget threshold crossed",
		"threshold_percent", alert.ThresholdPercent,
		"current_usage", alert.State.CurrentUsage,
		"budget_limit", alert.State.BudgetLimit,
		"percentage_used", alert.State.PercentageUsed,
	)

	if m.notifier == nil {
		return
	}
	if err := m.notifier.Notify(ctx, alert); err != nil {
		m.logger.Error("budget alert delivery failed",
			"threshold_percent", alert.ThresholdPercent,
			"error", err,
		)
	}
}

// Status returns a snapshot of the budget.
func (m *Monitor) Status() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked(m.clock.Now())
}

// MaybeResetForNewMonth clears usage, sent alerts and the daily log when
// the calendar month has changed since the tracked cycle began. It reports
// whether a reset happened and is safe to call any number of times.
func (m *Monitor) MaybeResetForNewMonth() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maybeResetLocked(m.clock.Now())
}

func (m *Monitor) maybeResetLocked(now time.Time) bool {
	monthStart := startOfMonth(now)
	if !m.cycleStart.Before(monthStart) {
		return false
	}

	m.logger.Info("budget cycle reset",
		"previous_cycle", m.cycleStart.Format("2006-01"),
		"previous_usage", m.currentUsage,
		"cycle", monthStart.Format("2006-01"),
	)

	m.currentUsage = 0
	m.alertsSent = make(map[float64]bool)
	m.daily.Reset()
	m.cycleStart = monthStart
	return true
}

// Reconfigure changes the budget limit and thresholds. Thresholds that
// already alerted this cycle stay recorded. Non-positive limits and empty
// threshold lists leave the current values in place.
func (m *Monitor) Reconfigure(limit float64, thresholds []float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limit > 0 {
		m.limit = limit
	}
	if len(thresholds) > 0 {
		m.thresholds = normalizeThresholds(thresholds)
	}
}

// stateLocked builds a snapshot. Must be called with mu held.
func (m *Monitor) stateLocked(now time.Time) State {
	percentage := 0.0
	if m.limit > 0 {
		percentage = m.currentUsage / m.limit * 100
	}

	projected := m.currentUsage
	daysElapsed := int(now.Sub(m.cycleStart) / (24 * time.Hour))
	if daysElapsed >= 1 {
		projected = m.currentUsage / float64(daysElapsed) * projectionDays
	}

	thresholds := make([]float64, len(m.thresholds))
	copy(thresholds, m.thresholds)

	return State{
		CurrentUsage:         m.currentUsage,
		BudgetLimit:          m.limit,
		PercentageUsed:       percentage,
		DaysRemainingInMonth: daysInMonth(now) - now.Day(),
		ProjectedMonthlyCost: projected,
		AlertsSent:           m.sentLocked(),
		Thresholds:           thresholds,
		DailyUsage:           m.daily.Snapshot(),
		CycleStart:           m.cycleStart,
	}
}

// sentLocked returns the alerted thresholds in ascending order.
func (m *Monitor) sentLocked() []float64 {
	sent := make([]float64, 0, len(m.alertsSent))
	for threshold := range m.alertsSent {
		sent = append(sent, threshold)
	}
	sort.Float64s(sent)
	return sent
}

// normalizeThresholds sorts, deduplicates and drops non-positive values.
func normalizeThresholds(in []float64) []float64 {
	if len(in) == 0 {
		return DefaultThresholds()
	}

	out := make([]float64, 0, len(in))
	for _, t := range in {
		if t > 0 {
			out = append(out, t)
		}
	}
	sort.Float64s(out)

	deduped := out[:0]
	for i, t := range out {
		if i == 0 || t != deduped[len(deduped)-1] {
			deduped = append(deduped, t)
		}
	}
	if len(deduped) == 0 {
		return DefaultThresholds()
	}
	return deduped
}
