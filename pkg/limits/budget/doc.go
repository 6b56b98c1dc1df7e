// Package budget tracks monthly spend against a fixed budget and raises
// one-shot alerts as spend crosses percentage thresholds.
//
// # Overview
//
// A Monitor accumulates the cost of every billed upstream call. After each
// charge it recomputes the share of the budget used, the days left in the
// calendar month and a linear projection of the month's total:
//
//	projected = currentUsage / daysElapsed * 30   (daysElapsed >= 1)
//	projected = currentUsage                      (first day of the cycle)
//
// # Alert Thresholds
//
// Thresholds (50, 75 and 90 percent by default) alert in ascending order,
// at most once each per billing cycle. A threshold that has alerted stays
// recorded until the monthly reset, even if usage is later lowered by a
// reconfiguration.
//
// # Monthly Reset
//
// MaybeResetForNewMonth compares the start of the current calendar month
// with the start of the cycle being tracked. When the month has moved on it
// clears usage, sent alerts and the daily log. Charge calls it first, and
// the maintenance scheduler calls it hourly, so a quiet gateway still rolls
// over.
//
// # Usage
//
//	monitor := budget.New(budget.Config{MonthlyLimit: 50}, clock.Real(), notifier)
//	state, err := monitor.Charge(ctx, 0.032)
//
// # Thread Safety
//
// Charge is a single critical section. Alert delivery happens after the
// state lock is released but is serialized, so alerts reach the notifier in
// the order they were decided.
package budget
