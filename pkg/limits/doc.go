// Package limits holds the cost-control primitives that sit in front of the
// metered places-search API.
//
// # Overview
//
// Three sub-packages each own one piece of state:
//
//   - ratelimit: fixed-window admission control keyed by caller
//   - usage: a capacity-bounded log of upstream calls with aggregation
//   - budget: a monthly spend accumulator with one-shot threshold alerts
//
// This package holds the error values and small types they share.
//
// # Thread Safety
//
// Every limiter, tracker and monitor guards its own state with a mutex and
// may be shared across request goroutines. None of them persist state; a
// process restart starts from zero.
package limits
