package ratelimit

import (
	"sync"
	"time"

	"github.com/placesgate/placesgate/pkg/clock"
	"github.com/placesgate/placesgate/pkg/limits"
)

// Limiter is a fixed-window rate limiter keyed by caller identity.
type Limiter struct {
	limit   int
	window  time.Duration
	clock   clock.Clock
	entries map[string]*entry
	mu      sync.Mutex
}

// New creates a limiter. Non-positive values in cfg fall back to
// DefaultConfig. A nil clock uses the wall clock.
func New(cfg Config, clk clock.Clock) *Limiter {
	def := DefaultConfig()
	if cfg.Limit <= 0 {
		cfg.Limit = def.Limit
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}

	return &Limiter{
		limit:   cfg.Limit,
		window:  cfg.Window,
		clock:   clock.OrReal(clk),
		entries: make(map[string]*entry),
	}
}

// Admit records a request for key and reports whether it is allowed.
func (l *Limiter) Admit(key string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	e, ok := l.entries[key]

	// Expired windows are replaced, never mutated.
	if !ok || now.After(e.resetAt) {
		e = &entry{count: 1, resetAt: now.Add(l.window)}
		l.entries[key] = e
		return Decision{
			Allowed:   true,
			Limit:     l.limit,
			Remaining: l.limit - 1,
			ResetAt:   e.resetAt,
		}
	}

	if e.count < l.limit {
		e.count++
		return Decision{
			Allowed:   true,
			Limit:     l.limit,
			Remaining: l.limit - e.count,
			ResetAt:   e.resetAt,
		}
	}

	return Decision{
		Allowed:    false,
		Limit:      l.limit,
		Remaining:  0,
		ResetAt:    e.resetAt,
		RetryAfter: e.resetAt.Sub(now),
	}
}

// Err converts a denied decision into a *limits.LimitError.
// It returns nil for allowed decisions.
func (d Decision) Err(key string) error {
	if d.Allowed {
		return nil
	}
	return &limits.LimitError{
		Type:       "rate_limit",
		Identifier: key,
		Limit:      d.Limit,
		Current:    d.Limit,
		Err:        limits.ErrRateLimitExceeded,
	}
}

// Info converts the decision into header-ready rate limit info.
func (d Decision) Info() limits.RateLimitInfo {
	return limits.RateLimitInfo{
		Limit:      d.Limit,
		Remaining:  d.Remaining,
		Reset:      d.ResetAt,
		RetryAfter: d.RetryAfter,
	}
}

// Sweep removes entries whose window has ended and returns how many were
// removed.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	removed := 0
	for key, e := range l.entries {
		if now.After(e.resetAt) {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Limits returns the current limit and window.
func (l *Limiter) Limits() (int, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.limit, l.window
}

// SetLimits changes the limit and window for windows opened from now on.
// Windows already in progress keep their reset time.
func (l *Limiter) SetLimits(limit int, window time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limit > 0 {
		l.limit = limit
	}
	if window > 0 {
		l.window = window
	}
}
