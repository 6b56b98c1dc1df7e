package ratelimit

import "time"

// Config configures a fixed-window limiter.
type Config struct {
	// Limit is the number of requests admitted per key per window.
	Limit int

	// Window is the length of each fixed window.
	Window time.Duration
}

// DefaultConfig returns 5 requests per hour.
func DefaultConfig() Config {
	return Config{
		Limit:  5,
		Window: time.Hour,
	}
}

// Decision contains the result of an admission check.
type Decision struct {
	// Allowed indicates if the request is permitted.
	Allowed bool

	// Limit is the configured per-window limit.
	Limit int

	// Remaining is how many requests remain in the window.
	Remaining int

	// ResetAt is when the current window ends.
	ResetAt time.Time

	// RetryAfter is how long to wait before the next window opens.
	// Zero when the request is allowed.
	RetryAfter time.Duration
}

// entry is the per-key window state.
type entry struct {
	count   int
	resetAt time.Time
}
