package limits

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Error types for limit violations and invalid input.
var (
	// ErrRateLimitExceeded is returned when a caller has used up its window.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrInvalidAmount is returned when a cost is negative, NaN or infinite.
	ErrInvalidAmount = errors.New("invalid amount")
)

// RateLimitInfo describes the caller's current window.
// It is used to populate the X-RateLimit-* response headers.
type RateLimitInfo struct {
	// Limit is the maximum number of requests in a window.
	Limit int

	// Remaining is the number of requests left in the current window.
	Remaining int

	// Reset is when the current window ends.
	Reset time.Time

	// RetryAfter is how long a denied caller should wait.
	RetryAfter time.Duration
}

// LimitError provides detailed context about a limit violation.
type LimitError struct {
	// Type is the error type (rate_limit, budget).
	Type string

	// Identifier is the caller key or budget name.
	Identifier string

	// Limit is the configured limit value.
	Limit interface{}

	// Current is the value that exceeded the limit.
	Current interface{}

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *LimitError) Error() string {
	return fmt.Sprintf("%s limit exceeded for %s: current=%v, limit=%v",
		e.Type, e.Identifier, e.Current, e.Limit)
}

// Unwrap returns the underlying error for error wrapping.
func (e *LimitError) Unwrap() error {
	return e.Err
}

// ValidateAmount reports ErrInvalidAmount for negative or non-finite costs.
func ValidateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	return nil
}

// RetryAfterSeconds rounds d up to whole seconds, with a floor of one.
func RetryAfterSeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
