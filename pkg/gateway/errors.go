package gateway

import (
	"errors"
	"fmt"

	"github.com/placesgate/placesgate/pkg/limits"
)

// ValidationError reports a missing or out-of-range request parameter.
type ValidationError struct {
	Param   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Param == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Param, e.Message)
}

// RateLimitError reports that the caller used up its window.
type RateLimitError struct {
	CallerKey string
	Info      limits.RateLimitInfo
	Err       error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s, retry in %ds", e.CallerKey, e.RetryAfterSeconds())
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// RetryAfterSeconds returns the wait in whole seconds, at least one.
func (e *RateLimitError) RetryAfterSeconds() int {
	return limits.RetryAfterSeconds(e.Info.RetryAfter)
}

// ConfigurationError reports a missing credential or setting. It is fatal
// for the deployment until fixed.
type ConfigurationError struct {
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// UpstreamError reports a failed provider call. StatusCode is the status to
// return to the caller.
type UpstreamError struct {
	StatusCode int
	Reached    bool
	Err        error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("places search failed (status %d): %v", e.StatusCode, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// InternalError wraps an unexpected failure. Its detail is for logs only.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// IsRateLimited reports whether err is a rate limit denial.
func IsRateLimited(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}
