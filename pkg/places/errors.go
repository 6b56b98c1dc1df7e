package places

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ProviderError is a failure answered by the provider, either as a non-2xx
// HTTP status or as a non-success status field in a 200 body.
type ProviderError struct {
	// StatusCode is the HTTP status to surface to the caller.
	StatusCode int

	// Status is the provider status field, if any.
	Status string

	// Message is the provider error message.
	Message string

	// Reached is true when the provider received the request.
	Reached bool
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("places provider error (status %d, %s): %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("places provider error (status %d): %s", e.StatusCode, e.Message)
}

// TimeoutError is a call that exceeded its deadline.
type TimeoutError struct {
	// Timeout is the configured timeout.
	Timeout time.Duration

	// Cause is the underlying transport error.
	Cause error
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("places request timeout after %s", e.Timeout)
}

// Unwrap returns the underlying error for error chain support.
func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// ParseError is a provider response that could not be decoded.
type ParseError struct {
	// RawResponse is a prefix of the body that failed to parse.
	RawResponse string

	// Cause is the underlying parse error.
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("places response parse error: %v", e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ConfigError is a client configuration problem, such as a missing
// credential.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("places configuration error for field %q: %s", e.Field, e.Message)
}

// ErrMissingAPIKey is returned by Search when no credential is configured.
var ErrMissingAPIKey = &ConfigError{Field: "api_key", Message: "places API key is not configured"}

// Reached reports whether a failed call produced a provider response.
// Timeouts count as not reached: no response was observed.
func Reached(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Reached
	}
	var parseErr *ParseError
	return errors.As(err, &parseErr)
}

// StatusCode returns the HTTP status a failed call should surface.
func StatusCode(err error) int {
	var pe *ProviderError
	if errors.As(err, &pe) && pe.StatusCode > 0 {
		return pe.StatusCode
	}
	var te *TimeoutError
	if errors.As(err, &te) {
		return http.StatusGatewayTimeout
	}
	var ce *ConfigError
	if errors.As(err, &ce) {
		return http.StatusInternalServerError
	}
	return http.StatusBadGateway
}

// statusForProvider maps a non-success provider status field to an HTTP
// status.
func statusForProvider(status string) int {
	if status == StatusOverQueryLimit {
		return http.StatusTooManyRequests
	}
	return http.StatusBadGateway
}
