// Package gateway composes the cost controls in front of the places
// provider.
//
// A Service owns one instance of each control and runs every search
// through the same fixed sequence:
//
//	validate -> credential check -> rate limit -> cache lookup
//	         -> upstream call (on miss) -> usage record -> budget charge
//	         -> cache fill -> respond
//
// Each step short-circuits on failure. A denied caller touches neither the
// cache nor the provider. A cache hit is recorded as a zero-cost call and
// never charges the budget. A provider failure is recorded only when the
// request actually reached the provider, is never cached and never
// charged.
//
// Concurrent misses for the same cache key each call the provider; there
// is no request coalescing, so observed spend matches the number of
// uncached calls.
//
// Errors returned by Search are one of *ValidationError, *RateLimitError,
// *ConfigurationError, *UpstreamError or *InternalError; the HTTP layer maps
// them to 400, 429, 500, the provider's status and 500 respectively.
package gateway
