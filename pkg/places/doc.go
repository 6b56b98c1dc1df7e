// Package places is the client for the upstream places-search provider
// (Google Places Nearby Search).
//
// The client issues one HTTP GET per Search call and never retries: every
// upstream request is billed, so retry policy belongs to the caller, who is
// subject to the gateway's rate limiter. Errors are typed so the gateway can
// map them to HTTP statuses and decide whether the call reached the
// provider (and must be accounted for) or failed before it:
//
//   - *ConfigError: no credential; nothing was sent
//   - *TimeoutError: the call exceeded its deadline
//   - *ProviderError: the provider answered with a failure
//   - *ParseError: the provider answered with an unreadable body
//
// Reached(err) reports whether a failed call produced a provider response.
package places
