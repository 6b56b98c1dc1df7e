// Package server exposes the gateway over HTTP.
//
// # Routes
//
//	GET /api/places/nearby?latitude=&longitude=&radius=&searchType=
//	GET /api/places/usage?days=&limit=
//	GET /health, /ready, /version
//	GET /metrics (when enabled)
//
// # Nearby search responses
//
//	200 {"results": [...]}                      X-Cache: HIT or MISS
//	400 {"error": "latitude: is required"}
//	429 {"error": "Rate limit exceeded", "message": "...", "retryAfter": 1312}
//	500 {"error": "Places API not configured"}
//	4xx/5xx {"error": "Places search failed"}   provider status propagated
//	500 {"error": "Internal server error"}
//
// X-RateLimit-Limit, X-RateLimit-Remaining and X-RateLimit-Reset (unix
// seconds) are set on every response for which the limiter was consulted,
// and Retry-After on 429.
//
// The usage endpoint reports in-memory, best-effort accounting. It is not a
// substitute for the provider's billing console.
package server
