// Package middleware provides the HTTP middleware chain for the gateway.
//
// The router applies them outermost first:
//
//	Recovery -> RequestID -> tracing.HTTPMiddleware -> Logging -> CORS -> Timeout
//
// Recovery turns panics into a generic 500 so no internal detail reaches
// the caller. RequestID accepts a caller-supplied X-Request-ID or
// generates a UUID, and stores it in the context for the logger. Logging
// writes one line per request and feeds the request metrics. Timeout bounds
// the request context; handlers observe it through ctx.Done.
package middleware
