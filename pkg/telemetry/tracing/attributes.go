package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys in the placesgate namespace.
const (
	AttrCaller     = "placesgate.caller"
	AttrSearchType = "placesgate.search.type"
	AttrRadius     = "placesgate.search.radius_m"
	AttrCacheKey   = "placesgate.cache.key"
	AttrCacheHit   = "placesgate.cache.hit"
	AttrCost       = "placesgate.cost.usd"
	AttrRateLimit  = "placesgate.ratelimit.remaining"
	AttrUpstream   = "placesgate.upstream.status"
	AttrHTTPStatus = "http.response.status_code"
	AttrResults    = "placesgate.results"
)

// SetSearchAttributes records the request shape on a span.
func SetSearchAttributes(span trace.Span, caller, searchType string, radius int) {
	span.SetAttributes(
		attribute.String(AttrCaller, caller),
		attribute.String(AttrSearchType, searchType),
		attribute.Int(AttrRadius, radius),
	)
}

// SetCacheAttributes records a cache probe on a span.
func SetCacheAttributes(span trace.Span, key string, hit bool) {
	span.SetAttributes(
		attribute.String(AttrCacheKey, key),
		attribute.Bool(AttrCacheHit, hit),
	)
}

// SetUpstreamAttributes records the provider's answer on a span.
func SetUpstreamAttributes(span trace.Span, httpStatus int, providerStatus string, results int) {
	span.SetAttributes(
		attribute.Int(AttrHTTPStatus, httpStatus),
		attribute.String(AttrUpstream, providerStatus),
		attribute.Int(AttrResults, results),
	)
}

// SetCostAttribute records the charged cost on a span.
func SetCostAttribute(span trace.Span, cost float64) {
	span.SetAttributes(attribute.Float64(AttrCost, cost))
}

// SetRateLimitAttribute records the remaining quota on a span.
func SetRateLimitAttribute(span trace.Span, remaining int) {
	span.SetAttributes(attribute.Int(AttrRateLimit, remaining))
}
