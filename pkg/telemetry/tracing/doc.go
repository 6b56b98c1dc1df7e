// Package tracing provides OpenTelemetry distributed tracing for placesgate.
//
// A Tracer is built from config.TracingConfig. When tracing is disabled the
// tracer is a noop and spans cost next to nothing, so callers never need to
// nil-check.
//
// # Spans
//
//   - gateway.search: one per search request, from validation to response
//   - cache.lookup: the cache probe, with placesgate.cache.hit
//   - places.search: the upstream HTTP call, with the provider status
//
// # Export
//
// Spans are exported over OTLP/gRPC to the configured collector endpoint.
// Sampling is "always", "never" or "ratio", wrapped in ParentBased so an
// inbound traceparent header decides for the whole trace.
//
// # Propagation
//
// HTTPMiddleware extracts W3C trace context from inbound requests and echoes
// the trace ID in the X-Trace-ID response header.
package tracing
