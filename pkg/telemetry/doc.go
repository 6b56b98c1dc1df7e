// Package telemetry groups the gateway's observability packages.
//
//   - logging: slog construction with secret redaction and request fields
//   - metrics: Prometheus collector and /metrics handler
//   - tracing: OpenTelemetry tracer exporting over OTLP/gRPC
//   - health: liveness, readiness and version endpoints
//
// The places API key is sent to the provider as a query parameter, so the
// logging package masks key= values in every attribute it sees and the
// places client strips request URLs from transport errors before they are
// returned.
package telemetry
