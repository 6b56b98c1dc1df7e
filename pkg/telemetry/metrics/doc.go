// Package metrics exposes Prometheus metrics for the gateway.
//
// All metrics live under the configured namespace (default "placesgate")
// and are registered on a private registry owned by the Collector, so tests
// can build as many collectors as they like.
//
// # Metrics
//
// Requests:
//   - requests_total{route,status}
//   - request_duration_seconds{route}
//
// Admission and caching:
//   - rate_limit_decisions_total{result}
//   - rate_limit_keys
//   - cache_hits_total, cache_misses_total
//   - cache_entries
//
// Upstream and spend:
//   - upstream_calls_total{outcome}
//   - upstream_duration_seconds
//   - cost_usd_total
//   - budget_alerts_total{threshold}
//   - budget_usage_usd, budget_used_percent, budget_projected_usd
//   - usage_records
//
// A nil *Collector is valid and records nothing.
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	router.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//
//	collector.RecordCacheHit()
//	collector.RecordUpstreamCall("success", 180*time.Millisecond)
package metrics
