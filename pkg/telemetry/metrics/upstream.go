package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Upstream call outcomes.
const (
	OutcomeSuccess   = "success"
	OutcomeError     = "error"
	OutcomeTimeout   = "timeout"
	OutcomeUnreached = "unreached"
)

// UpstreamMetrics tracks calls to the places provider.
//
// Metrics:
//   - placesgate_upstream_calls_total: Calls by outcome
//   - placesgate_upstream_duration_seconds: Provider latency
type UpstreamMetrics struct {
	callsTotal *prometheus.CounterVec
	duration   prometheus.Histogram
}

// NewUpstreamMetrics creates and registers upstream metrics.
func NewUpstreamMetrics(namespace string, registry *prometheus.Registry) *UpstreamMetrics {
	um := &UpstreamMetrics{
		callsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_calls_total",
				Help:      "Total number of places provider calls",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_duration_seconds",
				Help:      "Latency of places provider calls in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
		),
	}

	registry.MustRegister(um.callsTotal, um.duration)
	return um
}

// Record records one call.
func (um *UpstreamMetrics) Record(outcome string, latency time.Duration) {
	um.callsTotal.WithLabelValues(outcome).Inc()
	um.duration.Observe(latency.Seconds())
}
