package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LimitMetrics tracks rate limiter activity.
//
// Metrics:
//   - placesgate_rate_limit_decisions_total: Decisions by result ("allowed", "denied")
//   - placesgate_rate_limit_keys: Callers with a live window entry
type LimitMetrics struct {
	decisionsTotal *prometheus.CounterVec
	keys           prometheus.Gauge
}

// NewLimitMetrics creates and registers rate limit metrics.
func NewLimitMetrics(namespace string, registry *prometheus.Registry) *LimitMetrics {
	lm := &LimitMetrics{
		decisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_decisions_total",
				Help:      "Total number of rate limit decisions",
			},
			[]string{"result"},
		),
		keys: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "rate_limit_keys",
				Help:      "Number of caller keys tracked by the rate limiter",
			},
		),
	}

	registry.MustRegister(lm.decisionsTotal, lm.keys)
	return lm
}

// RecordDecision records an admission decision.
func (lm *LimitMetrics) RecordDecision(allowed bool) {
	result := "denied"
	if allowed {
		result = "allowed"
	}
	lm.decisionsTotal.WithLabelValues(result).Inc()
}

// SetKeys sets the tracked key gauge.
func (lm *LimitMetrics) SetKeys(n int) {
	lm.keys.Set(float64(n))
}
