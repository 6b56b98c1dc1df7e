package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CacheMetrics tracks search cache performance.
//
// Metrics:
//   - placesgate_cache_hits_total: Total cache hits
//   - placesgate_cache_misses_total: Total cache misses
//   - placesgate_cache_entries: Current number of cached searches
//
// Hit rate is left to PromQL:
//
//	rate(placesgate_cache_hits_total[5m]) /
//	(rate(placesgate_cache_hits_total[5m]) + rate(placesgate_cache_misses_total[5m]))
type CacheMetrics struct {
	hitsTotal   prometheus.Counter
	missesTotal prometheus.Counter
	entries     prometheus.Gauge
}

// NewCacheMetrics creates and registers cache metrics.
func NewCacheMetrics(namespace string, registry *prometheus.Registry) *CacheMetrics {
	cm := &CacheMetrics{
		hitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Total number of cache hits",
			},
		),
		missesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Total number of cache misses",
			},
		),
		entries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "cache_entries",
				Help:      "Current number of entries in the search cache",
			},
		),
	}

	registry.MustRegister(cm.hitsTotal, cm.missesTotal, cm.entries)
	return cm
}

// RecordHit records a cache hit.
func (cm *CacheMetrics) RecordHit() {
	cm.hitsTotal.Inc()
}

// RecordMiss records a cache miss.
func (cm *CacheMetrics) RecordMiss() {
	cm.missesTotal.Inc()
}

// SetEntries updates the current cache size.
func (cm *CacheMetrics) SetEntries(n int) {
	cm.entries.Set(float64(n))
}
