package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/placesgate/placesgate/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultNamespace is used when the config leaves the namespace empty.
const DefaultNamespace = "placesgate"

// Collector owns the Prometheus registry and every gateway metric.
//
// Recording methods are safe for concurrent use and are no-ops on a nil
// Collector or when metrics are disabled.
type Collector struct {
	enabled  bool
	registry *prometheus.Registry

	requestMetrics  *RequestMetrics
	limitMetrics    *LimitMetrics
	cacheMetrics    *CacheMetrics
	upstreamMetrics *UpstreamMetrics
	costMetrics     *CostMetrics

	// Bounds the number of distinct route labels.
	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a collector registered on registry. If registry is
// nil a fresh one is created.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = DefaultNamespace
	}

	return &Collector{
		enabled:            cfg.Enabled,
		registry:           registry,
		requestMetrics:     NewRequestMetrics(namespace, registry),
		limitMetrics:       NewLimitMetrics(namespace, registry),
		cacheMetrics:       NewCacheMetrics(namespace, registry),
		upstreamMetrics:    NewUpstreamMetrics(namespace, registry),
		costMetrics:        NewCostMetrics(namespace, registry),
		cardinalityLimiter: NewCardinalityLimiter(100),
	}
}

func (c *Collector) active() bool {
	return c != nil && c.enabled
}

// RecordRequest records a completed HTTP request.
//
// Parameters:
//   - route: Route pattern (e.g., "/api/places/nearby")
//   - status: HTTP status code
//   - duration: Time spent serving the request
func (c *Collector) RecordRequest(route string, status int, duration time.Duration) {
	if !c.active() {
		return
	}
	if route == "" || !c.cardinalityLimiter.Allow(route) {
		route = "other"
	}
	c.requestMetrics.Record(route, strconv.Itoa(status), duration)
}

// RecordRateLimitDecision records one admission decision.
func (c *Collector) RecordRateLimitDecision(allowed bool) {
	if !c.active() {
		return
	}
	c.limitMetrics.RecordDecision(allowed)
}

// RecordCacheHit records a cache hit.
func (c *Collector) RecordCacheHit() {
	if !c.active() {
		return
	}
	c.cacheMetrics.RecordHit()
}

// RecordCacheMiss records a cache miss.
func (c *Collector) RecordCacheMiss() {
	if !c.active() {
		return
	}
	c.cacheMetrics.RecordMiss()
}

// RecordUpstreamCall records one upstream call attempt.
//
// Parameters:
//   - outcome: "success", "error", "timeout" or "unreached"
//   - latency: Time spent waiting on the provider
func (c *Collector) RecordUpstreamCall(outcome string, latency time.Duration) {
	if !c.active() {
		return
	}
	c.upstreamMetrics.Record(outcome, latency)
}

// RecordCost adds a billed amount to the spend counter.
func (c *Collector) RecordCost(usd float64) {
	if !c.active() || usd <= 0 {
		return
	}
	c.costMetrics.AddCost(usd)
}

// RecordBudgetAlert counts an alert raised for a threshold.
func (c *Collector) RecordBudgetAlert(thresholdPercent float64) {
	if !c.active() {
		return
	}
	c.costMetrics.RecordAlert(strconv.FormatFloat(thresholdPercent, 'f', -1, 64))
}

// SetBudget updates the budget gauges.
func (c *Collector) SetBudget(usage, percentUsed, projected float64) {
	if !c.active() {
		return
	}
	c.costMetrics.SetBudget(usage, percentUsed, projected)
}

// SetCacheEntries updates the cache size gauge.
func (c *Collector) SetCacheEntries(n int) {
	if !c.active() {
		return
	}
	c.cacheMetrics.SetEntries(n)
}

// SetRateLimitKeys updates the tracked caller gauge.
func (c *Collector) SetRateLimitKeys(n int) {
	if !c.active() {
		return
	}
	c.limitMetrics.SetKeys(n)
}

// SetUsageRecords updates the stored call record gauge.
func (c *Collector) SetUsageRecords(n int) {
	if !c.active() {
		return
	}
	c.costMetrics.SetRecords(n)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// CardinalityLimiter caps the number of unique label values accepted.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a limiter admitting at most maxCardinality
// distinct values.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether labelSet is already known or still fits.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[labelSet]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}
	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
