package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/placesgate/placesgate/pkg/cache"
	"github.com/placesgate/placesgate/pkg/limits/budget"
	"github.com/placesgate/placesgate/pkg/limits/ratelimit"
	"github.com/placesgate/placesgate/pkg/limits/usage"
	"github.com/placesgate/placesgate/pkg/places"
	"github.com/placesgate/placesgate/pkg/telemetry/logging"
	"github.com/placesgate/placesgate/pkg/telemetry/metrics"
	"github.com/placesgate/placesgate/pkg/telemetry/tracing"
)

// EndpointNearby labels nearby search calls in usage records.
const EndpointNearby = "nearbysearch"

// Usage report defaults.
const (
	DefaultRecentLimit = 50
	MaxRecentLimit     = 500
)

// Deps are the collaborators a Service owns. Limiter, Cache, Usage, Budget
// and Searcher are required.
type Deps struct {
	Limiter  *ratelimit.Limiter
	Cache    *cache.Store
	Usage    *usage.Tracker
	Budget   *budget.Monitor
	Searcher places.Searcher

	// Optional.
	Metrics *metrics.Collector
	Tracer  *tracing.Tracer
	Logger  *slog.Logger

	// Source names the upstream in usage records. Default: "google_places"
	Source string

	// Limits bounds request parsing. Zero values use the defaults.
	Limits RequestLimits
}

// Service is the cost-governance gateway.
type Service struct {
	limiter  *ratelimit.Limiter
	cache    *cache.Store
	usage    *usage.Tracker
	budget   *budget.Monitor
	searcher places.Searcher

	metrics *metrics.Collector
	tracer  *tracing.Tracer
	logger  *slog.Logger
	source  string
	limits  RequestLimits
}

// credentialed is implemented by searchers that can report a missing key
// without making a call.
type credentialed interface {
	Configured() bool
}

// New creates a Service. It fails if a required collaborator is missing.
func New(deps Deps) (*Service, error) {
	switch {
	case deps.Limiter == nil:
		return nil, errors.New("gateway: rate limiter is required")
	case deps.Cache == nil:
		return nil, errors.New("gateway: cache is required")
	case deps.Usage == nil:
		return nil, errors.New("gateway: usage tracker is required")
	case deps.Budget == nil:
		return nil, errors.New("gateway: budget monitor is required")
	case deps.Searcher == nil:
		return nil, errors.New("gateway: searcher is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	source := deps.Source
	if source == "" {
		source = usage.DefaultMeteredSource
	}

	return &Service{
		limiter:  deps.Limiter,
		cache:    deps.Cache,
		usage:    deps.Usage,
		budget:   deps.Budget,
		searcher: deps.Searcher,
		metrics:  deps.Metrics,
		tracer:   deps.Tracer,
		logger:   logger.With("component", "gateway"),
		source:   source,
		limits:   deps.Limits.withDefaults(),
	}, nil
}

// ParseSearchRequest validates query parameters with the service's radius
// limits.
func (s *Service) ParseSearchRequest(q url.Values) (SearchRequest, error) {
	return s.limits.Parse(q)
}

// Configured reports whether the searcher has a credential.
func (s *Service) Configured() bool {
	if c, ok := s.searcher.(credentialed); ok {
		return c.Configured()
	}
	return true
}

// Search serves one nearby search.
//
// On a denied or failed request the returned response is still non-nil
// when rate limit information is known, so callers can set headers.
func (s *Service) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	if req.CallerKey == "" {
		req.CallerKey = UnknownCaller
	}
	ctx = logging.WithCaller(ctx, req.CallerKey)

	ctx, span := s.tracer.Start(ctx, "gateway.search")
	defer span.End()
	tracing.SetSearchAttributes(span, req.CallerKey, req.SearchType, req.Radius)

	resp, err := s.search(ctx, req)
	tracing.SetStatus(span, err)
	return resp, err
}

func (s *Service) search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if !s.Configured() {
		s.logger.ErrorContext(ctx, "places API key not configured")
		return nil, &ConfigurationError{Message: "Places API not configured", Err: places.ErrMissingAPIKey}
	}

	decision := s.limiter.Admit(req.CallerKey)
	s.metrics.RecordRateLimitDecision(decision.Allowed)
	resp := &SearchResponse{RateLimit: decision.Info()}
	if !decision.Allowed {
		s.logger.InfoContext(ctx, "rate limit exceeded",
			"limit", decision.Limit,
			"reset_at", decision.ResetAt,
		)
		return resp, &RateLimitError{
			CallerKey: req.CallerKey,
			Info:      decision.Info(),
			Err:       decision.Err(req.CallerKey),
		}
	}

	resp.CacheKey = cache.Key(req.Latitude, req.Longitude, req.Radius, req.SearchType)
	if payload, ok := s.lookup(ctx, resp.CacheKey); ok {
		s.usage.Record(s.source, EndpointNearby, true, req.CallerKey)
		s.metrics.RecordCacheHit()
		resp.Results = payload
		resp.Cached = true
		return resp, nil
	}
	s.metrics.RecordCacheMiss()

	keyword, _ := places.KeywordFor(req.SearchType)
	start := time.Now()
	result, err := s.searcher.Search(ctx, places.Query{
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		RadiusMeters: req.Radius,
		Keyword:      keyword,
	})
	latency := time.Since(start)
	if err != nil {
		return resp, s.upstreamFailure(ctx, req, err, latency)
	}
	s.metrics.RecordUpstreamCall(metrics.OutcomeSuccess, latency)

	record := s.usage.Record(s.source, EndpointNearby, false, req.CallerKey)
	if record.EstimatedCost > 0 {
		state, err := s.budget.Charge(ctx, record.EstimatedCost)
		if err != nil {
			return resp, &InternalError{Op: "charge budget", Err: err}
		}
		s.metrics.RecordCost(record.EstimatedCost)
		s.metrics.SetBudget(state.CurrentUsage, state.PercentageUsed, state.ProjectedMonthlyCost)
	}

	s.cache.Put(resp.CacheKey, result.Places)
	resp.Results = result.Places

	s.logger.InfoContext(ctx, "places search served from upstream",
		"cache_key", resp.CacheKey,
		"results", len(result.Places),
		"cost", record.EstimatedCost,
		"latency_ms", latency.Milliseconds(),
	)
	return resp, nil
}

// lookup reads the cache inside its own span.
func (s *Service) lookup(ctx context.Context, key string) ([]json.RawMessage, bool) {
	_, span := s.tracer.Start(ctx, "cache.lookup")
	defer span.End()

	payload, ok := s.cache.Get(key)
	tracing.SetCacheAttributes(span, key, ok)
	return payload, ok
}

// upstreamFailure records a failed provider call and converts the error.
func (s *Service) upstreamFailure(ctx context.Context, req SearchRequest, err error, latency time.Duration) error {
	var ce *places.ConfigError
	if errors.As(err, &ce) {
		return &ConfigurationError{Message: "Places API not configured", Err: err}
	}

	reached := places.Reached(err)
	outcome := metrics.OutcomeError
	var te *places.TimeoutError
	switch {
	case errors.As(err, &te):
		outcome = metrics.OutcomeTimeout
	case !reached:
		outcome = metrics.OutcomeUnreached
	}
	s.metrics.RecordUpstreamCall(outcome, latency)

	if reached {
		s.usage.RecordFailure(s.source, EndpointNearby, req.CallerKey)
	}

	status := places.StatusCode(err)
	s.logger.WarnContext(ctx, "places search failed",
		"error", err,
		"status", status,
		"reached", reached,
	)
	return &UpstreamError{StatusCode: status, Reached: reached, Err: err}
}

// UsageReport is the read-only observability view.
type UsageReport struct {
	Stats       usage.Stats        `json:"stats"`
	RecentCalls []usage.CallRecord `json:"recentCalls"`
	Budget      budget.State       `json:"budget"`
}

// Usage returns usage stats for the trailing windowDays, the most recent
// recentLimit call records and the budget. Non-positive arguments use the
// defaults; recentLimit is capped at MaxRecentLimit.
func (s *Service) Usage(windowDays, recentLimit int) UsageReport {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}
	recentLimit = min(recentLimit, MaxRecentLimit)

	s.budget.MaybeResetForNewMonth()
	return UsageReport{
		Stats:       s.usage.Stats(windowDays),
		RecentCalls: s.usage.Recent(recentLimit),
		Budget:      s.budget.Status(),
	}
}

// Reconfigure applies a new budget limit and thresholds to the running
// monitor.
func (s *Service) Reconfigure(monthlyLimit float64, thresholds []float64) {
	s.budget.Reconfigure(monthlyLimit, thresholds)
	s.logger.Info("budget reconfigured",
		"monthly_limit", monthlyLimit,
		"thresholds", thresholds,
	)
}

// Maintenance hooks used by the scheduler.

// SweepCache removes expired cache entries.
func (s *Service) SweepCache() int {
	n := s.cache.Sweep()
	s.metrics.SetCacheEntries(s.cache.Len())
	return n
}

// SweepRateLimits removes expired rate limit windows.
func (s *Service) SweepRateLimits() int {
	n := s.limiter.Sweep()
	s.metrics.SetRateLimitKeys(s.limiter.Len())
	return n
}

// RolloverBudget resets the budget when the month has changed.
func (s *Service) RolloverBudget() bool {
	return s.budget.MaybeResetForNewMonth()
}

// RefreshGauges publishes current state sizes and budget to metrics.
func (s *Service) RefreshGauges() {
	state := s.budget.Status()
	s.metrics.SetBudget(state.CurrentUsage, state.PercentageUsed, state.ProjectedMonthlyCost)
	s.metrics.SetCacheEntries(s.cache.Len())
	s.metrics.SetRateLimitKeys(s.limiter.Len())
	s.metrics.SetUsageRecords(s.usage.Len())
}
