package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/placesgate/placesgate/pkg/cache"
	"github.com/placesgate/placesgate/pkg/clock"
	"github.com/placesgate/placesgate/pkg/config"
	"github.com/placesgate/placesgate/pkg/gateway"
	"github.com/placesgate/placesgate/pkg/limits/budget"
	"github.com/placesgate/placesgate/pkg/limits/ratelimit"
	"github.com/placesgate/placesgate/pkg/limits/usage"
	"github.com/placesgate/placesgate/pkg/places"
	"github.com/placesgate/placesgate/pkg/telemetry/health"
	"github.com/placesgate/placesgate/pkg/telemetry/metrics"
)

var testStart = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type stubSearcher struct {
	mu         sync.Mutex
	calls      int
	err        error
	configured bool
}

func (s *stubSearcher) Search(ctx context.Context, q places.Query) (*places.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &places.Result{
		Status: places.StatusOK,
		Places: []json.RawMessage{json.RawMessage(`{"name":"Dune Coffee"}`)},
	}, nil
}

func (s *stubSearcher) Configured() bool { return s.configured }

func newTestRouter(t *testing.T, searcher *stubSearcher) http.Handler {
	t.Helper()

	clk := clock.NewManual(testStart)
	cfg := config.Default()
	cfg.Telemetry.Metrics.Enabled = true
	cfg.Telemetry.Metrics.Path = "/metrics"

	collector := metrics.NewCollector(&config.MetricsConfig{Enabled: true, Namespace: "test"}, nil)

	svc, err := gateway.New(gateway.Deps{
		Limiter:  ratelimit.New(ratelimit.Config{Limit: 5, Window: time.Hour}, clk),
		Cache:    cache.New(cache.Config{TTL: time.Hour}, clk),
		Usage:    usage.New(usage.Config{MaxStoredCalls: 100, CostPerCall: 0.032}, clk),
		Budget:   budget.New(budget.Config{MonthlyLimit: 50}, clk, nil),
		Searcher: searcher,
		Metrics:  collector,
	})
	if err != nil {
		t.Fatalf("gateway.New() error: %v", err)
	}

	checker := health.New(time.Second)
	checker.RegisterCheck("places_credential", health.CredentialCheck(searcher))

	return NewRouter(RouterOptions{
		Config:  cfg,
		Service: svc,
		Checker: checker,
		Metrics: collector,
		Version: health.NewVersionInfo("test", "abc123", ""),
	})
}

func get(h http.Handler, target, caller string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if caller != "" {
		req.Header.Set("X-Forwarded-For", caller)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const nearbyURL = "/api/places/nearby?latitude=34.4208&longitude=-119.6982&radius=8000&searchType=coffee"

// ============================================================================
// Nearby Search Tests
// ============================================================================

func TestNearby_MissThenHit(t *testing.T) {
	searcher := &stubSearcher{configured: true}
	h := newTestRouter(t, searcher)

	rec := get(h, nearbyURL, "203.0.113.7")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get(HeaderCache); got != "MISS" {
		t.Errorf("Expected X-Cache MISS, got %q", got)
	}
	if got := rec.Header().Get(HeaderRateLimitLimit); got != "5" {
		t.Errorf("Expected X-RateLimit-Limit 5, got %q", got)
	}
	if got := rec.Header().Get(HeaderRateLimitRemaining); got != "4" {
		t.Errorf("Expected X-RateLimit-Remaining 4, got %q", got)
	}
	reset, err := strconv.ParseInt(rec.Header().Get(HeaderRateLimitReset), 10, 64)
	if err != nil || reset <= testStart.Unix() {
		t.Errorf("Expected X-RateLimit-Reset after start, got %q", rec.Header().Get(HeaderRateLimitReset))
	}

	var body struct {
		Results []map[string]any `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if len(body.Results) != 1 || body.Results[0]["name"] != "Dune Coffee" {
		t.Errorf("Unexpected results: %v", body.Results)
	}

	rec = get(h, nearbyURL, "203.0.113.7")
	if got := rec.Header().Get(HeaderCache); got != "HIT" {
		t.Errorf("Expected X-Cache HIT, got %q", got)
	}
	if searcher.calls != 1 {
		t.Errorf("Expected 1 upstream call, got %d", searcher.calls)
	}
}

func TestNearby_RateLimited(t *testing.T) {
	h := newTestRouter(t, &stubSearcher{configured: true})

	for i := 0; i < 5; i++ {
		if rec := get(h, nearbyURL, "198.51.100.1"); rec.Code != http.StatusOK {
			t.Fatalf("Request %d: expected 200, got %d", i+1, rec.Code)
		}
	}

	rec := get(h, nearbyURL, "198.51.100.1")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected status 429, got %d", rec.Code)
	}
	if rec.Header().Get(HeaderRetryAfter) == "" {
		t.Error("Expected Retry-After header")
	}
	if got := rec.Header().Get(HeaderRateLimitRemaining); got != "0" {
		t.Errorf("Expected X-RateLimit-Remaining 0, got %q", got)
	}

	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body.Error != "Rate limit exceeded" {
		t.Errorf("Expected error %q, got %q", "Rate limit exceeded", body.Error)
	}
	if body.RetryAfter != 3600 {
		t.Errorf("Expected retryAfter 3600, got %d", body.RetryAfter)
	}
	if !strings.Contains(body.Message, "3600") {
		t.Errorf("Expected message to mention retry seconds, got %q", body.Message)
	}

	// Other callers are unaffected.
	if rec := get(h, nearbyURL, "198.51.100.2"); rec.Code != http.StatusOK {
		t.Errorf("Expected other caller to get 200, got %d", rec.Code)
	}
}

func TestNearby_Errors(t *testing.T) {
	tests := []struct {
		name       string
		searcher   *stubSearcher
		target     string
		wantStatus int
		wantError  string
		wantLimit  bool
	}{
		{
			name:       "missing latitude",
			searcher:   &stubSearcher{configured: true},
			target:     "/api/places/nearby?longitude=-119.6982",
			wantStatus: http.StatusBadRequest,
			wantError:  "latitude",
		},
		{
			name:       "radius out of range",
			searcher:   &stubSearcher{configured: true},
			target:     "/api/places/nearby?latitude=34.4&longitude=-119.6&radius=999999",
			wantStatus: http.StatusBadRequest,
			wantError:  "radius",
		},
		{
			name:       "unknown search type",
			searcher:   &stubSearcher{configured: true},
			target:     "/api/places/nearby?latitude=34.4&longitude=-119.6&searchType=nightclub",
			wantStatus: http.StatusBadRequest,
			wantError:  "searchType",
		},
		{
			name:       "not configured",
			searcher:   &stubSearcher{configured: false},
			target:     nearbyURL,
			wantStatus: http.StatusInternalServerError,
			wantError:  "Places API not configured",
		},
		{
			name: "provider status propagated",
			searcher: &stubSearcher{configured: true, err: &places.ProviderError{
				StatusCode: http.StatusForbidden, Status: places.StatusRequestDenied, Reached: true,
			}},
			target:     nearbyURL,
			wantStatus: http.StatusForbidden,
			wantError:  "Places search failed",
			wantLimit:  true,
		},
		{
			name:       "unreached upstream",
			searcher:   &stubSearcher{configured: true, err: errors.New("dial tcp: connection refused")},
			target:     nearbyURL,
			wantStatus: http.StatusBadGateway,
			wantError:  "Places search failed",
			wantLimit:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(t, tt.searcher)
			rec := get(h, tt.target, "192.0.2.10")

			if rec.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			var body errorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("Failed to decode body: %v", err)
			}
			if !strings.Contains(body.Error, tt.wantError) {
				t.Errorf("Expected error containing %q, got %q", tt.wantError, body.Error)
			}
			hasLimit := rec.Header().Get(HeaderRateLimitLimit) != ""
			if hasLimit != tt.wantLimit {
				t.Errorf("X-RateLimit-Limit present = %v, want %v", hasLimit, tt.wantLimit)
			}
		})
	}
}

// ============================================================================
// Usage Endpoint Tests
// ============================================================================

func TestUsage(t *testing.T) {
	h := newTestRouter(t, &stubSearcher{configured: true})
	get(h, nearbyURL, "203.0.113.9")
	get(h, nearbyURL, "203.0.113.9")

	rec := get(h, "/api/places/usage?days=7&limit=10", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var report gateway.UsageReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if report.Stats.WindowDays != 7 {
		t.Errorf("Expected window 7 days, got %d", report.Stats.WindowDays)
	}
	if report.Stats.TotalCalls != 2 {
		t.Errorf("Expected 2 calls, got %d", report.Stats.TotalCalls)
	}
	if report.Stats.CachedCalls != 1 {
		t.Errorf("Expected 1 cached call, got %d", report.Stats.CachedCalls)
	}
	if len(report.RecentCalls) != 2 {
		t.Errorf("Expected 2 recent calls, got %d", len(report.RecentCalls))
	}
	if report.Budget.CurrentUsage <= 0 {
		t.Errorf("Expected budget usage > 0, got %v", report.Budget.CurrentUsage)
	}
}

func TestUsage_InvalidParams(t *testing.T) {
	h := newTestRouter(t, &stubSearcher{configured: true})

	for _, target := range []string{
		"/api/places/usage?days=0",
		"/api/places/usage?days=366",
		"/api/places/usage?days=abc",
		"/api/places/usage?limit=-1",
	} {
		rec := get(h, target, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status 400, got %d", target, rec.Code)
		}
	}
}

// ============================================================================
// Router Tests
// ============================================================================

func TestRouter_AuxiliaryRoutes(t *testing.T) {
	tests := []struct {
		target     string
		wantStatus int
	}{
		{"/health", http.StatusOK},
		{"/ready", http.StatusOK},
		{"/version", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/api/places/unknown", http.StatusNotFound},
	}

	h := newTestRouter(t, &stubSearcher{configured: true})
	for _, tt := range tests {
		rec := get(h, tt.target, "")
		if rec.Code != tt.wantStatus {
			t.Errorf("GET %s = %d, want %d", tt.target, rec.Code, tt.wantStatus)
		}
	}
}

func TestRouter_ReadinessFailsWithoutCredential(t *testing.T) {
	h := newTestRouter(t, &stubSearcher{configured: false})

	rec := get(h, "/ready", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", rec.Code)
	}
}

func TestRouter_SetsRequestID(t *testing.T) {
	h := newTestRouter(t, &stubSearcher{configured: true})

	rec := get(h, "/health", "")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("Expected X-Request-ID header")
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	h := newTestRouter(t, &stubSearcher{configured: true})

	req := httptest.NewRequest(http.MethodPost, nearbyURL, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", rec.Code)
	}
}

// ============================================================================
// Error Mapping Tests
// ============================================================================

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"validation", &gateway.ValidationError{Param: "radius", Message: "too large"}, 400, "radius: too large"},
		{"configuration", &gateway.ConfigurationError{Message: "Places API not configured"}, 500, "Places API not configured"},
		{"upstream", &gateway.UpstreamError{StatusCode: 503}, 503, "Places search failed"},
		{"upstream without status", &gateway.UpstreamError{}, 502, "Places search failed"},
		{"internal", &gateway.InternalError{Op: "charge", Err: errors.New("boom")}, 500, "Internal server error"},
		{"unknown", errors.New("secret detail"), 500, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := statusFor(tt.err)
			if status != tt.wantStatus {
				t.Errorf("statusFor() status = %d, want %d", status, tt.wantStatus)
			}
			if body.Error != tt.wantError {
				t.Errorf("statusFor() error = %q, want %q", body.Error, tt.wantError)
			}
		})
	}
}

// ============================================================================
// Server Lifecycle Tests
// ============================================================================

func TestServer_StartAndShutdown(t *testing.T) {
	cfg := config.Default().Server
	cfg.ListenAddress = "127.0.0.1:0"
	cfg.ShutdownTimeout = time.Second

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	srv := New(&cfg, handler, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for srv.Addr() == nil && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if !srv.IsRunning() {
		t.Fatal("Expected server to be running")
	}

	resp, err := http.Get("http://" + srv.Addr().String() + "/")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() returned %v, want nil", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Server did not shut down")
	}
	if srv.IsRunning() {
		t.Error("Expected server to be stopped")
	}
}

func TestServer_ListenError(t *testing.T) {
	cfg := config.Default().Server
	cfg.ListenAddress = "256.0.0.1:99999"

	srv := New(&cfg, http.NotFoundHandler(), nil)
	if err := srv.Start(context.Background()); err == nil {
		t.Error("Expected listen error")
	}
	if srv.IsRunning() {
		t.Error("Expected server not running after listen error")
	}
}
