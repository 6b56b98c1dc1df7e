package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

type fakeCredential bool

func (f fakeCredential) Configured() bool { return bool(f) }

// ============================================================================
// Checker Tests
// ============================================================================

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		want    time.Duration
	}{
		{"default timeout", 0, 5 * time.Second},
		{"negative timeout", -time.Second, 5 * time.Second},
		{"custom timeout", 2 * time.Second, 2 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.timeout)
			if c.checkTimeout != tt.want {
				t.Errorf("Expected timeout %v, got %v", tt.want, c.checkTimeout)
			}
		})
	}
}

func TestRegisterAndList(t *testing.T) {
	c := New(time.Second)
	c.RegisterCheck("upstream", func(ctx context.Context) error { return nil })
	c.RegisterCheck("credential", func(ctx context.Context) error { return nil })

	got := c.ListChecks()
	if len(got) != 2 || got[0] != "credential" || got[1] != "upstream" {
		t.Errorf("ListChecks() = %v, want [credential upstream]", got)
	}

	c.UnregisterCheck("upstream")
	if got := c.ListChecks(); len(got) != 1 {
		t.Errorf("Expected 1 check after unregister, got %d", len(got))
	}
}

func TestCheckReadiness(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]CheckFunc
		want   string
	}{
		{
			name:   "no checks",
			checks: nil,
			want:   StatusReady,
		},
		{
			name: "all healthy",
			checks: map[string]CheckFunc{
				"a": func(ctx context.Context) error { return nil },
				"b": func(ctx context.Context) error { return nil },
			},
			want: StatusReady,
		},
		{
			name: "one failing",
			checks: map[string]CheckFunc{
				"a": func(ctx context.Context) error { return nil },
				"b": func(ctx context.Context) error { return errors.New("down") },
			},
			want: StatusDegraded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(time.Second)
			for name, check := range tt.checks {
				c.RegisterCheck(name, check)
			}

			status := c.CheckReadiness(context.Background())
			if status.Status != tt.want {
				t.Errorf("Expected status %s, got %s", tt.want, status.Status)
			}
			if len(status.Checks) != len(tt.checks) {
				t.Errorf("Expected %d results, got %d", len(tt.checks), len(status.Checks))
			}
		})
	}
}

func TestCheckReadiness_Timeout(t *testing.T) {
	c := New(20 * time.Millisecond)
	c.RegisterCheck("slow", func(ctx context.Context) error {
		time.Sleep(time.Second)
		return nil
	})

	status := c.CheckReadiness(context.Background())
	result := status.Checks["slow"]
	if result.Status != StatusUnhealthy {
		t.Errorf("Expected unhealthy, got %s", result.Status)
	}
	if result.Message != ErrCheckTimeout.Error() {
		t.Errorf("Expected timeout message, got %q", result.Message)
	}
}

// ============================================================================
// Domain Check Tests
// ============================================================================

func TestCredentialCheck(t *testing.T) {
	if err := CredentialCheck(fakeCredential(true))(context.Background()); err != nil {
		t.Errorf("Expected nil error with credential, got %v", err)
	}
	if err := CredentialCheck(fakeCredential(false))(context.Background()); !errors.Is(err, ErrCredentialMissing) {
		t.Errorf("Expected ErrCredentialMissing, got %v", err)
	}
	if err := CredentialCheck(nil)(context.Background()); !errors.Is(err, ErrCredentialMissing) {
		t.Errorf("Expected ErrCredentialMissing for nil source, got %v", err)
	}
}

func TestUpstreamCheck(t *testing.T) {
	tests := []struct {
		name     string
		failures int
		max      int
		wantErr  bool
	}{
		{"healthy", 0, 3, false},
		{"below max", 2, 3, false},
		{"at max", 3, 3, true},
		{"disabled", 10, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := UpstreamCheck(func() int { return tt.failures }, tt.max)
			err := check(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("UpstreamCheck() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// ============================================================================
// Handler Tests
// ============================================================================

func TestLivenessHandler(t *testing.T) {
	c := New(time.Second)
	rec := httptest.NewRecorder()
	c.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
	var status HealthStatus
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if status.Status != StatusOK {
		t.Errorf("Expected status ok, got %s", status.Status)
	}
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name       string
		configured bool
		wantCode   int
	}{
		{"credential present", true, http.StatusOK},
		{"credential missing", false, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(time.Second)
			c.RegisterCheck("places_credential", CredentialCheck(fakeCredential(tt.configured)))

			rec := httptest.NewRecorder()
			c.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("Expected status %d, got %d", tt.wantCode, rec.Code)
			}
		})
	}
}

func TestHeadRequestHasNoBody(t *testing.T) {
	c := New(time.Second)
	rec := httptest.NewRecorder()
	c.LivenessHandler()(rec, httptest.NewRequest(http.MethodHead, "/health", nil))

	if rec.Body.Len() != 0 {
		t.Errorf("Expected empty body for HEAD, got %q", rec.Body.String())
	}
}

func TestRegister(t *testing.T) {
	r := chi.NewRouter()
	c := New(time.Second)
	Register(r, c, NewVersionInfo("1.2.3", "abc123", "2026-01-01"))

	for _, path := range []string{"/health", "/ready", "/version"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s: expected 200, got %d", path, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", nil))
	if !strings.Contains(rec.Body.String(), `"version":"1.2.3"`) {
		t.Errorf("Expected version in body, got %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /health: expected 405, got %d", rec.Code)
	}
}
