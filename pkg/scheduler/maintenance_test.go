package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/placesgate/placesgate/pkg/config"
)

type countingTasks struct {
	mu       sync.Mutex
	cache    int
	limits   int
	rollover int
	gauges   int
}

func (c *countingTasks) SweepCache() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache++
	return 2
}

func (c *countingTasks) SweepRateLimits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.limits++
	return 1
}

func (c *countingTasks) RolloverBudget() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollover++
	return true
}

func (c *countingTasks) RefreshGauges() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gauges++
}

func (c *countingTasks) snapshot() (int, int, int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache, c.limits, c.rollover, c.gauges
}

func defaultSchedules() *config.MaintenanceConfig {
	return &config.MaintenanceConfig{
		CacheSweep:     "@every 10m",
		RateLimitSweep: "@every 10m",
		BudgetRollover: "@hourly",
		MetricsRefresh: "@every 1m",
	}
}

// ============================================================================
// Start Tests
// ============================================================================

func TestMaintenance_Start(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*config.MaintenanceConfig)
		wantError bool
		wantNext  map[string]bool
	}{
		{
			name:     "all jobs scheduled",
			mutate:   func(*config.MaintenanceConfig) {},
			wantNext: map[string]bool{JobCacheSweep: true, JobRateLimitSweep: true, JobBudgetRollover: true, JobMetricsRefresh: true},
		},
		{
			name:     "empty schedule disables job",
			mutate:   func(c *config.MaintenanceConfig) { c.MetricsRefresh = "" },
			wantNext: map[string]bool{JobCacheSweep: true, JobRateLimitSweep: true, JobBudgetRollover: true, JobMetricsRefresh: false},
		},
		{
			name:     "standard cron syntax",
			mutate:   func(c *config.MaintenanceConfig) { c.BudgetRollover = "5 0 * * *" },
			wantNext: map[string]bool{JobBudgetRollover: true},
		},
		{
			name:      "invalid schedule",
			mutate:    func(c *config.MaintenanceConfig) { c.CacheSweep = "every ten minutes" },
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultSchedules()
			tt.mutate(cfg)

			m := New(cfg, &countingTasks{}, nil)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			err := m.Start(ctx)
			if (err != nil) != tt.wantError {
				t.Fatalf("Start() error = %v, wantError %v", err, tt.wantError)
			}
			if tt.wantError {
				if m.IsRunning() {
					t.Error("Expected scheduler not running after error")
				}
				return
			}
			defer m.Stop()

			if !m.IsRunning() {
				t.Error("Expected scheduler to be running")
			}
			for job, want := range tt.wantNext {
				next := m.NextRun(job)
				if (next != nil) != want {
					t.Errorf("NextRun(%s) set = %v, want %v", job, next != nil, want)
				}
				if next != nil && !next.After(time.Now().Add(-time.Second)) {
					t.Errorf("NextRun(%s) = %v, want a future time", job, next)
				}
			}
		})
	}
}

func TestMaintenance_StartTwice(t *testing.T) {
	m := New(defaultSchedules(), &countingTasks{}, nil)
	ctx := context.Background()

	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer m.Stop()

	if err := m.Start(ctx); err == nil {
		t.Error("Expected error starting twice")
	}
}

func TestMaintenance_StopsOnContextCancel(t *testing.T) {
	m := New(defaultSchedules(), &countingTasks{}, nil)
	ctx, cancel := context.WithCancel(context.Background())

	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for m.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if m.IsRunning() {
		t.Error("Expected scheduler to stop after context cancellation")
	}
	if m.NextRun(JobCacheSweep) != nil {
		t.Error("Expected no next run after stop")
	}
}

func TestMaintenance_StopIdempotent(t *testing.T) {
	m := New(defaultSchedules(), &countingTasks{}, nil)
	m.Stop()

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	m.Stop()
	m.Stop()

	if m.IsRunning() {
		t.Error("Expected scheduler stopped")
	}
}

// ============================================================================
// RunNow Tests
// ============================================================================

func TestMaintenance_RunNow(t *testing.T) {
	tasks := &countingTasks{}
	m := New(defaultSchedules(), tasks, nil)
	ctx := context.Background()

	for _, job := range m.Jobs() {
		if err := m.RunNow(ctx, job); err != nil {
			t.Errorf("RunNow(%s) error: %v", job, err)
		}
	}

	cacheRuns, limitRuns, rollovers, gauges := tasks.snapshot()
	if cacheRuns != 1 || limitRuns != 1 || rollovers != 1 || gauges != 1 {
		t.Errorf("Expected each task once, got cache=%d limits=%d rollover=%d gauges=%d",
			cacheRuns, limitRuns, rollovers, gauges)
	}
}

func TestMaintenance_RunNowDisabledJob(t *testing.T) {
	cfg := defaultSchedules()
	cfg.CacheSweep = ""
	tasks := &countingTasks{}
	m := New(cfg, tasks, nil)

	if err := m.RunNow(context.Background(), JobCacheSweep); err != nil {
		t.Fatalf("RunNow() error: %v", err)
	}
	if cacheRuns, _, _, _ := tasks.snapshot(); cacheRuns != 1 {
		t.Errorf("Expected 1 cache sweep, got %d", cacheRuns)
	}
}

func TestMaintenance_RunNowUnknown(t *testing.T) {
	m := New(defaultSchedules(), &countingTasks{}, nil)

	err := m.RunNow(context.Background(), "vacuum")
	if !errors.Is(err, ErrUnknownJob) {
		t.Errorf("RunNow() error = %v, want ErrUnknownJob", err)
	}
}

func TestMaintenance_Jobs(t *testing.T) {
	m := New(defaultSchedules(), &countingTasks{}, nil)

	want := []string{JobBudgetRollover, JobCacheSweep, JobMetricsRefresh, JobRateLimitSweep}
	got := m.Jobs()
	if len(got) != len(want) {
		t.Fatalf("Jobs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Jobs()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
