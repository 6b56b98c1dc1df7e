package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/placesgate/placesgate/pkg/config"
)

// Job names.
const (
	JobCacheSweep     = "cache_sweep"
	JobRateLimitSweep = "rate_limit_sweep"
	JobBudgetRollover = "budget_rollover"
	JobMetricsRefresh = "metrics_refresh"
)

// ErrUnknownJob is returned for a job name that is not registered.
var ErrUnknownJob = errors.New("unknown maintenance job")

// Tasks is the work the scheduler triggers. gateway.Service implements it.
type Tasks interface {
	SweepCache() int
	SweepRateLimits() int
	RolloverBudget() bool
	RefreshGauges()
}

type job struct {
	name     string
	schedule string
	run      func(ctx context.Context)
	entry    cron.EntryID
	active   bool
}

// Maintenance schedules and runs the maintenance jobs.
type Maintenance struct {
	tasks  Tasks
	cron   *cron.Cron
	jobs   map[string]*job
	logger *slog.Logger

	mu      sync.Mutex
	running bool
}

// New creates a Maintenance scheduler from cfg. Nothing runs until Start.
func New(cfg *config.MaintenanceConfig, tasks Tasks, logger *slog.Logger) *Maintenance {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Maintenance{
		tasks:  tasks,
		cron:   cron.New(),
		logger: logger.With("component", "scheduler"),
	}

	m.jobs = map[string]*job{
		JobCacheSweep:     {name: JobCacheSweep, schedule: cfg.CacheSweep, run: m.sweepCache},
		JobRateLimitSweep: {name: JobRateLimitSweep, schedule: cfg.RateLimitSweep, run: m.sweepRateLimits},
		JobBudgetRollover: {name: JobBudgetRollover, schedule: cfg.BudgetRollover, run: m.rolloverBudget},
		JobMetricsRefresh: {name: JobMetricsRefresh, schedule: cfg.MetricsRefresh, run: m.refreshGauges},
	}
	return m
}

// Start validates and registers every job with a non-empty schedule, then
// starts the cron runner. The runner stops when ctx is cancelled.
func (m *Maintenance) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return errors.New("scheduler is already running")
	}

	for _, name := range m.names() {
		j := m.jobs[name]
		if j.schedule == "" {
			m.logger.Info("maintenance job disabled", "job", name)
			continue
		}
		if _, err := cron.ParseStandard(j.schedule); err != nil {
			return fmt.Errorf("invalid cron schedule %q for %s: %w", j.schedule, name, err)
		}

		run := j.run
		id, err := m.cron.AddFunc(j.schedule, func() { run(ctx) })
		if err != nil {
			return fmt.Errorf("failed to schedule %s: %w", name, err)
		}
		j.entry = id
		j.active = true
	}

	m.cron.Start()
	m.running = true
	m.logger.Info("maintenance scheduler started", "jobs", m.activeNames())

	go func() {
		<-ctx.Done()
		m.Stop()
	}()

	return nil
}

// Stop stops the scheduler and waits for any running jobs to complete.
func (m *Maintenance) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	<-m.cron.Stop().Done()
	m.running = false
	m.logger.Info("maintenance scheduler stopped")
}

// IsRunning returns true if the scheduler is running.
func (m *Maintenance) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// NextRun returns the next scheduled time for job, or nil if the job is
// disabled or the scheduler has not started.
func (m *Maintenance) NextRun(name string) *time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[name]
	if !ok || !j.active || !m.running {
		return nil
	}
	next := m.cron.Entry(j.entry).Next
	if next.IsZero() {
		return nil
	}
	return &next
}

// RunNow runs job synchronously, whether or not it is scheduled.
func (m *Maintenance) RunNow(ctx context.Context, name string) error {
	j, ok := m.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownJob, name)
	}
	j.run(ctx)
	return nil
}

// Jobs returns the names of all known jobs, sorted.
func (m *Maintenance) Jobs() []string {
	return m.names()
}

func (m *Maintenance) names() []string {
	names := make([]string, 0, len(m.jobs))
	for name := range m.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Maintenance) activeNames() []string {
	var names []string
	for _, name := range m.names() {
		if m.jobs[name].active {
			names = append(names, name)
		}
	}
	return names
}

func (m *Maintenance) sweepCache(ctx context.Context) {
	if n := m.tasks.SweepCache(); n > 0 {
		m.logger.DebugContext(ctx, "cache sweep completed", "removed", n)
	}
}

func (m *Maintenance) sweepRateLimits(ctx context.Context) {
	if n := m.tasks.SweepRateLimits(); n > 0 {
		m.logger.DebugContext(ctx, "rate limit sweep completed", "removed", n)
	}
}

func (m *Maintenance) rolloverBudget(ctx context.Context) {
	if m.tasks.RolloverBudget() {
		m.logger.InfoContext(ctx, "budget reset for new month")
	}
}

func (m *Maintenance) refreshGauges(ctx context.Context) {
	m.tasks.RefreshGauges()
}
