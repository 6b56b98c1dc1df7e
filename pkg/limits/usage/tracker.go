// Package usage keeps a bounded, in-memory log of upstream calls and
// aggregates it on demand.
//
// The log is a ring buffer of Config.MaxStoredCalls records. When it is
// full, recording a call evicts the oldest record first. Eviction is by
// count only, never by age.
package usage

import (
	"sync"

	"github.com/google/uuid"

	"github.com/placesgate/placesgate/pkg/clock"
)

// Tracker records upstream calls in a fixed-capacity ring buffer.
type Tracker struct {
	config Config
	clock  clock.Clock

	// records is the ring; head is the index of the oldest record.
	records []CallRecord
	head    int
	size    int

	mu sync.RWMutex
}

// New creates a tracker. Zero values in cfg fall back to the defaults.
func New(cfg Config, clk clock.Clock) *Tracker {
	if cfg.MaxStoredCalls <= 0 {
		cfg.MaxStoredCalls = DefaultMaxStoredCalls
	}
	if cfg.CostPerCall <= 0 {
		cfg.CostPerCall = DefaultCostPerCall
	}
	if cfg.MeteredSource == "" {
		cfg.MeteredSource = DefaultMeteredSource
	}

	return &Tracker{
		config:  cfg,
		clock:   clock.OrReal(clk),
		records: make([]CallRecord, cfg.MaxStoredCalls),
	}
}

// Record appends a call. Uncached calls to the metered source carry the
// configured per-call cost; everything else is free.
func (t *Tracker) Record(source, endpoint string, cached bool, callerKey string) CallRecord {
	return t.append(source, endpoint, cached, false, callerKey)
}

// RecordFailure appends an uncached call that reached the upstream but did
// not succeed. It is costed like any uncached call so the log tracks what
// the provider may bill.
func (t *Tracker) RecordFailure(source, endpoint, callerKey string) CallRecord {
	return t.append(source, endpoint, false, true, callerKey)
}

func (t *Tracker) append(source, endpoint string, cached, failed bool, callerKey string) CallRecord {
	rec := CallRecord{
		ID:        uuid.NewString(),
		Source:    source,
		Endpoint:  endpoint,
		Cached:    cached,
		Failed:    failed,
		CallerKey: callerKey,
	}
	if !cached && source == t.config.MeteredSource {
		rec.EstimatedCost = t.config.CostPerCall
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	rec.Timestamp = t.clock.Now()

	capacity := len(t.records)
	if t.size == capacity {
		// Full: overwrite the oldest slot and advance head.
		t.records[t.head] = rec
		t.head = (t.head + 1) % capacity
	} else {
		t.records[(t.head+t.size)%capacity] = rec
		t.size++
	}

	return rec
}

// Stats aggregates records from the trailing windowDays days.
// windowDays <= 0 uses DefaultWindowDays.
func (t *Tracker) Stats(windowDays int) Stats {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	cutoff := t.clock.Now().AddDate(0, 0, -windowDays)
	stats := Stats{
		WindowDays:    windowDays,
		CallsByDay:    make(map[string]int),
		CallsBySource: make(map[string]int),
	}

	for i := 0; i < t.size; i++ {
		rec := t.records[(t.head+i)%len(t.records)]
		if rec.Timestamp.Before(cutoff) {
			continue
		}

		stats.TotalCalls++
		if rec.Cached {
			stats.CachedCalls++
		}
		if rec.Failed {
			stats.FailedCalls++
		}
		stats.TotalCost += rec.EstimatedCost
		stats.CallsByDay[rec.Timestamp.Format(dayFormat)]++
		stats.CallsBySource[rec.Source]++
	}

	return stats
}

// Recent returns up to limit records, most recent first.
func (t *Tracker) Recent(limit int) []CallRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if limit <= 0 || limit > t.size {
		limit = t.size
	}

	out := make([]CallRecord, 0, limit)
	for i := t.size - 1; i >= t.size-limit; i-- {
		out = append(out, t.records[(t.head+i)%len(t.records)])
	}
	return out
}

// Len returns the number of retained records.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.size
}

// Capacity returns the ring buffer size.
func (t *Tracker) Capacity() int {
	return len(t.records)
}

// CostPerCall returns the configured per-call cost.
func (t *Tracker) CostPerCall() float64 {
	return t.config.CostPerCall
}
