package usage

import (
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/placesgate/placesgate/pkg/clock"
)

var testStart = time.Date(2026, 6, 10, 8, 30, 0, 0, time.UTC)

func newTestTracker(max int) (*Tracker, *clock.Manual) {
	clk := clock.NewManual(testStart)
	return New(Config{MaxStoredCalls: max, CostPerCall: 0.032, MeteredSource: "google_places"}, clk), clk
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// ============================================================================
// Record Tests
// ============================================================================

func TestTracker_RecordCost(t *testing.T) {
	tr, _ := newTestTracker(10)

	tests := []struct {
		name     string
		source   string
		cached   bool
		wantCost float64
	}{
		{name: "uncached metered call", source: "google_places", cached: false, wantCost: 0.032},
		{name: "cached metered call", source: "google_places", cached: true, wantCost: 0},
		{name: "uncached unmetered source", source: "fixture", cached: false, wantCost: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tr.Record(tt.source, "nearbysearch", tt.cached, "203.0.113.9")
			if !approxEqual(rec.EstimatedCost, tt.wantCost) {
				t.Errorf("Expected cost %.3f, got %.3f", tt.wantCost, rec.EstimatedCost)
			}
			if rec.ID == "" {
				t.Error("Expected record ID to be set")
			}
			if !rec.Timestamp.Equal(testStart) {
				t.Errorf("Expected timestamp %v, got %v", testStart, rec.Timestamp)
			}
		})
	}
}

func TestTracker_RecordFailure(t *testing.T) {
	tr, _ := newTestTracker(10)

	rec := tr.RecordFailure("google_places", "nearbysearch", "caller")
	if !rec.Failed || rec.Cached {
		t.Errorf("Expected failed uncached record, got failed=%v cached=%v", rec.Failed, rec.Cached)
	}
	if !approxEqual(rec.EstimatedCost, 0.032) {
		t.Errorf("Expected cost 0.032, got %.3f", rec.EstimatedCost)
	}

	stats := tr.Stats(30)
	if stats.FailedCalls != 1 {
		t.Errorf("Expected 1 failed call, got %d", stats.FailedCalls)
	}
}

func TestTracker_Defaults(t *testing.T) {
	tr := New(Config{}, nil)

	if tr.Capacity() != DefaultMaxStoredCalls {
		t.Errorf("Expected capacity %d, got %d", DefaultMaxStoredCalls, tr.Capacity())
	}
	if tr.CostPerCall() != DefaultCostPerCall {
		t.Errorf("Expected cost %.3f, got %.3f", DefaultCostPerCall, tr.CostPerCall())
	}
}

// ============================================================================
// FIFO Eviction Tests
// ============================================================================

func TestTracker_FIFOEviction(t *testing.T) {
	tr, clk := newTestTracker(3)

	for i := 0; i < 3; i++ {
		tr.Record("google_places", fmt.Sprintf("call-%d", i), false, "c")
		clk.Advance(time.Second)
	}
	if tr.Len() != 3 {
		t.Fatalf("Expected 3 records, got %d", tr.Len())
	}

	tr.Record("google_places", "call-3", false, "c")
	if tr.Len() != 3 {
		t.Fatalf("Expected length to stay at cap 3, got %d", tr.Len())
	}

	recent := tr.Recent(0)
	want := []string{"call-3", "call-2", "call-1"}
	if len(recent) != len(want) {
		t.Fatalf("Expected %d records, got %d", len(want), len(recent))
	}
	for i, rec := range recent {
		if rec.Endpoint != want[i] {
			t.Errorf("Recent()[%d] = %s, want %s", i, rec.Endpoint, want[i])
		}
	}
}

func TestTracker_EvictionAcrossManyWraps(t *testing.T) {
	tr, _ := newTestTracker(4)

	for i := 0; i < 11; i++ {
		tr.Record("google_places", fmt.Sprintf("call-%d", i), false, "c")
	}

	recent := tr.Recent(4)
	for i, rec := range recent {
		want := fmt.Sprintf("call-%d", 10-i)
		if rec.Endpoint != want {
			t.Errorf("Recent()[%d] = %s, want %s", i, rec.Endpoint, want)
		}
	}
}

// ============================================================================
// Recent and Stats Tests
// ============================================================================

func TestTracker_RecentLimit(t *testing.T) {
	tr, _ := newTestTracker(100)
	for i := 0; i < 60; i++ {
		tr.Record("google_places", fmt.Sprintf("call-%d", i), false, "c")
	}

	recent := tr.Recent(50)
	if len(recent) != 50 {
		t.Fatalf("Expected 50 records, got %d", len(recent))
	}
	if recent[0].Endpoint != "call-59" {
		t.Errorf("Expected newest first, got %s", recent[0].Endpoint)
	}
	if recent[49].Endpoint != "call-10" {
		t.Errorf("Expected call-10 last, got %s", recent[49].Endpoint)
	}

	if got := len(tr.Recent(500)); got != 60 {
		t.Errorf("Recent(500) returned %d records, want 60", got)
	}
}

func TestTracker_Stats(t *testing.T) {
	tr, clk := newTestTracker(100)

	// Outside a 30-day window.
	tr.Record("google_places", "nearbysearch", false, "a")

	clk.Advance(35 * 24 * time.Hour)
	day1 := clk.Now().Format("2006-01-02")
	tr.Record("google_places", "nearbysearch", false, "a")
	tr.Record("google_places", "nearbysearch", true, "b")

	clk.Advance(24 * time.Hour)
	day2 := clk.Now().Format("2006-01-02")
	tr.Record("google_places", "nearbysearch", false, "c")
	tr.Record("fixture", "nearbysearch", false, "c")

	stats := tr.Stats(30)
	if stats.WindowDays != 30 {
		t.Errorf("Expected window 30, got %d", stats.WindowDays)
	}
	if stats.TotalCalls != 4 {
		t.Errorf("Expected 4 calls, got %d", stats.TotalCalls)
	}
	if stats.CachedCalls != 1 {
		t.Errorf("Expected 1 cached call, got %d", stats.CachedCalls)
	}
	if !approxEqual(stats.TotalCost, 0.064) {
		t.Errorf("Expected cost 0.064, got %.4f", stats.TotalCost)
	}
	if stats.CallsByDay[day1] != 2 || stats.CallsByDay[day2] != 2 {
		t.Errorf("Unexpected calls by day: %v", stats.CallsByDay)
	}
	if stats.CallsBySource["google_places"] != 3 || stats.CallsBySource["fixture"] != 1 {
		t.Errorf("Unexpected calls by source: %v", stats.CallsBySource)
	}
	if rate := stats.CacheHitRate(); !approxEqual(rate, 0.25) {
		t.Errorf("Expected hit rate 0.25, got %.2f", rate)
	}

	if all := tr.Stats(0); all.WindowDays != DefaultWindowDays {
		t.Errorf("Stats(0) window = %d, want %d", all.WindowDays, DefaultWindowDays)
	}
	if wide := tr.Stats(60); wide.TotalCalls != 5 {
		t.Errorf("Stats(60) total = %d, want 5", wide.TotalCalls)
	}
}

func TestTracker_ConcurrentRecord(t *testing.T) {
	tr, _ := newTestTracker(500)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				tr.Record("google_places", "nearbysearch", j%2 == 0, "c")
				_ = tr.Stats(30)
			}
		}()
	}
	wg.Wait()

	if tr.Len() != 500 {
		t.Errorf("Expected ring to be full at 500, got %d", tr.Len())
	}
}
