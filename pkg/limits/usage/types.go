package usage

import "time"

// Default tracker settings.
const (
	// DefaultMaxStoredCalls caps the number of retained call records.
	DefaultMaxStoredCalls = 1000

	// DefaultCostPerCall is the estimated price of one uncached
	// Nearby Search request in USD.
	DefaultCostPerCall = 0.032

	// DefaultMeteredSource is the source name that is billed per call.
	DefaultMeteredSource = "google_places"

	// DefaultWindowDays is the trailing window used by Stats.
	DefaultWindowDays = 30

	// dayFormat keys CallsByDay.
	dayFormat = "2006-01-02"
)

// Config configures a Tracker.
type Config struct {
	// MaxStoredCalls is the ring buffer capacity.
	MaxStoredCalls int

	// CostPerCall is charged for each uncached call to MeteredSource.
	CostPerCall float64

	// MeteredSource names the billed upstream.
	MeteredSource string
}

// CallRecord is one upstream call attempt or cache hit.
type CallRecord struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	Source        string    `json:"source"`
	Endpoint      string    `json:"endpoint"`
	EstimatedCost float64   `json:"estimatedCost"`
	Cached        bool      `json:"cached"`
	Failed        bool      `json:"failed,omitempty"`
	CallerKey     string    `json:"callerKey"`
}

// Stats aggregates the records inside a trailing window.
type Stats struct {
	WindowDays    int            `json:"windowDays"`
	TotalCalls    int            `json:"totalCalls"`
	CachedCalls   int            `json:"cachedCalls"`
	FailedCalls   int            `json:"failedCalls"`
	TotalCost     float64        `json:"totalCost"`
	CallsByDay    map[string]int `json:"callsByDay"`
	CallsBySource map[string]int `json:"callsBySource"`
}

// CacheHitRate returns cached calls as a fraction of total calls.
func (s Stats) CacheHitRate() float64 {
	if s.TotalCalls == 0 {
		return 0
	}
	return float64(s.CachedCalls) / float64(s.TotalCalls)
}
