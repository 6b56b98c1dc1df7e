package cache

import (
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/placesgate/placesgate/pkg/clock"
)

// Default cache settings.
const (
	DefaultTTL           = time.Hour
	DefaultSweepInterval = 10 * time.Minute
)

// Config configures a Store.
type Config struct {
	// TTL is the lifetime of an entry. Default: 1h
	TTL time.Duration

	// MaxEntries caps the number of entries (0 = unlimited). When full, the
	// entry closest to expiry is evicted.
	MaxEntries int
}

// entry is one cached payload.
type entry struct {
	payload   []json.RawMessage
	expiresAt time.Time
}

// Store is a thread-safe TTL cache of search results.
type Store struct {
	mu         sync.Mutex
	entries    map[string]*entry
	ttl        time.Duration
	maxEntries int
	clock      clock.Clock
}

// New creates a store.
func New(cfg Config, clk clock.Clock) *Store {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	return &Store{
		entries:    make(map[string]*entry),
		ttl:        cfg.TTL,
		maxEntries: cfg.MaxEntries,
		clock:      clock.OrReal(clk),
	}
}

// Key builds the cache key for a query.
func Key(latitude, longitude float64, radius int, searchType string) string {
	return fmt.Sprintf("%.2f:%.2f:%d:%s", quantize(latitude), quantize(longitude), radius, searchType)
}

// quantize rounds half away from zero to two decimals. Negative zero is
// folded into zero so -0.001 and 0.001 share a key.
func quantize(v float64) float64 {
	q := math.Round(v*100) / 100
	if q == 0 {
		return 0
	}
	return q
}

// Get returns the payload for key if it exists and has not expired.
// An expired entry is deleted.
func (s *Store) Get(key string) ([]json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if s.clock.Now().After(e.expiresAt) {
		delete(s.entries, key)
		return nil, false
	}
	return e.payload, true
}

// Put stores payload under key with the default TTL, overwriting any
// existing entry.
func (s *Store) Put(key string, payload []json.RawMessage) {
	s.PutWithTTL(key, payload, s.ttl)
}

// PutWithTTL stores payload under key with an explicit TTL.
func (s *Store) PutWithTTL(key string, payload []json.RawMessage, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.ttl
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxEntries > 0 && len(s.entries) >= s.maxEntries {
		if _, exists := s.entries[key]; !exists {
			s.evictSoonestLocked()
		}
	}

	s.entries[key] = &entry{
		payload:   payload,
		expiresAt: s.clock.Now().Add(ttl),
	}
}

// evictSoonestLocked removes the entry with the earliest expiry.
func (s *Store) evictSoonestLocked() {
	var victim string
	var soonest time.Time
	for key, e := range s.entries {
		if victim == "" || e.expiresAt.Before(soonest) {
			victim = key
			soonest = e.expiresAt
		}
	}
	if victim != "" {
		delete(s.entries, victim)
	}
}

// Sweep deletes every expired entry and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	removed := 0
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, including expired ones not yet
// swept.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Clear removes all entries.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*entry)
}

// TTL returns the default entry lifetime.
func (s *Store) TTL() time.Duration {
	return s.ttl
}
