package places

import (
	"encoding/json"
	"sort"
	"time"
)

// Search types accepted by the gateway.
const (
	SearchTypeCoffee   = "coffee"
	SearchTypeCafe     = "cafe"
	SearchTypeEspresso = "espresso"
	SearchTypeTea      = "tea"
	SearchTypeBakery   = "bakery"

	// DefaultSearchType is used when a request omits searchType.
	DefaultSearchType = SearchTypeCoffee
)

// keywords maps search types to the provider keyword.
var keywords = map[string]string{
	SearchTypeCoffee:   "coffee",
	SearchTypeCafe:     "cafe",
	SearchTypeEspresso: "espresso bar",
	SearchTypeTea:      "tea house",
	SearchTypeBakery:   "bakery",
}

// KeywordFor returns the provider keyword for a search type.
func KeywordFor(searchType string) (string, bool) {
	k, ok := keywords[searchType]
	return k, ok
}

// SearchTypes returns the accepted search types in sorted order.
func SearchTypes() []string {
	out := make([]string, 0, len(keywords))
	for t := range keywords {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Provider status values returned in the response body.
const (
	StatusOK             = "OK"
	StatusZeroResults    = "ZERO_RESULTS"
	StatusOverQueryLimit = "OVER_QUERY_LIMIT"
	StatusRequestDenied  = "REQUEST_DENIED"
	StatusInvalidRequest = "INVALID_REQUEST"
	StatusUnknownError   = "UNKNOWN_ERROR"
)

// Query is one nearby search.
type Query struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters int
	Keyword      string
}

// Result is a successful search. Places are passed through unmodified.
type Result struct {
	Places []json.RawMessage
	Status string
}

// nearbyResponse is the provider response body.
type nearbyResponse struct {
	Status       string            `json:"status"`
	Results      []json.RawMessage `json:"results"`
	ErrorMessage string            `json:"error_message,omitempty"`
}

// Config configures a Client.
type Config struct {
	// BaseURL is the API root; "/nearbysearch/json" is appended.
	BaseURL string

	// APIKey is the provider credential. Empty makes every call fail with
	// a ConfigError.
	APIKey string

	// Timeout bounds each call. Default: 10s
	Timeout time.Duration

	// MaxIdleConns bounds the connection pool. Default: 10
	MaxIdleConns int

	// IdleConnTimeout closes idle pooled connections. Default: 90s
	IdleConnTimeout time.Duration
}

// Health summarizes recent upstream outcomes.
type Health struct {
	TotalRequests       int64     `json:"totalRequests"`
	FailedRequests      int64     `json:"failedRequests"`
	ConsecutiveFailures int       `json:"consecutiveFailures"`
	LastSuccess         time.Time `json:"lastSuccess,omitempty"`
	LastError           string    `json:"lastError,omitempty"`
}
