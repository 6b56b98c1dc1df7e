package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/placesgate/placesgate/pkg/gateway"
	"github.com/placesgate/placesgate/pkg/limits"
)

// Response headers.
const (
	HeaderCache              = "X-Cache"
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
	HeaderRetryAfter         = "Retry-After"
)

// maxUsageDays bounds the usage window.
const maxUsageDays = 365

type handlers struct {
	service *gateway.Service
	logger  *slog.Logger
}

type errorBody struct {
	Error      string `json:"error"`
	Message    string `json:"message,omitempty"`
	RetryAfter int    `json:"retryAfter,omitempty"`
}

type nearbyBody struct {
	Results []json.RawMessage `json:"results"`
}

// nearby serves GET /api/places/nearby.
func (h *handlers) nearby(w http.ResponseWriter, r *http.Request) {
	req, err := h.service.ParseSearchRequest(r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	req.CallerKey = gateway.ClientKey(r)

	resp, err := h.service.Search(r.Context(), req)
	if resp != nil && resp.RateLimit.Limit > 0 {
		setRateLimitHeaders(w, resp.RateLimit)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if resp.Cached {
		w.Header().Set(HeaderCache, "HIT")
	} else {
		w.Header().Set(HeaderCache, "MISS")
	}

	results := resp.Results
	if results == nil {
		results = []json.RawMessage{}
	}
	writeJSON(w, http.StatusOK, nearbyBody{Results: results})
}

// usage serves GET /api/places/usage.
func (h *handlers) usage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	days, err := intParam(q.Get("days"), maxUsageDays)
	if err != nil {
		h.writeError(w, r, &gateway.ValidationError{Param: "days", Message: err.Error()})
		return
	}
	// The service caps limit at gateway.MaxRecentLimit.
	limit, err := intParam(q.Get("limit"), 0)
	if err != nil {
		h.writeError(w, r, &gateway.ValidationError{Param: "limit", Message: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, h.service.Usage(days, limit))
}

// intParam parses an optional positive integer no larger than upper.
// Empty returns 0. An upper of zero means unbounded.
func intParam(raw string, upper int) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if upper > 0 && (err != nil || v < 1 || v > upper) {
		return 0, errors.New("must be an integer between 1 and " + strconv.Itoa(upper))
	}
	if err != nil || v < 1 {
		return 0, errors.New("must be a positive integer")
	}
	return v, nil
}

func setRateLimitHeaders(w http.ResponseWriter, info limits.RateLimitInfo) {
	h := w.Header()
	h.Set(HeaderRateLimitLimit, strconv.Itoa(info.Limit))
	h.Set(HeaderRateLimitRemaining, strconv.Itoa(info.Remaining))
	h.Set(HeaderRateLimitReset, strconv.FormatInt(info.Reset.Unix(), 10))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
