package gateway

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/placesgate/placesgate/pkg/limits"
	"github.com/placesgate/placesgate/pkg/places"
)

// Radius defaults in meters.
const (
	DefaultRadius = 8000
	MaxRadius     = 50000
)

// Query parameter names.
const (
	ParamLatitude   = "latitude"
	ParamLongitude  = "longitude"
	ParamRadius     = "radius"
	ParamSearchType = "searchType"
)

// SearchRequest is a validated nearby search.
type SearchRequest struct {
	Latitude   float64
	Longitude  float64
	Radius     int
	SearchType string
	CallerKey  string
}

// SearchResponse is a served search.
type SearchResponse struct {
	Results   []json.RawMessage
	Cached    bool
	CacheKey  string
	RateLimit limits.RateLimitInfo
}

// RequestLimits bounds the radius parameter.
type RequestLimits struct {
	DefaultRadius int
	MaxRadius     int
}

// DefaultRequestLimits returns an 8 km default and 50 km maximum.
func DefaultRequestLimits() RequestLimits {
	return RequestLimits{DefaultRadius: DefaultRadius, MaxRadius: MaxRadius}
}

// ParseSearchRequest validates query parameters using the default radius
// limits. CallerKey is left empty.
func ParseSearchRequest(q url.Values) (SearchRequest, error) {
	return DefaultRequestLimits().Parse(q)
}

// Parse validates query parameters into a SearchRequest.
func (l RequestLimits) Parse(q url.Values) (SearchRequest, error) {
	l = l.withDefaults()

	lat, err := parseCoordinate(q, ParamLatitude, 90)
	if err != nil {
		return SearchRequest{}, err
	}
	lon, err := parseCoordinate(q, ParamLongitude, 180)
	if err != nil {
		return SearchRequest{}, err
	}

	radius := l.DefaultRadius
	if raw := strings.TrimSpace(q.Get(ParamRadius)); raw != "" {
		radius, err = strconv.Atoi(raw)
		if err != nil {
			return SearchRequest{}, &ValidationError{Param: ParamRadius, Message: "must be an integer number of meters"}
		}
		if radius < 1 || radius > l.MaxRadius {
			return SearchRequest{}, &ValidationError{
				Param:   ParamRadius,
				Message: fmt.Sprintf("must be between 1 and %d", l.MaxRadius),
			}
		}
	}

	searchType := strings.ToLower(strings.TrimSpace(q.Get(ParamSearchType)))
	if searchType == "" {
		searchType = places.DefaultSearchType
	}
	if _, ok := places.KeywordFor(searchType); !ok {
		return SearchRequest{}, &ValidationError{
			Param:   ParamSearchType,
			Message: fmt.Sprintf("must be one of %s", strings.Join(places.SearchTypes(), ", ")),
		}
	}

	return SearchRequest{
		Latitude:   lat,
		Longitude:  lon,
		Radius:     radius,
		SearchType: searchType,
	}, nil
}

func (l RequestLimits) withDefaults() RequestLimits {
	if l.MaxRadius <= 0 {
		l.MaxRadius = MaxRadius
	}
	if l.DefaultRadius <= 0 || l.DefaultRadius > l.MaxRadius {
		l.DefaultRadius = min(DefaultRadius, l.MaxRadius)
	}
	return l
}

func parseCoordinate(q url.Values, name string, bound float64) (float64, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return 0, &ValidationError{Param: name, Message: "is required"}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) {
		return 0, &ValidationError{Param: name, Message: "must be a number"}
	}
	if v < -bound || v > bound {
		return 0, &ValidationError{Param: name, Message: fmt.Sprintf("must be between -%g and %g", bound, bound)}
	}
	return v, nil
}

// Validate checks a request built without ParseSearchRequest.
func (r SearchRequest) Validate() error {
	if math.IsNaN(r.Latitude) || r.Latitude < -90 || r.Latitude > 90 {
		return &ValidationError{Param: ParamLatitude, Message: "must be between -90 and 90"}
	}
	if math.IsNaN(r.Longitude) || r.Longitude < -180 || r.Longitude > 180 {
		return &ValidationError{Param: ParamLongitude, Message: "must be between -180 and 180"}
	}
	if r.Radius < 1 {
		return &ValidationError{Param: ParamRadius, Message: "must be positive"}
	}
	if _, ok := places.KeywordFor(r.SearchType); !ok {
		return &ValidationError{Param: ParamSearchType, Message: "unknown search type"}
	}
	return nil
}
