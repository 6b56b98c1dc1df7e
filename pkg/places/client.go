package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/placesgate/placesgate/pkg/telemetry/tracing"
)

const (
	nearbyPath      = "/nearbysearch/json"
	maxResponseBody = 5 << 20
	maxErrorMessage = 512
)

// Searcher runs a nearby search against the provider.
type Searcher interface {
	Search(ctx context.Context, q Query) (*Result, error)
}

// Client is the HTTP client for the Nearby Search endpoint.
type Client struct {
	config Config
	client *http.Client
	tracer *tracing.Tracer
	logger *slog.Logger

	healthMu sync.RWMutex
	health   Health
}

// Option configures a Client.
type Option func(*Client)

// WithTracer sets the tracer used for places.search spans.
func WithTracer(t *tracing.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l.With("component", "places.client") }
}

// WithHTTPClient replaces the pooled HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// NewClient creates a client with a pooled transport.
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = 10
	}
	if cfg.IdleConnTimeout <= 0 {
		cfg.IdleConnTimeout = 90 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConns,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	c := &Client{
		config: cfg,
		client: &http.Client{Transport: transport},
		logger: slog.Default().With("component", "places.client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether a credential is present.
func (c *Client) Configured() bool {
	return c.config.APIKey != ""
}

// Timeout returns the per-call timeout.
func (c *Client) Timeout() time.Duration {
	return c.config.Timeout
}

// Search performs one Nearby Search request. It never retries.
func (c *Client) Search(ctx context.Context, q Query) (*Result, error) {
	if !c.Configured() {
		return nil, ErrMissingAPIKey
	}

	ctx, span := c.tracer.Start(ctx, "places.search")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	result, httpStatus, err := c.do(ctx, q)
	c.recordOutcome(err)

	providerStatus := ""
	count := 0
	if result != nil {
		providerStatus = result.Status
		count = len(result.Places)
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		providerStatus = pe.Status
	}
	tracing.SetUpstreamAttributes(span, httpStatus, providerStatus, count)
	tracing.SetStatus(span, err)

	if err != nil {
		c.logger.WarnContext(ctx, "places search failed",
			"error", err,
			"reached", Reached(err),
			"http_status", httpStatus,
		)
		return nil, err
	}

	c.logger.DebugContext(ctx, "places search completed",
		"status", result.Status,
		"results", len(result.Places),
	)
	return result, nil
}

// do sends the request and classifies the response. The returned status is
// the provider's HTTP status, or 0 if none was received.
func (c *Client) do(ctx context.Context, q Query) (*Result, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(q), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	tracing.Inject(ctx, req.Header)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, c.transportError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		if ctx.Err() != nil {
			return nil, resp.StatusCode, &TimeoutError{Timeout: c.config.Timeout, Cause: ctx.Err()}
		}
		return nil, resp.StatusCode, &ParseError{Cause: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, &ProviderError{
			StatusCode: resp.StatusCode,
			Message:    truncate(strings.TrimSpace(string(body)), maxErrorMessage),
			Reached:    true,
		}
	}

	var decoded nearbyResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, resp.StatusCode, &ParseError{
			RawResponse: truncate(string(body), maxErrorMessage),
			Cause:       fmt.Errorf("failed to unmarshal response: %w", err),
		}
	}

	switch decoded.Status {
	case StatusOK, StatusZeroResults:
		places := decoded.Results
		if places == nil {
			places = []json.RawMessage{}
		}
		return &Result{Places: places, Status: decoded.Status}, resp.StatusCode, nil
	default:
		msg := decoded.ErrorMessage
		if msg == "" {
			msg = "provider returned status " + decoded.Status
		}
		return nil, resp.StatusCode, &ProviderError{
			StatusCode: statusForProvider(decoded.Status),
			Status:     decoded.Status,
			Message:    msg,
			Reached:    true,
		}
	}
}

// transportError classifies a failed round trip. The request URL carries
// the credential, so only the inner error of a *url.Error is kept.
func (c *Client) transportError(ctx context.Context, err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Timeout: c.config.Timeout, Cause: err}
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("places request cancelled: %w", err)
	}
	return &ProviderError{
		StatusCode: http.StatusBadGateway,
		Message:    err.Error(),
		Reached:    false,
	}
}

func (c *Client) requestURL(q Query) string {
	params := url.Values{}
	params.Set("location", strconv.FormatFloat(q.Latitude, 'f', -1, 64)+","+strconv.FormatFloat(q.Longitude, 'f', -1, 64))
	params.Set("radius", strconv.Itoa(q.RadiusMeters))
	params.Set("keyword", q.Keyword)
	params.Set("key", c.config.APIKey)
	return c.config.BaseURL + nearbyPath + "?" + params.Encode()
}

func (c *Client) recordOutcome(err error) {
	c.healthMu.Lock()
	defer c.healthMu.Unlock()

	c.health.TotalRequests++
	if err == nil {
		c.health.ConsecutiveFailures = 0
		c.health.LastSuccess = time.Now()
		c.health.LastError = ""
		return
	}
	c.health.FailedRequests++
	c.health.ConsecutiveFailures++
	c.health.LastError = err.Error()
}

// Health returns a snapshot of recent outcomes.
func (c *Client) Health() Health {
	c.healthMu.RLock()
	defer c.healthMu.RUnlock()
	return c.health
}

// Close releases idle connections.
func (c *Client) Close() {
	c.client.CloseIdleConnections()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
