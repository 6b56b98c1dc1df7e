package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/placesgate/placesgate/pkg/config"
	"github.com/placesgate/placesgate/pkg/gateway"
	"github.com/placesgate/placesgate/pkg/server/middleware"
	"github.com/placesgate/placesgate/pkg/telemetry/health"
	"github.com/placesgate/placesgate/pkg/telemetry/metrics"
	"github.com/placesgate/placesgate/pkg/telemetry/tracing"
)

// API routes.
const (
	RouteNearby = "/api/places/nearby"
	RouteUsage  = "/api/places/usage"
)

// RouterOptions holds everything the router serves.
type RouterOptions struct {
	Config  *config.Config
	Service *gateway.Service
	Checker *health.Checker
	Metrics *metrics.Collector
	Version health.VersionInfo
	Logger  *slog.Logger
}

// NewRouter builds the HTTP handler with the full middleware chain.
func NewRouter(opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	var recorder middleware.RequestRecorder
	if opts.Metrics != nil {
		recorder = opts.Metrics
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recovery(logger),
		middleware.RequestID,
		tracing.HTTPMiddleware,
		middleware.Logging(logger, recorder),
		middleware.CORS(corsConfig(cfg.Server.CORS)),
		middleware.Timeout(cfg.Server.RequestTimeout),
	)

	h := &handlers{service: opts.Service, logger: logger.With("component", "server")}
	r.Get(RouteNearby, h.nearby)
	r.Get(RouteUsage, h.usage)

	checker := opts.Checker
	if checker == nil {
		checker = health.New(0)
	}
	health.Register(r, checker, opts.Version)

	if opts.Metrics != nil && cfg.Telemetry.Metrics.Enabled {
		r.Method(http.MethodGet, cfg.Telemetry.Metrics.Path, opts.Metrics.Handler())
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "Method not allowed"})
	})

	return r
}

func corsConfig(c config.CORSConfig) middleware.CORSConfig {
	return middleware.CORSConfig{
		Enabled:        c.Enabled,
		AllowedOrigins: c.AllowedOrigins,
		AllowedMethods: c.AllowedMethods,
		AllowedHeaders: c.AllowedHeaders,
		ExposedHeaders: c.ExposedHeaders,
		MaxAge:         c.MaxAge,
	}
}
