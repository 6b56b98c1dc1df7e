package config

import "time"

// Config is the root configuration structure for placesgate.
// It contains the HTTP server, upstream places provider, cost-control
// components (rate limit, cache, usage, budget), alerting, maintenance
// schedules and telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts and CORS.
	Server ServerConfig `yaml:"server"`

	// Places contains the upstream places-search provider configuration.
	Places PlacesConfig `yaml:"places"`

	// RateLimit contains per-caller admission control settings.
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// Cache contains search result cache settings.
	Cache CacheConfig `yaml:"cache"`

	// Usage contains usage accounting settings.
	Usage UsageConfig `yaml:"usage"`

	// Budget contains the monthly budget and alert thresholds.
	Budget BudgetConfig `yaml:"budget"`

	// Alerts selects and configures the budget alert channel.
	Alerts AlertsConfig `yaml:"alerts"`

	// Maintenance contains cron schedules for background jobs.
	Maintenance MaintenanceConfig `yaml:"maintenance"`

	// Telemetry contains configuration for observability including logging,
	// metrics, and distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 15s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. It must exceed the upstream timeout.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// RequestTimeout bounds the handling of a single API request.
	// Default: 20s
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MaxHeaderBytes limits request header size.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS (Cross-Origin Resource Sharing) configuration.
type CORSConfig struct {
	// Enabled controls whether CORS headers are emitted.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins. ["*"] allows all.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods.
	// Default: ["GET", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed request headers.
	// Default: ["Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// ExposedHeaders is a list of headers the browser may read.
	// Default: X-Request-ID, X-Cache and the rate limit headers.
	ExposedHeaders []string `yaml:"exposed_headers"`

	// MaxAge is the preflight cache lifetime in seconds.
	// Default: 3600
	MaxAge int `yaml:"max_age"`
}

// PlacesConfig contains configuration for the upstream places-search API.
type PlacesConfig struct {
	// BaseURL is the API root. The client appends "/nearbysearch/json".
	// Default: "https://maps.googleapis.com/maps/api/place"
	BaseURL string `yaml:"base_url"`

	// APIKey is the provider credential. Prefer APIKeyEnv or a .env file.
	APIKey string `yaml:"api_key"`

	// APIKeyEnv names the environment variable holding the credential when
	// APIKey is empty.
	// Default: "GOOGLE_PLACES_API_KEY"
	APIKeyEnv string `yaml:"api_key_env"`

	// Timeout bounds each upstream call.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// DefaultRadius is used when a request omits radius (meters).
	// Default: 8000
	DefaultRadius int `yaml:"default_radius"`

	// MaxRadius is the largest accepted radius (meters).
	// Default: 50000
	MaxRadius int `yaml:"max_radius"`

	// MaxIdleConns bounds the client connection pool.
	// Default: 10
	MaxIdleConns int `yaml:"max_idle_conns"`
}

// RateLimitConfig configures fixed-window admission control.
type RateLimitConfig struct {
	// Limit is the number of requests admitted per caller per window.
	// Default: 5
	Limit int `yaml:"limit"`

	// Window is the fixed window length.
	// Default: 1h
	Window time.Duration `yaml:"window"`
}

// CacheConfig configures the search result cache.
type CacheConfig struct {
	// TTL is the lifetime of a cached result.
	// Default: 1h
	TTL time.Duration `yaml:"ttl"`

	// MaxEntries caps the cache size (0 = unlimited).
	// Default: 0
	MaxEntries int `yaml:"max_entries"`
}

// UsageConfig configures usage accounting.
type UsageConfig struct {
	// MaxStoredCalls is the ring buffer capacity.
	// Default: 1000
	MaxStoredCalls int `yaml:"max_stored_calls"`

	// CostPerCall is the estimated USD cost of one uncached upstream call.
	// Default: 0.032
	CostPerCall float64 `yaml:"cost_per_call"`

	// MeteredSource is the source name that incurs cost.
	// Default: "google_places"
	MeteredSource string `yaml:"metered_source"`
}

// BudgetConfig configures the monthly budget monitor.
type BudgetConfig struct {
	// MonthlyLimit is the monthly budget in USD.
	// Default: 50
	MonthlyLimit float64 `yaml:"monthly_limit"`

	// Thresholds are alert percentages of the monthly limit.
	// Default: [50, 75, 90]
	Thresholds []float64 `yaml:"thresholds"`
}

// AlertsConfig selects the budget alert channel.
type AlertsConfig struct {
	// Channel is "log", "webhook" or "email".
	// Default: "log"
	Channel string `yaml:"channel"`

	// Webhook is used when Channel is "webhook".
	Webhook WebhookConfig `yaml:"webhook"`

	// Email is used when Channel is "email".
	Email EmailConfig `yaml:"email"`
}

// WebhookConfig configures webhook alert delivery.
type WebhookConfig struct {
	URL     string            `yaml:"url"`
	Timeout time.Duration     `yaml:"timeout"`
	Headers map[string]string `yaml:"headers"`
}

// EmailConfig configures SMTP alert delivery.
type EmailConfig struct {
	Host     string   `yaml:"host"`
	Port     int      `yaml:"port"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
	UseTLS   bool     `yaml:"use_tls"`

	// Timeout bounds one delivery.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// MaintenanceConfig holds cron schedules for background jobs.
// An empty schedule disables the job.
type MaintenanceConfig struct {
	// CacheSweep removes expired cache entries.
	// Default: "@every 10m"
	CacheSweep string `yaml:"cache_sweep"`

	// RateLimitSweep removes expired rate limit windows.
	// Default: "@every 10m"
	RateLimitSweep string `yaml:"rate_limit_sweep"`

	// BudgetRollover checks for a calendar month change.
	// Default: "@hourly"
	BudgetRollover string `yaml:"budget_rollover"`

	// MetricsRefresh updates state gauges.
	// Default: "@every 1m"
	MetricsRefresh string `yaml:"metrics_refresh"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactSecrets scrubs credentials from log attributes.
	// Default: true
	RedactSecrets bool `yaml:"redact_secrets"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether the Prometheus endpoint is served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "placesgate"
	Namespace string `yaml:"namespace"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio"`

	// Exporter determines the trace exporter. Only "otlp" is supported.
	// Default: "otlp"
	Exporter string `yaml:"exporter"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "placesgate"
	ServiceName string `yaml:"service_name"`

	// OTLP contains OTLP exporter specific configuration.
	OTLP OTLPConfig `yaml:"otlp"`
}

// OTLPConfig contains OTLP exporter configuration.
type OTLPConfig struct {
	// Insecure disables TLS for the OTLP connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout for export operations.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}
