package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRequestTimeout  = 20 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB
	DefaultCORSMaxAge      = 3600

	// Places defaults
	DefaultPlacesBaseURL   = "https://maps.googleapis.com/maps/api/place"
	DefaultPlacesAPIKeyEnv = "GOOGLE_PLACES_API_KEY"
	DefaultPlacesTimeout   = 10 * time.Second
	DefaultRadius          = 8000
	DefaultMaxRadius       = 50000
	DefaultMaxIdleConns    = 10

	// Cost control defaults
	DefaultRateLimit      = 5
	DefaultRateWindow     = time.Hour
	DefaultCacheTTL       = time.Hour
	DefaultMaxStoredCalls = 1000
	DefaultCostPerCall    = 0.032
	DefaultMeteredSource  = "google_places"
	DefaultMonthlyBudget  = 50.0

	// Alert defaults
	DefaultAlertChannel   = "log"
	DefaultWebhookTimeout = 5 * time.Second
	DefaultSMTPPort       = 587
	DefaultEmailTimeout   = 10 * time.Second

	// Maintenance defaults
	DefaultCacheSweepSchedule     = "@every 10m"
	DefaultRateLimitSweepSchedule = "@every 10m"
	DefaultBudgetRolloverSchedule = "@hourly"
	DefaultMetricsRefreshSchedule = "@every 1m"

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultMetricsPath        = "/metrics"
	DefaultMetricsNamespace   = "placesgate"
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 0.1
	DefaultTracingExporter    = "otlp"
	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingServiceName = "placesgate"
	DefaultOTLPTimeout        = 10 * time.Second
)

// DefaultThresholds returns the default budget alert percentages.
func DefaultThresholds() []float64 {
	return []float64{50, 75, 90}
}

// Default returns a fully populated configuration. LoadConfig decodes YAML
// on top of it, so boolean settings that default to true keep that value
// unless the file sets them explicitly.
func Default() *Config {
	cfg := &Config{
		Server: ServerConfig{
			CORS: CORSConfig{Enabled: true},
		},
		Maintenance: MaintenanceConfig{
			CacheSweep:     DefaultCacheSweepSchedule,
			RateLimitSweep: DefaultRateLimitSweepSchedule,
			BudgetRollover: DefaultBudgetRolloverSchedule,
			MetricsRefresh: DefaultMetricsRefreshSchedule,
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{RedactSecrets: true},
			Metrics: MetricsConfig{Enabled: true},
			Tracing: TracingConfig{OTLP: OTLPConfig{Insecure: true}},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
// Maintenance schedules are left alone: an empty schedule disables a job.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	applyCORSDefaults(&cfg.Server.CORS)

	// Places defaults
	if cfg.Places.BaseURL == "" {
		cfg.Places.BaseURL = DefaultPlacesBaseURL
	}
	if cfg.Places.APIKeyEnv == "" {
		cfg.Places.APIKeyEnv = DefaultPlacesAPIKeyEnv
	}
	if cfg.Places.Timeout == 0 {
		cfg.Places.Timeout = DefaultPlacesTimeout
	}
	if cfg.Places.DefaultRadius == 0 {
		cfg.Places.DefaultRadius = DefaultRadius
	}
	if cfg.Places.MaxRadius == 0 {
		cfg.Places.MaxRadius = DefaultMaxRadius
	}
	if cfg.Places.MaxIdleConns == 0 {
		cfg.Places.MaxIdleConns = DefaultMaxIdleConns
	}

	// Cost control defaults
	if cfg.RateLimit.Limit == 0 {
		cfg.RateLimit.Limit = DefaultRateLimit
	}
	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = DefaultRateWindow
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}
	if cfg.Usage.MaxStoredCalls == 0 {
		cfg.Usage.MaxStoredCalls = DefaultMaxStoredCalls
	}
	if cfg.Usage.CostPerCall == 0 {
		cfg.Usage.CostPerCall = DefaultCostPerCall
	}
	if cfg.Usage.MeteredSource == "" {
		cfg.Usage.MeteredSource = DefaultMeteredSource
	}
	if cfg.Budget.MonthlyLimit == 0 {
		cfg.Budget.MonthlyLimit = DefaultMonthlyBudget
	}
	if len(cfg.Budget.Thresholds) == 0 {
		cfg.Budget.Thresholds = DefaultThresholds()
	}

	// Alert defaults
	if cfg.Alerts.Channel == "" {
		cfg.Alerts.Channel = DefaultAlertChannel
	}
	if cfg.Alerts.Webhook.Timeout == 0 {
		cfg.Alerts.Webhook.Timeout = DefaultWebhookTimeout
	}
	if cfg.Alerts.Email.Port == 0 {
		cfg.Alerts.Email.Port = DefaultSMTPPort
	}
	if cfg.Alerts.Email.Timeout == 0 {
		cfg.Alerts.Email.Timeout = DefaultEmailTimeout
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.Exporter == "" {
		cfg.Telemetry.Tracing.Exporter = DefaultTracingExporter
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.OTLP.Timeout == 0 {
		cfg.Telemetry.Tracing.OTLP.Timeout = DefaultOTLPTimeout
	}
}

func applyCORSDefaults(cors *CORSConfig) {
	if len(cors.AllowedOrigins) == 0 {
		cors.AllowedOrigins = []string{"*"}
	}
	if len(cors.AllowedMethods) == 0 {
		cors.AllowedMethods = []string{"GET", "OPTIONS"}
	}
	if len(cors.AllowedHeaders) == 0 {
		cors.AllowedHeaders = []string{"Content-Type", "X-Request-ID"}
	}
	if len(cors.ExposedHeaders) == 0 {
		cors.ExposedHeaders = []string{
			"X-Request-ID",
			"X-Cache",
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
			"Retry-After",
		}
	}
	if cors.MaxAge == 0 {
		cors.MaxAge = DefaultCORSMaxAge
	}
}
