package config

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All errors are collected and returned
// together. A missing places credential is not an error here: the gateway
// reports it per request so the rest of the service stays observable.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validatePlaces(&cfg.Places)...)
	errs = append(errs, validateCostControls(cfg)...)
	errs = append(errs, validateAlerts(&cfg.Alerts)...)
	errs = append(errs, validateMaintenance(&cfg.Maintenance)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}

	durations := map[string]int64{
		"server.read_timeout":     int64(cfg.ReadTimeout),
		"server.write_timeout":    int64(cfg.WriteTimeout),
		"server.idle_timeout":     int64(cfg.IdleTimeout),
		"server.shutdown_timeout": int64(cfg.ShutdownTimeout),
		"server.request_timeout":  int64(cfg.RequestTimeout),
	}
	for _, field := range sortedKeys(durations) {
		if durations[field] < 0 {
			errs = append(errs, FieldError{Field: field, Message: "must not be negative"})
		}
	}

	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes must be non-negative",
		})
	}
	if cfg.CORS.MaxAge < 0 {
		errs = append(errs, FieldError{
			Field:   "server.cors.max_age",
			Message: "max age must be non-negative",
		})
	}

	return errs
}

func validatePlaces(cfg *PlacesConfig) []FieldError {
	var errs []FieldError

	u, err := url.Parse(cfg.BaseURL)
	if cfg.BaseURL == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, FieldError{
			Field:   "places.base_url",
			Message: fmt.Sprintf("must be an absolute http(s) URL, got %q", cfg.BaseURL),
		})
	}

	if cfg.Timeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "places.timeout",
			Message: "timeout must be positive",
		})
	}

	if cfg.MaxRadius <= 0 || cfg.MaxRadius > DefaultMaxRadius {
		errs = append(errs, FieldError{
			Field:   "places.max_radius",
			Message: fmt.Sprintf("must be between 1 and %d meters", DefaultMaxRadius),
		})
	}
	if cfg.DefaultRadius <= 0 || cfg.DefaultRadius > cfg.MaxRadius {
		errs = append(errs, FieldError{
			Field:   "places.default_radius",
			Message: "must be positive and not exceed max_radius",
		})
	}

	if cfg.MaxIdleConns < 0 {
		errs = append(errs, FieldError{
			Field:   "places.max_idle_conns",
			Message: "must be non-negative",
		})
	}

	return errs
}

func validateCostControls(cfg *Config) []FieldError {
	var errs []FieldError

	if cfg.RateLimit.Limit < 1 {
		errs = append(errs, FieldError{Field: "rate_limit.limit", Message: "must be at least 1"})
	}
	if cfg.RateLimit.Window <= 0 {
		errs = append(errs, FieldError{Field: "rate_limit.window", Message: "window must be positive"})
	}

	if cfg.Cache.TTL <= 0 {
		errs = append(errs, FieldError{Field: "cache.ttl", Message: "ttl must be positive"})
	}
	if cfg.Cache.MaxEntries < 0 {
		errs = append(errs, FieldError{Field: "cache.max_entries", Message: "must be non-negative"})
	}

	if cfg.Usage.MaxStoredCalls < 1 {
		errs = append(errs, FieldError{Field: "usage.max_stored_calls", Message: "must be at least 1"})
	}
	if cfg.Usage.CostPerCall < 0 {
		errs = append(errs, FieldError{Field: "usage.cost_per_call", Message: "must be non-negative"})
	}
	if cfg.Usage.MeteredSource == "" {
		errs = append(errs, FieldError{Field: "usage.metered_source", Message: "metered source is required"})
	}

	if cfg.Budget.MonthlyLimit <= 0 {
		errs = append(errs, FieldError{Field: "budget.monthly_limit", Message: "monthly limit must be positive"})
	}
	for i, t := range cfg.Budget.Thresholds {
		if t <= 0 || t > 100 {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("budget.thresholds[%d]", i),
				Message: fmt.Sprintf("threshold must be in (0, 100], got %v", t),
			})
		}
	}

	return errs
}

func validateAlerts(cfg *AlertsConfig) []FieldError {
	var errs []FieldError

	switch strings.ToLower(cfg.Channel) {
	case "log":
	case "webhook":
		u, err := url.Parse(cfg.Webhook.URL)
		if cfg.Webhook.URL == "" || err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, FieldError{
				Field:   "alerts.webhook.url",
				Message: "an absolute URL is required for the webhook channel",
			})
		}
	case "email":
		if cfg.Email.Host == "" {
			errs = append(errs, FieldError{Field: "alerts.email.host", Message: "smtp host is required for the email channel"})
		}
		if cfg.Email.From == "" {
			errs = append(errs, FieldError{Field: "alerts.email.from", Message: "from address is required for the email channel"})
		}
		if len(cfg.Email.To) == 0 {
			errs = append(errs, FieldError{Field: "alerts.email.to", Message: "at least one recipient is required"})
		}
		if cfg.Email.Port <= 0 || cfg.Email.Port > 65535 {
			errs = append(errs, FieldError{Field: "alerts.email.port", Message: "port must be between 1 and 65535"})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "alerts.channel",
			Message: fmt.Sprintf("must be one of log, webhook, email, got %q", cfg.Channel),
		})
	}

	return errs
}

func validateMaintenance(cfg *MaintenanceConfig) []FieldError {
	var errs []FieldError

	schedules := map[string]string{
		"maintenance.cache_sweep":      cfg.CacheSweep,
		"maintenance.rate_limit_sweep": cfg.RateLimitSweep,
		"maintenance.budget_rollover":  cfg.BudgetRollover,
		"maintenance.metrics_refresh":  cfg.MetricsRefresh,
	}
	for _, field := range sortedKeys(schedules) {
		spec := schedules[field]
		if spec == "" {
			continue
		}
		if _, err := cron.ParseStandard(spec); err != nil {
			errs = append(errs, FieldError{
				Field:   field,
				Message: fmt.Sprintf("invalid schedule %q: %v", spec, err),
			})
		}
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("must be one of debug, info, warn, error, got %q", cfg.Logging.Level),
		})
	}

	switch strings.ToLower(cfg.Logging.Format) {
	case "json", "text", "console":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("must be one of json, text, console, got %q", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}

	if cfg.Tracing.Enabled {
		switch cfg.Tracing.Sampler {
		case "always", "never", "ratio":
		default:
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sampler",
				Message: fmt.Sprintf("must be one of always, never, ratio, got %q", cfg.Tracing.Sampler),
			})
		}
		if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sample_ratio",
				Message: "sample ratio must be between 0.0 and 1.0",
			})
		}
		if cfg.Tracing.Exporter != "otlp" {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.exporter",
				Message: fmt.Sprintf("unsupported exporter %q (valid: otlp)", cfg.Tracing.Exporter),
			})
		}
		if cfg.Tracing.Endpoint == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.endpoint",
				Message: "endpoint is required when tracing is enabled",
			})
		}
	}

	return errs
}

// sortedKeys returns map keys in a stable order so error lists are
// deterministic.
func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
