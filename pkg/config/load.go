package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "PLACESGATE_"

// DefaultEnvFiles are the dotenv files loaded at startup, highest
// precedence first.
var DefaultEnvFiles = []string{".env.local", ".env"}

// LoadConfig loads configuration from a YAML file at the specified path.
// The file is decoded on top of Default(), then defaults are re-applied to
// fields the file zeroed and the result is validated. An empty path returns
// the defaults. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention PLACESGATE_SECTION_FIELD (e.g., PLACESGATE_SERVER_LISTEN_ADDRESS)
// and always take precedence over the file.
//
// The loading sequence is:
// 1. Load YAML from file and apply defaults
// 2. Apply environment variable overrides
// 3. Resolve the places credential from places.api_key_env
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	resolveAPIKey(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// LoadEnvFiles loads dotenv files into the process environment. Variables
// already set are never overwritten, so the real environment wins, then the
// first file listed. Missing files are skipped. With no arguments
// DefaultEnvFiles is used.
func LoadEnvFiles(paths ...string) error {
	if len(paths) == 0 {
		paths = DefaultEnvFiles
	}

	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load env file %q: %w", path, err)
		}
	}
	return nil
}

// resolveAPIKey fills Places.APIKey from the variable named by APIKeyEnv.
func resolveAPIKey(cfg *Config) {
	if cfg.Places.APIKey != "" || cfg.Places.APIKeyEnv == "" {
		return
	}
	cfg.Places.APIKey = os.Getenv(cfg.Places.APIKeyEnv)
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	envString("SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	envDuration("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	envDuration("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	envDuration("SERVER_REQUEST_TIMEOUT", &cfg.Server.RequestTimeout)
	envDuration("SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	if val := os.Getenv(EnvPrefix + "SERVER_CORS_ALLOWED_ORIGINS"); val != "" {
		cfg.Server.CORS.AllowedOrigins = splitList(val)
	}

	// Places overrides
	envString("PLACES_BASE_URL", &cfg.Places.BaseURL)
	envString("PLACES_API_KEY", &cfg.Places.APIKey)
	envString("PLACES_API_KEY_ENV", &cfg.Places.APIKeyEnv)
	envDuration("PLACES_TIMEOUT", &cfg.Places.Timeout)
	envInt("PLACES_DEFAULT_RADIUS", &cfg.Places.DefaultRadius)
	envInt("PLACES_MAX_RADIUS", &cfg.Places.MaxRadius)

	// Cost control overrides
	envInt("RATE_LIMIT_LIMIT", &cfg.RateLimit.Limit)
	envDuration("RATE_LIMIT_WINDOW", &cfg.RateLimit.Window)
	envDuration("CACHE_TTL", &cfg.Cache.TTL)
	envInt("CACHE_MAX_ENTRIES", &cfg.Cache.MaxEntries)
	envInt("USAGE_MAX_STORED_CALLS", &cfg.Usage.MaxStoredCalls)
	envFloat("USAGE_COST_PER_CALL", &cfg.Usage.CostPerCall)
	envFloat("BUDGET_MONTHLY_LIMIT", &cfg.Budget.MonthlyLimit)
	if val := os.Getenv(EnvPrefix + "BUDGET_THRESHOLDS"); val != "" {
		var thresholds []float64
		for _, part := range splitList(val) {
			if f, err := strconv.ParseFloat(part, 64); err == nil {
				thresholds = append(thresholds, f)
			}
		}
		if len(thresholds) > 0 {
			cfg.Budget.Thresholds = thresholds
		}
	}

	// Alert overrides
	envString("ALERTS_CHANNEL", &cfg.Alerts.Channel)
	envString("ALERTS_WEBHOOK_URL", &cfg.Alerts.Webhook.URL)
	envString("ALERTS_EMAIL_HOST", &cfg.Alerts.Email.Host)
	envInt("ALERTS_EMAIL_PORT", &cfg.Alerts.Email.Port)
	envString("ALERTS_EMAIL_USERNAME", &cfg.Alerts.Email.Username)
	envString("ALERTS_EMAIL_PASSWORD", &cfg.Alerts.Email.Password)
	envString("ALERTS_EMAIL_FROM", &cfg.Alerts.Email.From)
	if val := os.Getenv(EnvPrefix + "ALERTS_EMAIL_TO"); val != "" {
		cfg.Alerts.Email.To = splitList(val)
	}

	// Telemetry overrides
	envString("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	envBool("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	envString("TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
	envBool("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	envString("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	envFloat("TELEMETRY_TRACING_SAMPLE_RATIO", &cfg.Telemetry.Tracing.SampleRatio)
}

func envString(name string, dst *string) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		*dst = val
	}
}

func envDuration(name string, dst *time.Duration) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}

func envInt(name string, dst *int) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func envFloat(name string, dst *float64) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			*dst = f
		}
	}
}

func envBool(name string, dst *bool) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
