// Package config provides configuration management for placesgate.
//
// This package handles loading, validating, and managing configuration from
// YAML files with dotenv and environment variable overrides.
//
// # Configuration Loading
//
//	cfg, err := config.LoadConfig("placesgate.yaml")
//	cfg, err := config.LoadConfigWithEnvOverrides("placesgate.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention PLACESGATE_SECTION_FIELD:
//
//   - PLACESGATE_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - PLACESGATE_BUDGET_MONTHLY_LIMIT overrides budget.monthly_limit
//   - PLACESGATE_BUDGET_THRESHOLDS overrides budget.thresholds ("50,75,90")
//
// The places credential is read from places.api_key, PLACESGATE_PLACES_API_KEY,
// or the variable named by places.api_key_env (GOOGLE_PLACES_API_KEY by
// default). LoadEnvFiles loads .env.local and .env before any of this so the
// credential can live in a dotenv file.
//
// # Configuration Precedence
//
//  1. Default values (defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Hot Reload
//
// Watcher follows the file with fsnotify. The run command applies reloaded
// budget limits and alert thresholds to the live budget monitor; every other
// setting requires a restart.
package config
