package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/placesgate/placesgate/pkg/cli"
	"github.com/placesgate/placesgate/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Load the configuration file with environment overrides and report any
problems without starting the gateway.

A missing places API key is reported as a warning: the gateway starts without
one but answers every search with "Places API not configured".

Examples:
  placesgate validate --config config.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	source := cfgFile
	if source == "" {
		source = "(defaults)"
	}
	fmt.Fprintf(out, "✓ Configuration valid: %s\n", source)
	fmt.Fprintf(out, "  Listen address: %s\n", cfg.Server.ListenAddress)
	fmt.Fprintf(out, "  Rate limit: %d per %s\n", cfg.RateLimit.Limit, cfg.RateLimit.Window)
	fmt.Fprintf(out, "  Cache TTL: %s\n", cfg.Cache.TTL)
	fmt.Fprintf(out, "  Monthly budget: $%.2f (alerts at %v%%)\n", cfg.Budget.MonthlyLimit, cfg.Budget.Thresholds)
	fmt.Fprintf(out, "  Alert channel: %s\n", cfg.Alerts.Channel)

	if cfg.Places.APIKey == "" {
		fmt.Fprintf(out, "⚠ No places API key configured (set %s)\n", cfg.Places.APIKeyEnv)
	}
	return nil
}

// loadConfig reads dotenv files and the config file with environment
// overrides.
func loadConfig() (*config.Config, error) {
	if err := config.LoadEnvFiles(envFiles...); err != nil {
		return nil, cli.NewConfigError("", err)
	}
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError(cfgFile, err)
	}
	return cfg, nil
}
