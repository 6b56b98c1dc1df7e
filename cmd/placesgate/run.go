package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/placesgate/placesgate/pkg/cli"
	"github.com/placesgate/placesgate/pkg/config"
	"github.com/placesgate/placesgate/pkg/telemetry/logging"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the gateway",
	Long: `Start the places gateway with the specified configuration.

The server answers nearby searches from cache where it can, calls the provider
otherwise, and records the estimated cost of every call against the monthly
budget. The places API key is read from the variable named by
places.api_key_env (default GOOGLE_PLACES_API_KEY).

Examples:
  # Start with defaults
  placesgate run

  # Start with custom config
  placesgate run --config /etc/placesgate/config.yaml

  # Override listen address
  placesgate run --listen 0.0.0.0:8080

  # Validate config without starting server
  placesgate run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return cli.NewConfigError(cfgFile, err)
	}
	config.SetConfig(cfg)

	logger, err := logging.New(logging.Config{
		Level:         cfg.Telemetry.Logging.Level,
		Format:        cfg.Telemetry.Logging.Format,
		AddSource:     cfg.Telemetry.Logging.AddSource,
		RedactSecrets: cfg.Telemetry.Logging.RedactSecrets,
	})
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration valid")
		return nil
	}

	a, err := newApp(cfg, logger, appOptions{})
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	logger.Info("placesgate starting",
		"version", Version,
		"config", cfgFile,
		"listen_address", cfg.Server.ListenAddress,
		"places_configured", a.service.Configured(),
		"places_api_key", logging.RedactAPIKey(cfg.Places.APIKey),
		"rate_limit", cfg.RateLimit.Limit,
		"rate_limit_window", cfg.RateLimit.Window.String(),
		"monthly_budget", cfg.Budget.MonthlyLimit,
	)
	if !a.service.Configured() {
		logger.Warn("no places API key configured; searches will fail until one is set",
			"env", cfg.Places.APIKeyEnv,
		)
	}

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	runErr := a.run(ctx, cfgFile)

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.close(closeCtx); err != nil {
		logger.Error("shutdown cleanup failed", "error", err)
	}

	if runErr != nil {
		return cli.NewCommandError("run", runErr)
	}
	logger.Info("placesgate stopped")
	return nil
}
