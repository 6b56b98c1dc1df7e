// Placesgate is a cost-governance gateway in front of a metered places
// search API.
//
// It sits between clients and the provider, providing:
//   - Per-caller fixed-window rate limiting
//   - Geo-quantized result caching with TTL
//   - Usage accounting and monthly budget alerts
//   - Prometheus metrics and OpenTelemetry tracing
//
// Usage:
//
//	# Start with defaults and environment overrides
//	placesgate run
//
//	# Start with a configuration file
//	placesgate run --config /etc/placesgate/config.yaml
//
//	# Check a configuration file
//	placesgate validate --config config.yaml
//
//	# Inspect a running gateway's spend
//	placesgate usage --url http://127.0.0.1:8080 --days 7
package main

import (
	"fmt"
	"os"

	"github.com/placesgate/placesgate/pkg/cli"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}
