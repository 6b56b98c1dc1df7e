package main

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile  string
	envFiles []string
)

var rootCmd = &cobra.Command{
	Use:   "placesgate",
	Short: "Placesgate - cost-governance gateway for places search",
	Long: `Placesgate fronts a paid, metered places search API and keeps its bill
under control.

Every nearby search passes through:
  - Per-caller rate limiting (fixed window)
  - A result cache keyed on rounded coordinates
  - Usage accounting with estimated cost
  - A monthly budget with one-shot threshold alerts`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults and environment only when empty)")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load (default .env.local, .env)")
}
