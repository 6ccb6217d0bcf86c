// Package cmd defines the reliabase command-line interface.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "reliabase",
	Short: "Reliability statistics engine for equipment fleets",
	Long: `reliabase tracks asset exposure and failure history, fits censored
Weibull lifetime models and serves fleet reliability analytics over HTTP.`,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to configuration file")
}
