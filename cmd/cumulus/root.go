package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "cumulus",
	Short: "Cumulus - Prometheus exporter for Amazon CloudWatch",
	Long: `Cumulus exposes Amazon CloudWatch metrics in the Prometheus exposition
format. Metric rules are declared in a YAML file and resolved against the
CloudWatch and Resource Groups Tagging APIs on every scrape.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
}
