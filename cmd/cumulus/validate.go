package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cumulus-hq/cumulus/pkg/cloudwatch"
	"cumulus-hq/cumulus/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Parse the configuration file and report any errors.

The file is checked the same way the run command checks it: rule inheritance
is resolved, select expressions are compiled, and the reload schedule is
parsed. No AWS API calls are made.

Examples:
  # Validate the default config
  cumulus validate

  # Validate a specific file
  cumulus validate --config /etc/cumulus/config.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := (&config.FileSource{Path: cfgFile, Clients: &cloudwatch.Clients{}}).Load()
	if err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	fmt.Printf("✓ Configuration valid\n")
	fmt.Printf("  Rules: %d\n", len(cfg.Rules))
	for _, rule := range cfg.Rules {
		fmt.Printf("  - %s/%s (dimensions: %v)\n", rule.Namespace, rule.MetricName, rule.Dimensions)
	}
	return nil
}
