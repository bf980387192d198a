package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"cumulus-hq/cumulus/pkg/cloudwatch"
	"cumulus-hq/cumulus/pkg/collector"
	"cumulus-hq/cumulus/pkg/config"
	"cumulus-hq/cumulus/pkg/server"
	"cumulus-hq/cumulus/pkg/telemetry/logging"
	"cumulus-hq/cumulus/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the exporter server",
	Long: `Start the exporter server with the specified configuration.

The server resolves the configured metric rules against CloudWatch on every
scrape of /metrics and serves the results in the Prometheus exposition format.

Examples:
  # Start with default config
  cumulus run

  # Start with custom config
  cumulus run --config /etc/cumulus/config.yaml

  # Override listen address
  cumulus run --listen 0.0.0.0:9106

  # Validate config without starting server
  cumulus run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Parse the file once without AWS clients to validate it and pick up the
	// logging settings before any component logger is created.
	preview, err := (&config.FileSource{Path: cfgFile, Clients: &cloudwatch.Clients{}}).Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if runFlags.dryRun {
		fmt.Printf("✓ Configuration valid (%d rules)\n", len(preview.Rules))
		return nil
	}

	logLevel := preview.Logging.Level
	if runFlags.logLevel != "" {
		logLevel = runFlags.logLevel
	}
	if _, err := logging.Setup(logLevel, preview.Logging.Format, nil); err != nil {
		return err
	}

	slog.Info("starting cumulus",
		"version", Version,
		"config", cfgFile,
		"rules", len(preview.Rules),
	)

	// Real load, with SDK clients built from the document's region and role.
	source := &config.FileSource{Path: cfgFile}
	em := metrics.New(nil)
	coll, err := collector.New(source, em)
	if err != nil {
		return fmt.Errorf("failed to initialize collector: %w", err)
	}
	em.Registry().MustRegister(coll.PrometheusCollector())

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	reload := coll.Config().Reload
	if reload.Watch {
		watcher, err := config.NewWatcher(cfgFile, 0)
		if err != nil {
			return fmt.Errorf("failed to start config watcher: %w", err)
		}
		go func() {
			if err := watcher.Watch(ctx, coll.Reload); err != nil {
				slog.Error("config watcher stopped", "error", err)
			}
		}()
	}
	if reload.Schedule != "" {
		if err := config.NewScheduler(reload.Schedule).Start(ctx, coll.Reload); err != nil {
			return fmt.Errorf("failed to start reload scheduler: %w", err)
		}
	}

	srv := server.New(server.Config{ListenAddress: runFlags.listenAddress}, em.Handler(), coll)
	return srv.Start(ctx)
}
