// Cumulus is a Prometheus exporter for Amazon CloudWatch metrics.
//
// It polls the CloudWatch API on each Prometheus scrape, resolves which
// metric/dimension combinations exist for the configured rules (optionally
// narrowed by resource tags), fetches statistic values under the CloudWatch
// batching limits, and republishes them as labeled gauge samples.
//
// Usage:
//
//	# Start the exporter
//	cumulus run --config config.yaml --listen :9106
//
//	# Validate a configuration file
//	cumulus validate --config config.yaml
//
//	# Show version information
//	cumulus version
package main

func main() {
	Execute()
}
