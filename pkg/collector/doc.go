// Package collector implements the CloudWatch scrape pipeline: resolving
// which dimension combinations exist for each configured rule, fetching
// statistic values for them under the CloudWatch API batching limits, and
// merging the results into gauge sample families.
//
// # Pipeline
//
// One scrape pass walks the rules of the active configuration snapshot in
// declaration order. For each rule it resolves tag mappings, resolves
// dimension-sets (optionally through the TTL cache), fetches data with the
// strategy the rule selects (one GetMetricStatistics call per combination, or
// multiplexed GetMetricData batches), and emits one sample family per
// statistic plus one family per extended statistic. The pass is wrapped with
// the cloudwatch_exporter_scrape_duration_seconds and
// cloudwatch_exporter_scrape_error meta families and never panics or returns
// an error to the exposition layer.
//
// # Concurrency
//
// Scrape passes may run concurrently (overlapping HTTP polls). Each pass
// captures the configuration snapshot once at its start; reloads swap an
// atomic pointer and never disturb in-flight passes. The dimension cache is
// the only other shared mutable structure and replaces entries atomically.
package collector
