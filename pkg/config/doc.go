// Package config loads and validates the exporter's declarative YAML
// configuration: the metric rules to collect, the AWS client settings, and the
// runtime reload/logging sections.
//
// # Loading
//
// A Source produces one immutable *Config per Load call. FileSource reads a
// YAML file; BytesSource parses an in-memory document (useful when embedding
// the collector as a library). Parsed configurations are never mutated; hot
// reload replaces the whole snapshot.
//
// # Rules
//
// Each entry under "metrics" becomes one MetricRule. Dimension selection is
// resolved at build time into a DimensionSelector variant (match-all, exact,
// or regex), making the exact/regex mutual exclusivity a construction-time
// fact rather than an ad-hoc nil check. Invalid rules fail loading with a
// *ConfigError.
//
// # Reload triggers
//
// Watcher (fsnotify, debounced) and Scheduler (cron) invoke an arbitrary
// reload callback when the watched file changes or the schedule fires. The
// callback owns the fallback-to-last-good semantics.
package config
