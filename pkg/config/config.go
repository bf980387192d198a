package config

import (
	"regexp"
	"time"

	"cumulus-hq/cumulus/pkg/cloudwatch"
)

// ConfigError reports a malformed or contradictory configuration. It is fatal
// on the first load and logged-and-ignored on reload.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + e.Reason
}

// Config is one immutable snapshot of the exporter configuration plus the two
// upstream API handles. Snapshots are replaced wholesale on reload, never
// mutated in place.
type Config struct {
	Rules []*MetricRule

	Metrics cloudwatch.MetricsAPI
	Tagging cloudwatch.TaggingAPI

	Reload  ReloadConfig
	Logging LoggingConfig

	// DefaultCacheTTL is the global dimension-cache TTL rules inherit when
	// they do not override list_metrics_cache_ttl.
	DefaultCacheTTL time.Duration
}

// ReloadConfig controls the automatic configuration reload triggers.
type ReloadConfig struct {
	// Watch enables the fsnotify file watcher on the config file.
	Watch bool `yaml:"watch"`

	// Schedule is an optional cron expression for periodic reloads,
	// e.g. "@every 10m" or "0 * * * *". Empty disables scheduled reloads.
	Schedule string `yaml:"schedule"`
}

// LoggingConfig selects the slog level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricRule describes one CloudWatch metric to collect. Rules are immutable
// after construction.
type MetricRule struct {
	Namespace  string
	MetricName string

	// Dimensions names the dimension keys a reporting time series must carry
	// to be collected. Empty means the dimensionless series.
	Dimensions []string

	// Selector filters enumerated dimension-sets. Never nil; rules without a
	// select clause carry the match-all selector.
	Selector DimensionSelector

	Statistics         []cloudwatch.Statistic
	ExtendedStatistics []string

	Period time.Duration
	Range  time.Duration
	Delay  time.Duration

	// SetTimestamp attaches the upstream datapoint timestamp to samples.
	SetTimestamp bool

	// UseGetMetricData selects the bulk multiplexed fetch strategy instead of
	// one GetMetricStatistics call per dimension-set.
	UseGetMetricData bool

	TagSelect *TagSelect

	// CacheTTL bounds how long resolved dimension-sets may be served from the
	// cache. Zero disables caching for the rule.
	CacheTTL time.Duration

	Help string
}

// TagSelect narrows a rule to resources matching tag filters, injecting the
// resource id extracted from each ARN as a dimension value source.
type TagSelect struct {
	ResourceTypeSelection string
	ResourceIDDimension   string
	TagSelections         map[string][]string
}

// DimensionSelector decides whether an enumerated dimension-set is kept.
// Dimensions not named by the selector are left unconstrained.
type DimensionSelector interface {
	Match(ds cloudwatch.DimensionSet) bool
}

// MatchAll keeps every dimension-set. It is the selector of rules without a
// select clause.
type MatchAll struct{}

func (MatchAll) Match(cloudwatch.DimensionSet) bool { return true }

// ExactSelect keeps dimension-sets whose named dimensions have a value in the
// corresponding allow-list, compared by exact string match.
type ExactSelect map[string][]string

func (s ExactSelect) Match(ds cloudwatch.DimensionSet) bool {
	for _, d := range ds {
		allowed, constrained := s[d.Name]
		if !constrained {
			continue
		}
		found := false
		for _, v := range allowed {
			if v == d.Value {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// RegexSelect keeps dimension-sets whose named dimensions have a value matched
// by at least one pattern. Patterns match anywhere in the value; they are not
// anchored to the whole string.
type RegexSelect map[string][]*regexp.Regexp

func (s RegexSelect) Match(ds cloudwatch.DimensionSet) bool {
	for _, d := range ds {
		patterns, constrained := s[d.Name]
		if !constrained {
			continue
		}
		found := false
		for _, p := range patterns {
			if p.MatchString(d.Value) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// NewRegexSelect compiles the patterns of an aws_dimension_select_regex
// clause. A pattern that does not compile fails with *ConfigError.
func NewRegexSelect(raw map[string][]string) (RegexSelect, error) {
	sel := make(RegexSelect, len(raw))
	for name, patterns := range raw {
		for _, pattern := range patterns {
			re, err := regexp.Compile(pattern)
			if err != nil {
				return nil, &ConfigError{
					Reason: "invalid aws_dimension_select_regex pattern " + pattern + " for dimension " + name + ": " + err.Error(),
				}
			}
			sel[name] = append(sel[name], re)
		}
	}
	return sel, nil
}
