package config

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"cumulus-hq/cumulus/pkg/cloudwatch"
)

// Built-in defaults applied when neither the document nor the rule overrides
// a setting. These mirror the CloudWatch ingestion delay of most namespaces.
const (
	defaultPeriod = 60 * time.Second
	defaultRange  = 600 * time.Second
	defaultDelay  = 600 * time.Second
)

// document is the raw YAML shape of a configuration file. Top-level settings
// are inherited by every rule that does not override them.
type document struct {
	Region  string `yaml:"region"`
	RoleARN string `yaml:"role_arn"`

	PeriodSeconds       *int  `yaml:"period_seconds"`
	RangeSeconds        *int  `yaml:"range_seconds"`
	DelaySeconds        *int  `yaml:"delay_seconds"`
	SetTimestamp        *bool `yaml:"set_timestamp"`
	UseGetMetricData    *bool `yaml:"use_get_metric_data"`
	ListMetricsCacheTTL *int  `yaml:"list_metrics_cache_ttl"`

	Reload  ReloadConfig  `yaml:"reload"`
	Logging LoggingConfig `yaml:"logging"`

	Metrics []ruleDocument `yaml:"metrics"`
}

type ruleDocument struct {
	AWSNamespace            string              `yaml:"aws_namespace"`
	AWSMetricName           string              `yaml:"aws_metric_name"`
	AWSDimensions           []string            `yaml:"aws_dimensions"`
	AWSDimensionSelect      map[string][]string `yaml:"aws_dimension_select"`
	AWSDimensionSelectRegex map[string][]string `yaml:"aws_dimension_select_regex"`
	AWSStatistics           []string            `yaml:"aws_statistics"`
	AWSExtendedStatistics   []string            `yaml:"aws_extended_statistics"`
	AWSTagSelect            *tagSelectDocument  `yaml:"aws_tag_select"`

	PeriodSeconds       *int  `yaml:"period_seconds"`
	RangeSeconds        *int  `yaml:"range_seconds"`
	DelaySeconds        *int  `yaml:"delay_seconds"`
	SetTimestamp        *bool `yaml:"set_timestamp"`
	UseGetMetricData    *bool `yaml:"use_get_metric_data"`
	ListMetricsCacheTTL *int  `yaml:"list_metrics_cache_ttl"`

	Help string `yaml:"help"`
}

type tagSelectDocument struct {
	ResourceTypeSelection string              `yaml:"resource_type_selection"`
	ResourceIDDimension   string              `yaml:"resource_id_dimension"`
	TagSelections         map[string][]string `yaml:"tag_selections"`
}

// Parse builds a Config from a YAML document. When clients is nil the real
// AWS clients are constructed from the document's region/role_arn settings;
// tests and embedders pass their own handles instead.
func Parse(data []byte, clients *cloudwatch.Clients) (*Config, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ConfigError{Reason: "cannot parse YAML: " + err.Error()}
	}

	if len(doc.Metrics) == 0 {
		return nil, &ConfigError{Reason: "must provide metrics"}
	}
	if doc.Reload.Schedule != "" {
		if _, err := cron.ParseStandard(doc.Reload.Schedule); err != nil {
			return nil, &ConfigError{
				Reason: fmt.Sprintf("invalid reload.schedule %q: %v", doc.Reload.Schedule, err),
			}
		}
	}

	cfg := &Config{
		Reload:          doc.Reload,
		Logging:         doc.Logging,
		DefaultCacheTTL: secondsOr(doc.ListMetricsCacheTTL, 0),
	}

	for i := range doc.Metrics {
		rule, err := buildRule(&doc, &doc.Metrics[i], cfg.DefaultCacheTTL)
		if err != nil {
			return nil, err
		}
		cfg.Rules = append(cfg.Rules, rule)
	}

	if clients == nil {
		var err error
		clients, err = cloudwatch.NewClients(context.Background(), cloudwatch.ClientOptions{
			Region:  doc.Region,
			RoleARN: doc.RoleARN,
		})
		if err != nil {
			return nil, err
		}
	}
	cfg.Metrics = clients.Metrics
	cfg.Tagging = clients.Tagging

	return cfg, nil
}

func buildRule(doc *document, rd *ruleDocument, defaultTTL time.Duration) (*MetricRule, error) {
	if rd.AWSNamespace == "" || rd.AWSMetricName == "" {
		return nil, &ConfigError{Reason: "must provide aws_namespace and aws_metric_name"}
	}
	if rd.AWSDimensionSelect != nil && rd.AWSDimensionSelectRegex != nil {
		return nil, &ConfigError{
			Reason: "must not provide aws_dimension_select and aws_dimension_select_regex at the same time",
		}
	}

	rule := &MetricRule{
		Namespace:          rd.AWSNamespace,
		MetricName:         rd.AWSMetricName,
		Dimensions:         rd.AWSDimensions,
		Selector:           MatchAll{},
		ExtendedStatistics: rd.AWSExtendedStatistics,
		Period:             secondsOr(rd.PeriodSeconds, secondsOr(doc.PeriodSeconds, defaultPeriod)),
		Range:              secondsOr(rd.RangeSeconds, secondsOr(doc.RangeSeconds, defaultRange)),
		Delay:              secondsOr(rd.DelaySeconds, secondsOr(doc.DelaySeconds, defaultDelay)),
		SetTimestamp:       boolOr(rd.SetTimestamp, boolOr(doc.SetTimestamp, true)),
		UseGetMetricData:   boolOr(rd.UseGetMetricData, boolOr(doc.UseGetMetricData, false)),
		CacheTTL:           secondsOr(rd.ListMetricsCacheTTL, defaultTTL),
		Help:               rd.Help,
	}

	if rd.AWSDimensionSelect != nil {
		rule.Selector = ExactSelect(rd.AWSDimensionSelect)
	}
	if rd.AWSDimensionSelectRegex != nil {
		sel, err := NewRegexSelect(rd.AWSDimensionSelectRegex)
		if err != nil {
			return nil, err
		}
		rule.Selector = sel
	}

	switch {
	case rd.AWSStatistics != nil:
		for _, s := range rd.AWSStatistics {
			stat, err := cloudwatch.ParseStatistic(s)
			if err != nil {
				return nil, &ConfigError{Reason: fmt.Sprintf("rule %s/%s: %v", rd.AWSNamespace, rd.AWSMetricName, err)}
			}
			rule.Statistics = append(rule.Statistics, stat)
		}
	case rd.AWSExtendedStatistics == nil:
		// Neither list given; collect all five standard statistics.
		rule.Statistics = append(rule.Statistics, cloudwatch.StandardStatistics...)
	}

	if rd.AWSTagSelect != nil {
		if rd.AWSTagSelect.ResourceTypeSelection == "" || rd.AWSTagSelect.ResourceIDDimension == "" {
			return nil, &ConfigError{Reason: "must provide resource_type_selection and resource_id_dimension"}
		}
		rule.TagSelect = &TagSelect{
			ResourceTypeSelection: rd.AWSTagSelect.ResourceTypeSelection,
			ResourceIDDimension:   rd.AWSTagSelect.ResourceIDDimension,
			TagSelections:         rd.AWSTagSelect.TagSelections,
		}
	}

	return rule, nil
}

func secondsOr(v *int, fallback time.Duration) time.Duration {
	if v == nil {
		return fallback
	}
	return time.Duration(*v) * time.Second
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
