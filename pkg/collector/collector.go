package collector

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"cumulus-hq/cumulus/pkg/cloudwatch"
	"cumulus-hq/cumulus/pkg/config"
)

// brokenDynamoMetrics are DynamoDB metrics CloudWatch reports under the same
// name for tables and their global secondary indexes. Rules requesting the
// GlobalSecondaryIndexName dimension get an "_index" base name to keep the
// two apart.
var brokenDynamoMetrics = map[string]bool{
	"ConsumedReadCapacityUnits":     true,
	"ConsumedWriteCapacityUnits":    true,
	"ProvisionedReadCapacityUnits":  true,
	"ProvisionedWriteCapacityUnits": true,
	"ReadThrottleEvents":            true,
	"WriteThrottleEvents":           true,
}

// Collector drives scrape passes over the active configuration snapshot.
// It is safe for concurrent use: passes capture the snapshot once at start,
// and Reload swaps snapshots atomically.
type Collector struct {
	source   config.Source
	observer Observer
	logger   *slog.Logger

	state atomic.Pointer[collectorState]
}

// collectorState pairs one configuration snapshot with the dimension source
// (and cache) built for it. Replaced wholesale on successful reload, so the
// cache lifetime matches the snapshot lifetime.
type collectorState struct {
	cfg  *config.Config
	dims DimensionSource
}

// New creates a Collector and performs the first configuration load. A first
// load failure has no previous snapshot to fall back to and is returned to
// the caller.
func New(source config.Source, observer Observer) (*Collector, error) {
	if observer == nil {
		observer = NopObserver{}
	}
	c := &Collector{
		source:   source,
		observer: observer,
		logger:   slog.Default().With("component", "collector"),
	}
	cfg, err := source.Load()
	if err != nil {
		return nil, err
	}
	c.state.Store(c.buildState(cfg))
	return c, nil
}

func (c *Collector) buildState(cfg *config.Config) *collectorState {
	return &collectorState{
		cfg:  cfg,
		dims: NewCachingDimensionSource(NewDimensionSource(cfg.Metrics, c.observer)),
	}
}

// Reload loads a fresh snapshot from the source. On failure the previous
// snapshot, dimension cache included, stays in force and the error is
// returned for the trigger to report; the collector keeps serving.
func (c *Collector) Reload() error {
	cfg, err := c.source.Load()
	if err != nil {
		c.logger.Warn("unable to load configuration, keeping previous", "error", err)
		return err
	}
	c.state.Store(c.buildState(cfg))
	c.logger.Info("configuration reloaded", "rules", len(cfg.Rules))
	return nil
}

// Rules returns the rules of the active snapshot.
func (c *Collector) Rules() []*config.MetricRule {
	return c.state.Load().cfg.Rules
}

// Config returns the active configuration snapshot. Callers must treat it as
// read-only; a reload replaces the snapshot rather than mutating it.
func (c *Collector) Config() *config.Config {
	return c.state.Load().cfg
}

// Collect runs one scrape pass and returns the resulting sample families. It
// never fails: a failure inside the pass truncates the output to the families
// completed before it and sets cloudwatch_exporter_scrape_error to 1. The
// meta families are always appended last.
func (c *Collector) Collect(ctx context.Context) []SampleFamily {
	st := c.state.Load()
	start := time.Now()

	families, err := c.scrape(ctx, st)
	errValue := 0.0
	if err != nil {
		errValue = 1
		c.logger.Warn("CloudWatch scrape failed", "error", err)
	}

	families = append(families, SampleFamily{
		Name: "cloudwatch_exporter_scrape_duration_seconds",
		Help: "Time this CloudWatch scrape took, in seconds.",
		Samples: []Sample{{
			Name:  "cloudwatch_exporter_scrape_duration_seconds",
			Value: time.Since(start).Seconds(),
		}},
	}, SampleFamily{
		Name: "cloudwatch_exporter_scrape_error",
		Help: "Non-zero if this scrape failed.",
		Samples: []Sample{{
			Name:  "cloudwatch_exporter_scrape_error",
			Value: errValue,
		}},
	})
	return families
}

func (c *Collector) scrape(ctx context.Context, st *collectorState) ([]SampleFamily, error) {
	var families []SampleFamily
	var infoSamples []Sample
	publishedARNs := make(map[string]bool)
	now := time.Now()

	for _, rule := range st.cfg.Rules {
		ruleFamilies, ruleInfo, err := c.scrapeRule(ctx, st, rule, now, publishedARNs)
		if err != nil {
			return families, err
		}
		families = append(families, ruleFamilies...)
		infoSamples = append(infoSamples, ruleInfo...)
	}

	families = append(families, SampleFamily{
		Name:    "aws_resource_info",
		Help:    "AWS information available for resource",
		Samples: infoSamples,
	})
	return families, nil
}

func (c *Collector) scrapeRule(ctx context.Context, st *collectorState, rule *config.MetricRule, now time.Time, publishedARNs map[string]bool) ([]SampleFamily, []Sample, error) {
	baseName := safeName(strings.ToLower(rule.Namespace) + "_" + toSnakeCase(rule.MetricName))
	jobName := safeName(strings.ToLower(rule.Namespace))
	if isBrokenDynamoRule(rule) {
		baseName += "_index"
	}

	mappings, err := c.resourceTagMappings(ctx, st, rule)
	if err != nil {
		return nil, nil, err
	}
	tagResourceIDs := make([]string, 0, len(mappings))
	for _, m := range mappings {
		tagResourceIDs = append(tagResourceIDs, extractResourceIDFromARN(m.ARN))
	}

	sets, err := st.dims.Get(ctx, rule, tagResourceIDs)
	if err != nil {
		return nil, nil, err
	}

	var getter DataGetter
	if rule.UseGetMetricData {
		getter, err = newMetricDataGetter(ctx, st.cfg.Metrics, now, rule, c.observer, sets)
	} else {
		getter, err = newStatisticsDataGetter(ctx, st.cfg.Metrics, now, rule, c.observer, sets)
	}
	if err != nil {
		return nil, nil, err
	}

	unit := ""
	baseSamples := make(map[cloudwatch.Statistic][]Sample)
	extendedSamples := make(map[string][]Sample)
	var extendedOrder []string

	for _, ds := range sets {
		data, ok := getter.Get(ds)
		if !ok {
			continue
		}
		unit = data.Unit

		labelNames := []string{"job", "instance"}
		labelValues := []string{jobName, ""}
		for _, d := range ds {
			labelNames = append(labelNames, safeLabelName(toSnakeCase(d.Name)))
			labelValues = append(labelValues, d.Value)
		}

		var timestamp time.Time
		if rule.SetTimestamp {
			timestamp = data.Timestamp
		}

		for _, stat := range cloudwatch.StandardStatistics {
			value, ok := data.StatisticValues[stat]
			if !ok {
				continue
			}
			baseSamples[stat] = append(baseSamples[stat], Sample{
				Name:        baseName + stat.Suffix(),
				LabelNames:  labelNames,
				LabelValues: labelValues,
				Value:       value,
				Timestamp:   timestamp,
			})
		}

		for _, name := range extendedStatNames(rule, data) {
			value, ok := data.ExtendedValues[name]
			if !ok {
				continue
			}
			if _, seen := extendedSamples[name]; !seen {
				extendedOrder = append(extendedOrder, name)
			}
			extendedSamples[name] = append(extendedSamples[name], Sample{
				Name:        baseName + "_" + safeName(toSnakeCase(name)),
				LabelNames:  labelNames,
				LabelValues: labelValues,
				Value:       value,
				Timestamp:   timestamp,
			})
		}
	}

	var families []SampleFamily
	for _, stat := range cloudwatch.StandardStatistics {
		samples := baseSamples[stat]
		if len(samples) == 0 {
			continue
		}
		families = append(families, SampleFamily{
			Name:    baseName + stat.Suffix(),
			Help:    helpFor(rule, unit, string(stat)),
			Samples: samples,
		})
	}
	for _, name := range extendedOrder {
		families = append(families, SampleFamily{
			Name:    baseName + "_" + safeName(toSnakeCase(name)),
			Help:    helpFor(rule, unit, name),
			Samples: extendedSamples[name],
		})
	}

	var infoSamples []Sample
	for _, m := range mappings {
		if publishedARNs[m.ARN] {
			continue
		}
		publishedARNs[m.ARN] = true
		infoSamples = append(infoSamples, resourceInfoSample(rule, jobName, m))
	}

	return families, infoSamples, nil
}

// resourceTagMappings pages through the tag API until the continuation token
// runs out. Rules without a tag selection yield no mappings.
func (c *Collector) resourceTagMappings(ctx context.Context, st *collectorState, rule *config.MetricRule) ([]cloudwatch.ResourceTagMapping, error) {
	ts := rule.TagSelect
	if ts == nil {
		return nil, nil
	}

	var mappings []cloudwatch.ResourceTagMapping
	token := ""
	for {
		page, next, err := st.cfg.Tagging.GetResources(ctx, ts.TagSelections, ts.ResourceTypeSelection, token)
		c.observer.TaggingRequest("getResources", ts.ResourceTypeSelection)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, page...)
		if next == "" {
			return mappings, nil
		}
		token = next
	}
}

// resourceInfoSample builds one aws_resource_info sample. Tag keys keep their
// case and get a "tag_" prefix to avoid colliding with dimension labels.
func resourceInfoSample(rule *config.MetricRule, jobName string, m cloudwatch.ResourceTagMapping) Sample {
	labelNames := []string{"job", "instance", "arn",
		safeLabelName(toSnakeCase(rule.TagSelect.ResourceIDDimension))}
	labelValues := []string{jobName, "", m.ARN, extractResourceIDFromARN(m.ARN)}

	for _, key := range sortedKeys(m.Tags) {
		labelNames = append(labelNames, "tag_"+safeLabelName(key))
		labelValues = append(labelValues, m.Tags[key])
	}
	return Sample{
		Name:        "aws_resource_info",
		LabelNames:  labelNames,
		LabelValues: labelValues,
		Value:       1,
	}
}

// extendedStatNames returns the extended statistic names to emit for a
// dimension-set, in rule declaration order, falling back to the fetched map
// for values the rule did not list explicitly.
func extendedStatNames(rule *config.MetricRule, data MetricRuleData) []string {
	if len(rule.ExtendedStatistics) > 0 {
		return rule.ExtendedStatistics
	}
	return sortedKeys(data.ExtendedValues)
}

func isBrokenDynamoRule(rule *config.MetricRule) bool {
	if rule.Namespace != "AWS/DynamoDB" || !brokenDynamoMetrics[rule.MetricName] {
		return false
	}
	for _, d := range rule.Dimensions {
		if d == "GlobalSecondaryIndexName" {
			return true
		}
	}
	return false
}

func helpFor(rule *config.MetricRule, unit, statistic string) string {
	if rule.Help != "" {
		return rule.Help
	}
	return fmt.Sprintf("CloudWatch metric %s %s Dimensions: [%s] Statistic: %s Unit: %s",
		rule.Namespace, rule.MetricName, strings.Join(rule.Dimensions, ", "), statistic, unit)
}

// sortedKeys keeps output stable; map iteration order is random.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
