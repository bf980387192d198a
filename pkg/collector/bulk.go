package collector

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"cumulus-hq/cumulus/pkg/cloudwatch"
	"cumulus-hq/cumulus/pkg/config"
)

// maxStatsPerBilledRequest is how many statistics CloudWatch bills as one
// requested metric on GetMetricData.
const maxStatsPerBilledRequest = 5

// labelFor encodes the correlation label of one (stat, dimension-set) query.
// The query id sent alongside is opaque; this label is what routes results
// back to their dimension-set.
func labelFor(stat string, ds cloudwatch.DimensionSet) string {
	return stat + "/" + ds.Key()
}

// decodeLabel splits a correlation label on its first "/" into the stat
// string and the dimension-set key. A label without the separator violates
// the encoding contract and yields a *ProtocolError.
func decodeLabel(label string) (stat, dimsKey string, err error) {
	i := strings.Index(label, "/")
	if i < 0 {
		return "", "", &ProtocolError{Label: label}
	}
	return label[:i], label[i+1:], nil
}

// partition splits items into chunks of at most size, preserving order.
func partition[T any](items []T, size int) [][]T {
	var chunks [][]T
	for len(items) > size {
		chunks = append(chunks, items[:size])
		items = items[size:]
	}
	if len(items) > 0 {
		chunks = append(chunks, items)
	}
	return chunks
}

// metricDataGetter fetches in bulk: one query per (stat, dimension-set) pair,
// multiplexed into GetMetricData calls of at most cloudwatch.MaxBulkQueries
// queries each.
type metricDataGetter struct {
	results map[string]MetricRuleData
}

func newMetricDataGetter(ctx context.Context, client cloudwatch.MetricsAPI, now time.Time, rule *config.MetricRule, observer Observer, sets []cloudwatch.DimensionSet) (*metricDataGetter, error) {
	// Standard and extended statistics are treated uniformly as stat strings.
	stats := make([]string, 0, len(rule.Statistics)+len(rule.ExtendedStatistics))
	for _, s := range rule.Statistics {
		stats = append(stats, string(s))
	}
	stats = append(stats, rule.ExtendedStatistics...)

	queries := make([]cloudwatch.BulkQuery, 0, len(stats)*len(sets))
	for _, stat := range stats {
		for _, ds := range sets {
			queries = append(queries, cloudwatch.BulkQuery{
				ID:         queryID(),
				Label:      labelFor(stat, ds),
				Namespace:  rule.Namespace,
				MetricName: rule.MetricName,
				Dimensions: ds,
				Period:     rule.Period,
				Stat:       stat,
			})
		}
	}

	end := now.Add(-rule.Delay)
	start := end.Add(-rule.Range)

	var results []cloudwatch.BulkResult
	for _, batch := range partition(queries, cloudwatch.MaxBulkQueries) {
		page, err := client.GetBulkStatistics(ctx, cloudwatch.BulkRequest{
			StartTime: start,
			EndTime:   end,
			Queries:   batch,
		})
		observer.APIRequest("getMetricData", rule.Namespace)
		if err != nil {
			return nil, err
		}
		results = append(results, page...)
	}
	observer.MetricsRequested(rule.MetricName, rule.Namespace,
		math.Ceil(float64(len(stats))/maxStatsPerBilledRequest))

	g := &metricDataGetter{results: make(map[string]MetricRuleData)}
	if err := g.merge(results); err != nil {
		return nil, err
	}
	return g, nil
}

// merge groups decoded results by dimension-set key, taking only the first
// (most recent) timestamp/value pair of each result.
func (g *metricDataGetter) merge(results []cloudwatch.BulkResult) error {
	for _, r := range results {
		if len(r.Timestamps) == 0 || len(r.Values) == 0 {
			continue
		}
		stat, dimsKey, err := decodeLabel(r.Label)
		if err != nil {
			return err
		}
		data, ok := g.results[dimsKey]
		if !ok {
			data = MetricRuleData{
				Timestamp:       r.Timestamps[0],
				Unit:            "N/A",
				StatisticValues: make(map[cloudwatch.Statistic]float64),
				ExtendedValues:  make(map[string]float64),
			}
		}
		if s, perr := cloudwatch.ParseStatistic(stat); perr == nil {
			data.StatisticValues[s] = r.Values[0]
		} else {
			data.ExtendedValues[stat] = r.Values[0]
		}
		g.results[dimsKey] = data
	}
	return nil
}

func (g *metricDataGetter) Get(ds cloudwatch.DimensionSet) (MetricRuleData, bool) {
	data, ok := g.results[ds.Key()]
	return data, ok
}

// queryID returns an opaque id unique within a request. CloudWatch requires
// ids to start with a lowercase letter.
func queryID() string {
	return "i" + strings.ReplaceAll(uuid.New().String(), "-", "")
}
