package collector

import (
	"context"
	"time"

	"cumulus-hq/cumulus/pkg/cloudwatch"
	"cumulus-hq/cumulus/pkg/config"
)

// DataGetter serves the fetched values of one rule for one scrape pass.
// Constructing a getter performs the fetch eagerly; Get afterwards is a pure
// map read.
type DataGetter interface {
	Get(ds cloudwatch.DimensionSet) (MetricRuleData, bool)
}

// statisticsDataGetter fetches per combination: one GetMetricStatistics call
// per dimension-set, carrying the rule's standard and extended statistics on
// the same call. Dimension-sets without a datapoint in the window are absent
// from the result map.
type statisticsDataGetter struct {
	results map[string]MetricRuleData
}

func newStatisticsDataGetter(ctx context.Context, client cloudwatch.MetricsAPI, now time.Time, rule *config.MetricRule, observer Observer, sets []cloudwatch.DimensionSet) (*statisticsDataGetter, error) {
	end := now.Add(-rule.Delay)
	start := end.Add(-rule.Range)

	g := &statisticsDataGetter{results: make(map[string]MetricRuleData, len(sets))}
	for _, ds := range sets {
		dp, err := client.GetStatistics(ctx, cloudwatch.StatisticsRequest{
			Namespace:          rule.Namespace,
			MetricName:         rule.MetricName,
			Dimensions:         ds,
			Period:             rule.Period,
			StartTime:          start,
			EndTime:            end,
			Statistics:         rule.Statistics,
			ExtendedStatistics: rule.ExtendedStatistics,
		})
		observer.APIRequest("getMetricStatistics", rule.Namespace)
		if err != nil {
			return nil, err
		}
		observer.MetricsRequested(rule.MetricName, rule.Namespace, 1)
		if dp == nil {
			continue
		}
		g.results[ds.Key()] = MetricRuleData{
			Timestamp:       dp.Timestamp,
			Unit:            dp.Unit,
			StatisticValues: dp.Values,
			ExtendedValues:  dp.Extended,
		}
	}
	return g, nil
}

func (g *statisticsDataGetter) Get(ds cloudwatch.DimensionSet) (MetricRuleData, bool) {
	data, ok := g.results[ds.Key()]
	return data, ok
}
