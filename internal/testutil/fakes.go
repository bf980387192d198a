// Package testutil provides in-memory fakes for the AWS capability
// interfaces used across package tests.
package testutil

import (
	"context"
	"sync"

	"cumulus-hq/cumulus/pkg/cloudwatch"
)

// FakeMetricsAPI is a scriptable cloudwatch.MetricsAPI. Zero value is usable;
// unset responses return empty data.
type FakeMetricsAPI struct {
	mu sync.Mutex

	// ListMetricsResults maps "namespace/metricName" to the dimension-sets
	// the enumeration returns.
	ListMetricsResults map[string][]cloudwatch.DimensionSet

	// Datapoints maps "namespace/metricName/dimsKey" to the datapoint a
	// GetStatistics call returns.
	Datapoints map[string]*cloudwatch.Datapoint

	// BulkResults maps a query Label to the result returned for it. Queries
	// without an entry produce no result, mirroring series with no data.
	BulkResults map[string]cloudwatch.BulkResult

	// Errs, when set, fails the named call ("ListMetrics", "GetStatistics",
	// "GetBulkStatistics").
	Errs map[string]error

	// Call log.
	ListMetricsCalls int
	StatisticsCalls  []cloudwatch.StatisticsRequest
	BulkCalls        [][]cloudwatch.BulkQuery
}

var _ cloudwatch.MetricsAPI = (*FakeMetricsAPI)(nil)

func (f *FakeMetricsAPI) ListMetrics(ctx context.Context, namespace, metricName string, dimensionNames []string) ([]cloudwatch.DimensionSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Errs["ListMetrics"]; err != nil {
		return nil, err
	}
	f.ListMetricsCalls++
	return f.ListMetricsResults[namespace+"/"+metricName], nil
}

func (f *FakeMetricsAPI) GetStatistics(ctx context.Context, req cloudwatch.StatisticsRequest) (*cloudwatch.Datapoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Errs["GetStatistics"]; err != nil {
		return nil, err
	}
	f.StatisticsCalls = append(f.StatisticsCalls, req)
	return f.Datapoints[req.Namespace+"/"+req.MetricName+"/"+req.Dimensions.Key()], nil
}

func (f *FakeMetricsAPI) GetBulkStatistics(ctx context.Context, req cloudwatch.BulkRequest) ([]cloudwatch.BulkResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Errs["GetBulkStatistics"]; err != nil {
		return nil, err
	}
	f.BulkCalls = append(f.BulkCalls, req.Queries)
	var results []cloudwatch.BulkResult
	for _, q := range req.Queries {
		if r, ok := f.BulkResults[q.Label]; ok {
			r.ID = q.ID
			r.Label = q.Label
			results = append(results, r)
		}
	}
	return results, nil
}

// FakeTaggingAPI is a scriptable cloudwatch.TaggingAPI serving its mappings
// one per page to exercise pagination.
type FakeTaggingAPI struct {
	mu sync.Mutex

	Mappings []cloudwatch.ResourceTagMapping
	Err      error

	GetResourcesCalls int
}

var _ cloudwatch.TaggingAPI = (*FakeTaggingAPI)(nil)

func (f *FakeTaggingAPI) GetResources(ctx context.Context, tagFilters map[string][]string, resourceType, paginationToken string) ([]cloudwatch.ResourceTagMapping, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, "", f.Err
	}
	f.GetResourcesCalls++

	page := 0
	if paginationToken != "" {
		page = int(paginationToken[0] - '0')
	}
	if page >= len(f.Mappings) {
		return nil, "", nil
	}
	next := ""
	if page+1 < len(f.Mappings) {
		next = string(rune('0' + page + 1))
	}
	return f.Mappings[page : page+1], next, nil
}
