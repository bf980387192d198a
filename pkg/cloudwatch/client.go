package cloudwatch

import (
	"context"
	"fmt"
	"time"
)

// MaxBulkQueries is the hard CloudWatch limit on metric data queries per
// GetMetricData call.
const MaxBulkQueries = 500

// APIError wraps a failed call to one of the upstream AWS APIs. The exporter
// never retries these; a failed call surfaces as a single bad scrape.
type APIError struct {
	Op  string
	Err error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cloudwatch: %s: %v", e.Op, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// StatisticsRequest describes one GetStatistics call for a single
// dimension-set, collecting standard and extended statistics together.
type StatisticsRequest struct {
	Namespace          string
	MetricName         string
	Dimensions         DimensionSet
	Period             time.Duration
	StartTime          time.Time
	EndTime            time.Time
	Statistics         []Statistic
	ExtendedStatistics []string
}

// BulkRequest is one GetBulkStatistics call carrying up to MaxBulkQueries
// queries over a shared time window.
type BulkRequest struct {
	StartTime time.Time
	EndTime   time.Time
	Queries   []BulkQuery
}

// MetricsAPI is the CloudWatch capability the exporter consumes.
type MetricsAPI interface {
	// ListMetrics enumerates the dimension-value combinations actually
	// reporting data for the metric, restricted to the named dimension keys.
	// Implementations follow pagination to exhaustion.
	ListMetrics(ctx context.Context, namespace, metricName string, dimensionNames []string) ([]DimensionSet, error)

	// GetStatistics returns the most recent datapoint within the request
	// window, or nil if the window holds no data.
	GetStatistics(ctx context.Context, req StatisticsRequest) (*Datapoint, error)

	// GetBulkStatistics multiplexes many queries into one call. The request
	// must not exceed MaxBulkQueries queries; callers partition above that.
	GetBulkStatistics(ctx context.Context, req BulkRequest) ([]BulkResult, error)
}

// TaggingAPI is the Resource Groups Tagging capability the exporter consumes.
type TaggingAPI interface {
	// GetResources returns one page of tag-filtered resource mappings plus
	// the pagination token for the next page ("" when exhausted).
	GetResources(ctx context.Context, tagFilters map[string][]string, resourceType, paginationToken string) ([]ResourceTagMapping, string, error)
}
