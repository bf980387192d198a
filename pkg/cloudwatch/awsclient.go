package cloudwatch

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	cw "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	tagging "github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi"
	taggingtypes "github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// ClientOptions controls how the real AWS clients are built.
type ClientOptions struct {
	// Region is the AWS region to target. Empty falls back to the SDK's
	// default resolution chain (env, shared config, IMDS).
	Region string

	// RoleARN, when set, makes both clients assume the given IAM role via STS.
	RoleARN string
}

// Clients bundles the two upstream API handles one Config snapshot carries.
type Clients struct {
	Metrics MetricsAPI
	Tagging TaggingAPI
}

// NewClients builds SDK-backed CloudWatch and Tagging API clients.
func NewClients(ctx context.Context, opts ClientOptions) (*Clients, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	if opts.RoleARN != "" {
		stsClient := sts.NewFromConfig(cfg)
		provider := stscreds.NewAssumeRoleProvider(stsClient, opts.RoleARN,
			func(o *stscreds.AssumeRoleOptions) {
				o.RoleSessionName = "cloudwatch_exporter"
			})
		cfg.Credentials = aws.NewCredentialsCache(provider)
	}

	return &Clients{
		Metrics: &metricsClient{api: cw.NewFromConfig(cfg)},
		Tagging: &taggingClient{api: tagging.NewFromConfig(cfg)},
	}, nil
}

type metricsClient struct {
	api *cw.Client
}

var _ MetricsAPI = (*metricsClient)(nil)

func (c *metricsClient) ListMetrics(ctx context.Context, namespace, metricName string, dimensionNames []string) ([]DimensionSet, error) {
	input := &cw.ListMetricsInput{
		Namespace:  aws.String(namespace),
		MetricName: aws.String(metricName),
	}
	for _, name := range dimensionNames {
		input.Dimensions = append(input.Dimensions, cwtypes.DimensionFilter{
			Name: aws.String(name),
		})
	}

	var sets []DimensionSet
	paginator := cw.NewListMetricsPaginator(c.api, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, &APIError{Op: "ListMetrics", Err: err}
		}
		for _, m := range page.Metrics {
			ds := make(DimensionSet, 0, len(m.Dimensions))
			for _, d := range m.Dimensions {
				ds = append(ds, Dimension{
					Name:  aws.ToString(d.Name),
					Value: aws.ToString(d.Value),
				})
			}
			sets = append(sets, ds)
		}
	}
	return sets, nil
}

func (c *metricsClient) GetStatistics(ctx context.Context, req StatisticsRequest) (*Datapoint, error) {
	input := &cw.GetMetricStatisticsInput{
		Namespace:  aws.String(req.Namespace),
		MetricName: aws.String(req.MetricName),
		Period:     aws.Int32(int32(req.Period / time.Second)),
		StartTime:  aws.Time(req.StartTime),
		EndTime:    aws.Time(req.EndTime),
	}
	for _, d := range req.Dimensions {
		input.Dimensions = append(input.Dimensions, cwtypes.Dimension{
			Name:  aws.String(d.Name),
			Value: aws.String(d.Value),
		})
	}
	for _, s := range req.Statistics {
		input.Statistics = append(input.Statistics, cwtypes.Statistic(s))
	}
	input.ExtendedStatistics = append(input.ExtendedStatistics, req.ExtendedStatistics...)

	resp, err := c.api.GetMetricStatistics(ctx, input)
	if err != nil {
		return nil, &APIError{Op: "GetMetricStatistics", Err: err}
	}

	var latest *cwtypes.Datapoint
	for i := range resp.Datapoints {
		dp := &resp.Datapoints[i]
		if latest == nil || aws.ToTime(dp.Timestamp).After(aws.ToTime(latest.Timestamp)) {
			latest = dp
		}
	}
	if latest == nil {
		return nil, nil
	}

	out := &Datapoint{
		Timestamp: aws.ToTime(latest.Timestamp),
		Unit:      string(latest.Unit),
		Values:    make(map[Statistic]float64),
		Extended:  make(map[string]float64),
	}
	if latest.Sum != nil {
		out.Values[StatSum] = *latest.Sum
	}
	if latest.SampleCount != nil {
		out.Values[StatSampleCount] = *latest.SampleCount
	}
	if latest.Minimum != nil {
		out.Values[StatMinimum] = *latest.Minimum
	}
	if latest.Maximum != nil {
		out.Values[StatMaximum] = *latest.Maximum
	}
	if latest.Average != nil {
		out.Values[StatAverage] = *latest.Average
	}
	for name, value := range latest.ExtendedStatistics {
		out.Extended[name] = value
	}
	return out, nil
}

func (c *metricsClient) GetBulkStatistics(ctx context.Context, req BulkRequest) ([]BulkResult, error) {
	if len(req.Queries) > MaxBulkQueries {
		return nil, &APIError{
			Op:  "GetMetricData",
			Err: fmt.Errorf("%d queries exceed the per-call limit of %d", len(req.Queries), MaxBulkQueries),
		}
	}

	input := &cw.GetMetricDataInput{
		StartTime: aws.Time(req.StartTime),
		EndTime:   aws.Time(req.EndTime),
		ScanBy:    cwtypes.ScanByTimestampDescending,
	}
	for _, q := range req.Queries {
		dims := make([]cwtypes.Dimension, 0, len(q.Dimensions))
		for _, d := range q.Dimensions {
			dims = append(dims, cwtypes.Dimension{
				Name:  aws.String(d.Name),
				Value: aws.String(d.Value),
			})
		}
		input.MetricDataQueries = append(input.MetricDataQueries, cwtypes.MetricDataQuery{
			Id:    aws.String(q.ID),
			Label: aws.String(q.Label),
			MetricStat: &cwtypes.MetricStat{
				Metric: &cwtypes.Metric{
					Namespace:  aws.String(q.Namespace),
					MetricName: aws.String(q.MetricName),
					Dimensions: dims,
				},
				Period: aws.Int32(int32(q.Period / time.Second)),
				Stat:   aws.String(q.Stat),
			},
		})
	}

	var results []BulkResult
	paginator := cw.NewGetMetricDataPaginator(c.api, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, &APIError{Op: "GetMetricData", Err: err}
		}
		for _, r := range page.MetricDataResults {
			results = append(results, BulkResult{
				ID:         aws.ToString(r.Id),
				Label:      aws.ToString(r.Label),
				Timestamps: r.Timestamps,
				Values:     r.Values,
			})
		}
	}
	return results, nil
}

type taggingClient struct {
	api *tagging.Client
}

var _ TaggingAPI = (*taggingClient)(nil)

func (c *taggingClient) GetResources(ctx context.Context, tagFilters map[string][]string, resourceType, paginationToken string) ([]ResourceTagMapping, string, error) {
	input := &tagging.GetResourcesInput{
		ResourceTypeFilters: []string{resourceType},
	}
	if paginationToken != "" {
		input.PaginationToken = aws.String(paginationToken)
	}
	keys := make([]string, 0, len(tagFilters))
	for key := range tagFilters {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		input.TagFilters = append(input.TagFilters, taggingtypes.TagFilter{
			Key:    aws.String(key),
			Values: tagFilters[key],
		})
	}

	resp, err := c.api.GetResources(ctx, input)
	if err != nil {
		return nil, "", &APIError{Op: "GetResources", Err: err}
	}

	mappings := make([]ResourceTagMapping, 0, len(resp.ResourceTagMappingList))
	for _, m := range resp.ResourceTagMappingList {
		tags := make(map[string]string, len(m.Tags))
		for _, t := range m.Tags {
			tags[aws.ToString(t.Key)] = aws.ToString(t.Value)
		}
		mappings = append(mappings, ResourceTagMapping{
			ARN:  aws.ToString(m.ResourceARN),
			Tags: tags,
		})
	}
	return mappings, aws.ToString(resp.PaginationToken), nil
}
