package cloudwatch

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Statistic is one of the five standard CloudWatch statistics.
type Statistic string

const (
	StatSum         Statistic = "Sum"
	StatSampleCount Statistic = "SampleCount"
	StatMinimum     Statistic = "Minimum"
	StatMaximum     Statistic = "Maximum"
	StatAverage     Statistic = "Average"
)

// StandardStatistics lists all five standard statistics in the order the
// exporter emits their sample families.
var StandardStatistics = []Statistic{
	StatSum, StatSampleCount, StatMinimum, StatMaximum, StatAverage,
}

// ParseStatistic returns the Statistic named by s, or an error if s is not one
// of the five standard statistic names.
func ParseStatistic(s string) (Statistic, error) {
	switch Statistic(s) {
	case StatSum, StatSampleCount, StatMinimum, StatMaximum, StatAverage:
		return Statistic(s), nil
	}
	return "", fmt.Errorf("unknown statistic %q", s)
}

// IsStandard reports whether s names a standard statistic. Anything else is
// treated as an extended statistic (for example "p99").
func IsStandard(s string) bool {
	_, err := ParseStatistic(s)
	return err == nil
}

// Suffix returns the sample name suffix for the statistic, e.g. "_sample_count".
func (s Statistic) Suffix() string {
	switch s {
	case StatSum:
		return "_sum"
	case StatSampleCount:
		return "_sample_count"
	case StatMinimum:
		return "_minimum"
	case StatMaximum:
		return "_maximum"
	case StatAverage:
		return "_average"
	}
	return "_" + strings.ToLower(string(s))
}

// Dimension is one name/value pair of a CloudWatch dimension.
type Dimension struct {
	Name  string
	Value string
}

// DimensionSet identifies one concrete time series within a namespace/metric.
type DimensionSet []Dimension

// Key renders the set as "name=value" pairs joined by commas, sorted by the
// rendered pair. Two sets holding the same dimensions in different order
// produce the same key.
func (ds DimensionSet) Key() string {
	pairs := make([]string, len(ds))
	for i, d := range ds {
		pairs[i] = d.Name + "=" + d.Value
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

// Names returns the sorted dimension names of the set.
func (ds DimensionSet) Names() []string {
	names := make([]string, len(ds))
	for i, d := range ds {
		names[i] = d.Name
	}
	sort.Strings(names)
	return names
}

// Value returns the value of the named dimension and whether it is present.
func (ds DimensionSet) Value(name string) (string, bool) {
	for _, d := range ds {
		if d.Name == name {
			return d.Value, true
		}
	}
	return "", false
}

// HasNames reports whether the set carries exactly the given dimension names,
// regardless of order.
func (ds DimensionSet) HasNames(names []string) bool {
	if len(ds) != len(names) {
		return false
	}
	for _, n := range names {
		if _, ok := ds.Value(n); !ok {
			return false
		}
	}
	return true
}

// ResourceTagMapping associates one resource ARN with its tags. Mappings are
// fetched fresh on every scrape pass and never persisted.
type ResourceTagMapping struct {
	ARN  string
	Tags map[string]string
}

// Datapoint is the most recent datapoint returned for one statistics query.
type Datapoint struct {
	Timestamp time.Time
	Unit      string
	Values    map[Statistic]float64
	Extended  map[string]float64
}

// BulkQuery is one (stat, dimension-set) query inside a GetBulkStatistics
// request. ID only has to be unique within the request; Label carries the
// correlation information used to route results back.
type BulkQuery struct {
	ID         string
	Label      string
	Namespace  string
	MetricName string
	Dimensions DimensionSet
	Period     time.Duration
	Stat       string
}

// BulkResult is one result of a GetBulkStatistics call. Timestamps and Values
// are parallel and ordered newest first.
type BulkResult struct {
	ID         string
	Label      string
	Timestamps []time.Time
	Values     []float64
}
