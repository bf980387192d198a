package collector

import (
	"fmt"
	"time"

	"cumulus-hq/cumulus/pkg/cloudwatch"
)

// MetricRuleData holds the values fetched for one dimension-set of a rule.
type MetricRuleData struct {
	Timestamp       time.Time
	Unit            string
	StatisticValues map[cloudwatch.Statistic]float64
	ExtendedValues  map[string]float64
}

// Sample is one labeled gauge value. LabelNames and LabelValues are parallel;
// a zero Timestamp leaves the sample timestamp implicit.
type Sample struct {
	Name        string
	LabelNames  []string
	LabelValues []string
	Value       float64
	Timestamp   time.Time
}

// SampleFamily groups the samples sharing one metric name.
type SampleFamily struct {
	Name    string
	Help    string
	Samples []Sample
}

// ProtocolError reports a bulk-fetch result label that cannot be decoded.
// It indicates CloudWatch API contract drift and aborts the current rule
// rather than being retried.
type ProtocolError struct {
	Label string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("cannot decode result label %q", e.Label)
}

// Observer receives increments for upstream API usage. It decouples the
// pipeline from the process-wide metrics registry so the core stays testable.
type Observer interface {
	// APIRequest records one CloudWatch API call.
	APIRequest(action, namespace string)

	// MetricsRequested records the billed metric count of a fetch.
	MetricsRequested(metricName, namespace string, count float64)

	// TaggingRequest records one Resource Groups Tagging API call.
	TaggingRequest(action, resourceType string)
}

// NopObserver discards all increments.
type NopObserver struct{}

func (NopObserver) APIRequest(string, string) {}

func (NopObserver) MetricsRequested(string, string, float64) {}

func (NopObserver) TaggingRequest(string, string) {}
