// Package metrics provides the exporter's own Prometheus instrumentation:
// counters tracking how many calls and billed metrics the exporter issues
// against the CloudWatch and Resource Groups Tagging APIs.
//
// ExporterMetrics satisfies the collector's Observer interface, so the scrape
// pipeline records API usage without depending on a registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ExporterMetrics owns the exporter's self-instrumentation counters.
type ExporterMetrics struct {
	registry *prometheus.Registry

	apiRequests      *prometheus.CounterVec
	metricsRequested *prometheus.CounterVec
	taggingRequests  *prometheus.CounterVec
}

// New creates the self-metric counters and registers them, together with the
// standard Go and process collectors, on the given registry. A nil registry
// gets a fresh one.
func New(registry *prometheus.Registry) *ExporterMetrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	em := &ExporterMetrics{
		registry: registry,
		apiRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cloudwatch_requests_total",
				Help: "API requests made to CloudWatch",
			},
			[]string{"action", "namespace"},
		),
		metricsRequested: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cloudwatch_metrics_requested_total",
				Help: "Metrics requested by either GetMetricStatistics or GetMetricData",
			},
			[]string{"metric_name", "namespace"},
		),
		taggingRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tagging_api_requests_total",
				Help: "API requests made to the Resource Groups Tagging API",
			},
			[]string{"action", "resource_type"},
		),
	}

	registry.MustRegister(
		em.apiRequests,
		em.metricsRequested,
		em.taggingRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return em
}

// Registry returns the registry the counters live on. The CloudWatch
// collector itself is registered here too by the server wiring.
func (em *ExporterMetrics) Registry() *prometheus.Registry {
	return em.registry
}

// Handler returns the exposition handler for the registry.
func (em *ExporterMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(em.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}

// APIRequest records one CloudWatch API call.
func (em *ExporterMetrics) APIRequest(action, namespace string) {
	em.apiRequests.WithLabelValues(action, namespace).Inc()
}

// MetricsRequested records the billed metric count of a fetch.
func (em *ExporterMetrics) MetricsRequested(metricName, namespace string, count float64) {
	em.metricsRequested.WithLabelValues(metricName, namespace).Add(count)
}

// TaggingRequest records one Resource Groups Tagging API call.
func (em *ExporterMetrics) TaggingRequest(action, resourceType string) {
	em.taggingRequests.WithLabelValues(action, resourceType).Inc()
}
