package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func counterValue(t *testing.T, registry *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	mfs, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
	metric:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metric
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestCounters(t *testing.T) {
	em := New(nil)

	em.APIRequest("listMetrics", "AWS/ELB")
	em.APIRequest("listMetrics", "AWS/ELB")
	em.APIRequest("getMetricData", "AWS/SQS")
	em.MetricsRequested("RequestCount", "AWS/ELB", 2)
	em.TaggingRequest("getResources", "dynamodb:table")

	if v := counterValue(t, em.Registry(), "cloudwatch_requests_total",
		map[string]string{"action": "listMetrics", "namespace": "AWS/ELB"}); v != 2 {
		t.Errorf("cloudwatch_requests_total{listMetrics} = %v, want 2", v)
	}
	if v := counterValue(t, em.Registry(), "cloudwatch_requests_total",
		map[string]string{"action": "getMetricData", "namespace": "AWS/SQS"}); v != 1 {
		t.Errorf("cloudwatch_requests_total{getMetricData} = %v, want 1", v)
	}
	if v := counterValue(t, em.Registry(), "cloudwatch_metrics_requested_total",
		map[string]string{"metric_name": "RequestCount", "namespace": "AWS/ELB"}); v != 2 {
		t.Errorf("cloudwatch_metrics_requested_total = %v, want 2", v)
	}
	if v := counterValue(t, em.Registry(), "tagging_api_requests_total",
		map[string]string{"action": "getResources", "resource_type": "dynamodb:table"}); v != 1 {
		t.Errorf("tagging_api_requests_total = %v, want 1", v)
	}
}

func TestHandlerExposition(t *testing.T) {
	em := New(nil)
	em.APIRequest("listMetrics", "AWS/ELB")

	rec := httptest.NewRecorder()
	em.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "cloudwatch_requests_total") {
		t.Error("exposition lacks cloudwatch_requests_total")
	}
	// Standard process/runtime collectors ride along on the same registry.
	if !strings.Contains(body, "go_goroutines") {
		t.Error("exposition lacks go_goroutines")
	}
}

func TestProvidedRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()
	em := New(registry)
	if em.Registry() != registry {
		t.Error("Registry() should return the provided registry")
	}
}
