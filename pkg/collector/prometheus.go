package collector

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// promAdapter exposes a Collector on a Prometheus registry. It is an
// unchecked collector: Describe sends nothing, since the sample families
// depend entirely on the active configuration and upstream responses.
type promAdapter struct {
	collector *Collector
}

// PrometheusCollector returns a prometheus.Collector view of c, suitable for
// prometheus.Registry registration.
func (c *Collector) PrometheusCollector() prometheus.Collector {
	return &promAdapter{collector: c}
}

func (a *promAdapter) Describe(chan<- *prometheus.Desc) {}

func (a *promAdapter) Collect(ch chan<- prometheus.Metric) {
	for _, family := range a.collector.Collect(context.Background()) {
		for _, s := range family.Samples {
			desc := prometheus.NewDesc(s.Name, family.Help, s.LabelNames, nil)
			m, err := prometheus.NewConstMetric(desc, prometheus.GaugeValue, s.Value, s.LabelValues...)
			if err != nil {
				a.collector.logger.Error("dropping malformed sample", "name", s.Name, "error", err)
				continue
			}
			if !s.Timestamp.IsZero() {
				m = prometheus.NewMetricWithTimestamp(s.Timestamp, m)
			}
			ch <- m
		}
	}
}
