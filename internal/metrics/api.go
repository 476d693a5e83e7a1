package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// APIMetrics tracks HTTP API metrics. A nil *APIMetrics is valid and records
// nothing.
type APIMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewAPIMetrics initializes API metrics with the collector
func NewAPIMetrics(collector *Collector) *APIMetrics {
	return &APIMetrics{
		requestsTotal: collector.RegisterCounter(
			MetricAPIRequestsTotal,
			"Total HTTP requests by method, route, and status",
			[]string{LabelMethod, LabelRoute, LabelStatus},
		),
		requestDuration: collector.RegisterHistogram(
			MetricAPIRequestDuration,
			"API request latency in seconds",
			[]string{LabelMethod, LabelRoute},
			prometheus.DefBuckets,
		),
	}
}

// RecordRequest records an API request
func (m *APIMetrics) RecordRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}
