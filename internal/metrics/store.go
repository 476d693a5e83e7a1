package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics tracks storage engine metrics. A nil *StoreMetrics is valid
// and records nothing.
type StoreMetrics struct {
	operationsTotal *prometheus.CounterVec
	evictionsTotal  *prometheus.CounterVec
	reclaimCycles   *prometheus.CounterVec
	reclaimDrained  *prometheus.CounterVec
	reclaimDuration *prometheus.HistogramVec
	indexSize       *prometheus.GaugeVec
	publishedKeys   *prometheus.GaugeVec
}

// NewStoreMetrics initializes store metrics with the collector
func NewStoreMetrics(collector *Collector) *StoreMetrics {
	return &StoreMetrics{
		operationsTotal: collector.RegisterCounter(
			MetricStoreOperationsTotal,
			"Total store operations by operation and status",
			[]string{LabelOperation, LabelStatus},
		),
		evictionsTotal: collector.RegisterCounter(
			MetricStoreEvictionsTotal,
			"Total keys evicted because their TTL elapsed",
			nil,
		),
		reclaimCycles: collector.RegisterCounter(
			MetricStoreReclaimCycles,
			"Total reclamation cycles",
			nil,
		),
		reclaimDrained: collector.RegisterCounter(
			MetricStoreReclaimDrained,
			"Total operations drained from the write log",
			nil,
		),
		reclaimDuration: collector.RegisterHistogram(
			MetricStoreReclaimDuration,
			"Reclamation cycle duration in seconds",
			nil,
			[]float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		),
		indexSize: collector.RegisterGauge(
			MetricStoreExpiryIndexSize,
			"Keys currently tracked by the expiration index",
			nil,
		),
		publishedKeys: collector.RegisterGauge(
			MetricStorePublishedKeys,
			"Keys visible to readers after the last reclamation cycle",
			nil,
		),
	}
}

// RecordOperation records a store operation with status
func (m *StoreMetrics) RecordOperation(operation, status string) {
	if m == nil {
		return
	}
	m.operationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordReclaim records one reclamation cycle
func (m *StoreMetrics) RecordReclaim(drained, evicted int, duration time.Duration) {
	if m == nil {
		return
	}
	m.reclaimCycles.WithLabelValues().Inc()
	m.reclaimDrained.WithLabelValues().Add(float64(drained))
	m.evictionsTotal.WithLabelValues().Add(float64(evicted))
	m.reclaimDuration.WithLabelValues().Observe(duration.Seconds())
}

// SetIndexSize sets the expiration index size gauge
func (m *StoreMetrics) SetIndexSize(n int) {
	if m == nil {
		return
	}
	m.indexSize.WithLabelValues().Set(float64(n))
}

// SetPublishedKeys sets the published key count gauge
func (m *StoreMetrics) SetPublishedKeys(n int) {
	if m == nil {
		return
	}
	m.publishedKeys.WithLabelValues().Set(float64(n))
}
