package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreMetrics(t *testing.T) {
	collector := NewCollector()
	metrics := NewStoreMetrics(collector)
	require.NotNil(t, metrics)
}

func TestStoreMetrics_RecordOperation(t *testing.T) {
	collector := NewCollector()
	metrics := NewStoreMetrics(collector)

	metrics.RecordOperation(OpInsert, StatusOK)
	metrics.RecordOperation(OpInsert, StatusOK)
	metrics.RecordOperation(OpInsert, StatusAlreadyPresent)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.operationsTotal.WithLabelValues(OpInsert, StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.operationsTotal.WithLabelValues(OpInsert, StatusAlreadyPresent)))
}

func TestStoreMetrics_RecordReclaim(t *testing.T) {
	collector := NewCollector()
	metrics := NewStoreMetrics(collector)

	metrics.RecordReclaim(3, 1, time.Millisecond)
	metrics.RecordReclaim(2, 0, time.Millisecond)
	metrics.SetIndexSize(4)
	metrics.SetPublishedKeys(9)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.reclaimCycles))
	assert.Equal(t, 5.0, testutil.ToFloat64(metrics.reclaimDrained))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.evictionsTotal))
	assert.Equal(t, 4.0, testutil.ToFloat64(metrics.indexSize))
	assert.Equal(t, 9.0, testutil.ToFloat64(metrics.publishedKeys))

	metricFamilies, err := collector.GetRegistry().Gather()
	require.NoError(t, err)

	var found bool
	for _, mf := range metricFamilies {
		if mf.GetName() == MetricStoreReclaimDuration {
			found = true
			assert.Equal(t, uint64(2), mf.GetMetric()[0].GetHistogram().GetSampleCount())
		}
	}
	assert.True(t, found, "reclaim duration metric should be found")
}

func TestStoreMetrics_NilSafe(t *testing.T) {
	var metrics *StoreMetrics
	assert.NotPanics(t, func() {
		metrics.RecordOperation(OpGet, StatusHit)
		metrics.RecordReclaim(1, 1, time.Second)
		metrics.SetIndexSize(1)
		metrics.SetPublishedKeys(1)
	})
}

func TestAPIMetrics_RecordRequest(t *testing.T) {
	collector := NewCollector()
	metrics := NewAPIMetrics(collector)

	metrics.RecordRequest("GET", "/{key}", 200, 5*time.Millisecond)
	metrics.RecordRequest("GET", "/{key}", 404, 5*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requestsTotal.WithLabelValues("GET", "/{key}", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requestsTotal.WithLabelValues("GET", "/{key}", "404")))

	var nilMetrics *APIMetrics
	assert.NotPanics(t, func() {
		nilMetrics.RecordRequest("GET", "/", 200, time.Second)
	})
}
