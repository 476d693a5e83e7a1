package metrics

// Metric name constants following Prometheus naming conventions
// Format: tidekv_{component}_{metric}_{unit}

// Store metrics
const (
	MetricStoreOperationsTotal = "tidekv_store_operations_total"
	MetricStoreEvictionsTotal  = "tidekv_store_evictions_total"
	MetricStoreReclaimCycles   = "tidekv_store_reclaim_cycles_total"
	MetricStoreReclaimDrained  = "tidekv_store_reclaim_drained_operations_total"
	MetricStoreReclaimDuration = "tidekv_store_reclaim_duration_seconds"
	MetricStoreExpiryIndexSize = "tidekv_store_expiry_index_size"
	MetricStorePublishedKeys   = "tidekv_store_keys"
)

// API metrics
const (
	MetricAPIRequestsTotal   = "tidekv_api_requests_total"
	MetricAPIRequestDuration = "tidekv_api_request_duration_seconds"
)

// Label name constants
const (
	LabelOperation = "operation"
	LabelStatus    = "status"
	LabelMethod    = "method"
	LabelRoute     = "route"
)

// Operation label values
const (
	OpInsert = "insert"
	OpDelete = "delete"
	OpGet    = "get"
)

// Status label values
const (
	StatusOK             = "ok"
	StatusHit            = "hit"
	StatusMiss           = "miss"
	StatusNotFound       = "not_found"
	StatusAlreadyPresent = "already_present"
)
