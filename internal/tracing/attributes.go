package tracing

// Span attribute keys following OpenTelemetry semantic conventions
const (
	// Store attributes
	AttrKey       = "tidekv.key"
	AttrTTLMillis = "tidekv.ttl_ms"
	AttrOperation = "tidekv.operation"
	AttrStatus    = "tidekv.status"
	AttrRequestID = "tidekv.request_id"

	// HTTP attributes (OpenTelemetry semantic conventions)
	AttrHTTPMethod     = "http.method"
	AttrHTTPRoute      = "http.route"
	AttrHTTPStatusCode = "http.status_code"
	AttrHTTPUserAgent  = "http.user_agent"

	// RPC attributes (OpenTelemetry semantic conventions)
	AttrRPCService = "rpc.service"
	AttrRPCMethod  = "rpc.method"
	AttrRPCStatus  = "rpc.grpc.status_code"
)
