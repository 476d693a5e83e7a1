package tracing

// TracingConfig holds configuration for OpenTelemetry tracing
type TracingConfig struct {
	// Enabled enables/disables tracing
	Enabled bool

	// ServiceName is the service name for traces
	ServiceName string

	// ServiceVersion is the service version
	ServiceVersion string

	// Endpoint is the OTLP endpoint (host:port)
	Endpoint string

	// Insecure disables TLS towards the collector
	Insecure bool

	// Headers contains additional headers for OTLP export
	Headers map[string]string

	// ExporterType specifies the exporter type: "grpc" or "http"
	ExporterType string

	// SamplingRatio is the fraction of root spans sampled, in [0, 1]
	SamplingRatio float64
}

// DefaultTracingConfig returns a default tracing configuration
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		Enabled:        false,
		ServiceName:    "tidekv",
		ServiceVersion: "dev",
		Endpoint:       "",
		Insecure:       false,
		Headers:        make(map[string]string),
		ExporterType:   "grpc",
		SamplingRatio:  1.0,
	}
}
