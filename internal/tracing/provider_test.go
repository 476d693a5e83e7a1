package tracing

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(DefaultTracingConfig())
	require.NoError(t, err)

	assert.False(t, provider.IsEnabled())
	assert.NotNil(t, provider.GetTracer("test"))
	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_RequiresEndpoint(t *testing.T) {
	config := DefaultTracingConfig()
	config.Enabled = true

	_, err := NewProvider(config)
	assert.Error(t, err)
}

func TestNewProvider_UnknownExporter(t *testing.T) {
	config := DefaultTracingConfig()
	config.Enabled = true
	config.Endpoint = "localhost:4317"
	config.ExporterType = "zipkin"

	_, err := NewProvider(config)
	assert.Error(t, err)
}

func TestNewProvider_Enabled(t *testing.T) {
	prev := otel.GetTracerProvider()
	defer otel.SetTracerProvider(prev)

	for _, exporter := range []string{"grpc", "http"} {
		t.Run(exporter, func(t *testing.T) {
			config := DefaultTracingConfig()
			config.Enabled = true
			config.Endpoint = "localhost:4317"
			config.Insecure = true
			config.ExporterType = exporter

			provider, err := NewProvider(config)
			require.NoError(t, err)
			assert.True(t, provider.IsEnabled())
			assert.NotNil(t, provider.GetTracer("test"))

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			// nothing was exported, so shutdown does not need the collector
			assert.NoError(t, provider.Shutdown(ctx))
		})
	}
}

func TestSamplerFor(t *testing.T) {
	tests := []struct {
		ratio    float64
		contains string
	}{
		{1.0, "AlwaysOnSampler"},
		{2.0, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{-1, "AlwaysOffSampler"},
		{0.5, "TraceIDRatioBased{0.5}"},
	}

	for _, tt := range tests {
		assert.Contains(t, samplerFor(tt.ratio).Description(), tt.contains)
	}
}

func TestPropagation_RoundTrip(t *testing.T) {
	prevProp := otel.GetTextMapPropagator()
	defer otel.SetTextMapPropagator(prevProp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())

	ctx, span := tp.Tracer("test").Start(context.Background(), "parent")
	defer span.End()

	header := http.Header{}
	InjectHTTP(ctx, header)
	assert.NotEmpty(t, header.Get("traceparent"))

	extracted := ExtractHTTP(context.Background(), header)
	sc := trace.SpanContextFromContext(extracted)
	assert.Equal(t, span.SpanContext().TraceID(), sc.TraceID())
	assert.True(t, sc.IsRemote())
}
