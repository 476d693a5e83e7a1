package kv

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tidekv/engine/internal/tracing"
)

const tracerName = "tidekv.kv"

// startSpan starts a span for a store operation on key
func startSpan(ctx context.Context, operation, key string) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "kv."+operation,
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	span.SetAttributes(
		attribute.String(tracing.AttrKey, key),
		attribute.String(tracing.AttrOperation, operation),
	)
	return ctx, span
}

// StartInsertSpan starts a span for Insert
func StartInsertSpan(ctx context.Context, key string, ttlMillis *int64) (context.Context, trace.Span) {
	ctx, span := startSpan(ctx, "insert", key)
	if ttlMillis != nil {
		span.SetAttributes(attribute.Int64(tracing.AttrTTLMillis, *ttlMillis))
	}
	return ctx, span
}

// StartDeleteSpan starts a span for Delete
func StartDeleteSpan(ctx context.Context, key string) (context.Context, trace.Span) {
	return startSpan(ctx, "delete", key)
}

// StartGetSpan starts a span for Get
func StartGetSpan(ctx context.Context, key string) (context.Context, trace.Span) {
	return startSpan(ctx, "get", key)
}
