package grpc

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/tidekv/engine/internal/tracing"
)

// tracingInterceptor starts a server span per unary call
func (s *Server) tracingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		md = metadata.New(nil)
	}
	ctx = otel.GetTextMapPropagator().Extract(ctx, metadataCarrier(md))

	ctx, span := otel.Tracer("tidekv.grpc").Start(ctx, info.FullMethod,
		trace.WithSpanKind(trace.SpanKindServer),
	)
	defer span.End()

	service, method := splitMethodName(info.FullMethod)
	span.SetAttributes(
		attribute.String("rpc.system", "grpc"),
		attribute.String(tracing.AttrRPCService, service),
		attribute.String(tracing.AttrRPCMethod, method),
	)

	resp, err := handler(ctx, req)

	code := status.Code(err)
	span.SetAttributes(attribute.String(tracing.AttrRPCStatus, code.String()))
	if err != nil {
		span.SetStatus(codes.Error, status.Convert(err).Message())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	return resp, err
}

// splitMethodName splits "/package.Service/Method" into service and method
func splitMethodName(fullMethod string) (string, string) {
	fullMethod = strings.TrimPrefix(fullMethod, "/")
	if i := strings.LastIndex(fullMethod, "/"); i >= 0 {
		return fullMethod[:i], fullMethod[i+1:]
	}
	return "", fullMethod
}

// metadataCarrier adapts gRPC metadata to propagation.TextMapCarrier
type metadataCarrier metadata.MD

// Get returns the value associated with the passed key.
func (m metadataCarrier) Get(key string) string {
	vals := metadata.MD(m).Get(key)
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

// Set stores the key-value pair.
func (m metadataCarrier) Set(key, value string) {
	metadata.MD(m).Set(key, value)
}

// Keys lists the keys stored in this carrier.
func (m metadataCarrier) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
