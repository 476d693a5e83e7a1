package middleware

import (
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tidekv/engine/internal/tracing"
)

// Tracing creates tracing middleware for HTTP requests
func Tracing() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := tracing.ExtractHTTP(r.Context(), r.Header)

			route := routeOf(r)
			ctx, span := otel.Tracer("tidekv.http").Start(ctx, "HTTP "+route,
				trace.WithSpanKind(trace.SpanKindServer),
			)
			defer span.End()

			span.SetAttributes(
				attribute.String(tracing.AttrHTTPMethod, r.Method),
				attribute.String(tracing.AttrHTTPRoute, route),
				attribute.String(tracing.AttrHTTPUserAgent, r.UserAgent()),
				attribute.String(tracing.AttrRequestID, RequestIDFromContext(r.Context())),
			)

			ww := wrapResponseWriter(w)
			next.ServeHTTP(ww, r.WithContext(ctx))

			span.SetAttributes(attribute.Int(tracing.AttrHTTPStatusCode, ww.statusCode))

			if ww.statusCode >= 500 {
				span.SetStatus(codes.Error, "HTTP "+strconv.Itoa(ww.statusCode))
			} else {
				span.SetStatus(codes.Ok, "")
			}
		})
	}
}
