package middleware

import (
	"net/http"
	"time"

	"github.com/tidekv/engine/internal/metrics"
)

// Metrics records request counts and latency per route
func Metrics(m *metrics.APIMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := wrapResponseWriter(w)
			next.ServeHTTP(ww, r)

			m.RecordRequest(r.Method, routeOf(r), ww.statusCode, time.Since(start))
		})
	}
}
