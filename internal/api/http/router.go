package http

import (
	"net/http"

	"github.com/tidekv/engine/internal/api/http/handlers"
	"github.com/tidekv/engine/internal/api/http/middleware"
	"github.com/tidekv/engine/internal/logger"
	"github.com/tidekv/engine/internal/metrics"
	"github.com/tidekv/engine/internal/storage"
)

// RouterOptions configures optional router features
type RouterOptions struct {
	// KV configures the key handlers
	KV handlers.KVOptions
	// Metrics records per-route request metrics (nil disables)
	Metrics *metrics.APIMetrics
}

// Router manages HTTP routes and middleware
type Router struct {
	mux        *http.ServeMux
	storage    storage.Backend
	kvHandlers *handlers.KVHandlers
	metrics    *metrics.APIMetrics
}

// NewRouter creates a new router
func NewRouter(backend storage.Backend, opts RouterOptions) *Router {
	r := &Router{
		mux:        http.NewServeMux(),
		storage:    backend,
		kvHandlers: handlers.NewKVHandlers(backend.KV(), opts.KV),
		metrics:    opts.Metrics,
	}

	r.setupRoutes()

	return r
}

// ServeHTTP implements http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// setupRoutes sets up all HTTP routes. The chain runs inside the mux so
// middleware sees the matched pattern.
func (r *Router) setupRoutes() {
	log := logger.WithComponent("http.middleware")
	chain := middleware.Chain(
		middleware.RequestID(),
		middleware.Recovery(log),
		middleware.Logging(log),
		middleware.Tracing(),
		middleware.Metrics(r.metrics),
	)

	// Reserved paths, more specific than the key wildcard
	r.mux.Handle("GET /health", chain(http.HandlerFunc(handlers.HealthCheck)))
	r.mux.Handle("GET /ready", chain(handlers.ReadinessCheck(r.storage)))

	// Key API endpoints
	r.mux.Handle("GET /{key}", chain(http.HandlerFunc(r.kvHandlers.Get)))
	r.mux.Handle("POST /{key}", chain(http.HandlerFunc(r.kvHandlers.Insert)))
	r.mux.Handle("POST /{key}/{ttl}", chain(http.HandlerFunc(r.kvHandlers.Insert)))
	r.mux.Handle("DELETE /{key}", chain(http.HandlerFunc(r.kvHandlers.Delete)))
}
