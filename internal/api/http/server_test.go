package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidekv/engine/internal/api/http/handlers"
	"github.com/tidekv/engine/internal/api/http/middleware"
	"github.com/tidekv/engine/internal/metrics"
	"github.com/tidekv/engine/internal/storage"
)

func newTestStorage(t *testing.T) *storage.Storage {
	t.Helper()
	backend, err := storage.NewBuilder().WithConfig(&storage.Config{}).Build()
	require.NoError(t, err)
	return backend
}

func serve(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestServer_StartStop(t *testing.T) {
	server := NewServer("127.0.0.1:0", newTestStorage(t), ServerOptions{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, server.Start(ctx))
	assert.True(t, server.Ready())

	// Start is idempotent
	require.NoError(t, server.Start(ctx))

	resp, err := http.Get("http://" + server.Addr() + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "healthy")
	assert.NotEmpty(t, resp.Header.Get(middleware.HeaderRequestID))

	require.NoError(t, server.Stop(ctx))
	assert.False(t, server.Ready())

	// Stop is idempotent
	assert.NoError(t, server.Stop(ctx))
}

func TestServer_StartAddressInUse(t *testing.T) {
	first := NewServer("127.0.0.1:0", newTestStorage(t), ServerOptions{})
	ctx := context.Background()
	require.NoError(t, first.Start(ctx))
	defer first.Stop(ctx)

	second := NewServer(first.Addr(), newTestStorage(t), ServerOptions{})
	assert.Error(t, second.Start(ctx))
	assert.False(t, second.Ready())
}

func TestRouter_ReadinessFollowsStorage(t *testing.T) {
	backend := newTestStorage(t)
	router := NewRouter(backend, RouterOptions{})

	w := serve(router, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "not ready")

	ctx := context.Background()
	require.NoError(t, backend.Start(ctx))
	defer backend.Stop(ctx)

	w = serve(router, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ready")
}

// Writes stay invisible until the reclaimer publishes them
func TestRouter_EventualVisibility(t *testing.T) {
	backend := newTestStorage(t)
	router := NewRouter(backend, RouterOptions{})

	w := serve(router, http.MethodPost, "/key", `"value"`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, handlers.MsgQueuedForAddition, w.Body.String())

	w = serve(router, http.MethodGet, "/key", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, handlers.MsgKeyNotFound, w.Body.String())

	backend.Store().Reconcile()

	w = serve(router, http.MethodGet, "/key", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `"\"value\""`, w.Body.String())

	w = serve(router, http.MethodPost, "/key", `"other"`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already present")

	w = serve(router, http.MethodDelete, "/key", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, handlers.MsgQueuedForRemoval, w.Body.String())
	backend.Store().Reconcile()

	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/key", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodDelete, "/key", "").Code)
}

func TestRouter_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	backend, err := storage.NewBuilder().
		WithConfig(&storage.Config{ReclaimMaxIdle: 5 * time.Millisecond}).
		BuildAndStart(ctx)
	require.NoError(t, err)
	defer backend.Stop(ctx)

	router := NewRouter(backend, RouterOptions{})
	require.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/temp/10", `"value"`).Code)

	assert.Eventually(t, func() bool {
		return serve(router, http.MethodGet, "/temp", "").Code == http.StatusNotFound &&
			!backend.Store().Contains("temp")
	}, 2*time.Second, 5*time.Millisecond)
}

func TestRouter_Routing(t *testing.T) {
	router := NewRouter(newTestStorage(t), RouterOptions{})

	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(router, http.MethodPut, "/key", `1`).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(router, http.MethodGet, "/key/10", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodPost, "/key/ten", `1`).Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/health", "").Code)
}

func TestRouter_RecordsMetrics(t *testing.T) {
	collector := metrics.NewCollector()
	router := NewRouter(newTestStorage(t), RouterOptions{Metrics: metrics.NewAPIMetrics(collector)})

	serve(router, http.MethodGet, "/missing", "")

	families, err := collector.GetRegistry().Gather()
	require.NoError(t, err)

	var found bool
	for _, mf := range families {
		if mf.GetName() != metrics.MetricAPIRequestsTotal {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels[metrics.LabelRoute] == "GET /{key}" && labels[metrics.LabelStatus] == "404" {
				found = true
			}
		}
	}
	assert.True(t, found)
}
