package api

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidekv/engine/internal/storage"
)

func newTestServer(t *testing.T, grpcEnabled bool) *Server {
	t.Helper()
	backend, err := storage.NewBuilder().
		WithConfig(&storage.Config{ReclaimMaxIdle: 5 * time.Millisecond}).
		Build()
	require.NoError(t, err)

	return NewServer(Config{
		HTTPAddr:    "127.0.0.1:0",
		GRPCAddr:    "127.0.0.1:0",
		GRPCEnabled: grpcEnabled,
	}, backend)
}

func TestServer_Lifecycle(t *testing.T) {
	server := newTestServer(t, true)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	assert.False(t, server.Ready())
	require.NoError(t, server.Start(ctx))
	assert.True(t, server.Ready())
	assert.NotEmpty(t, server.GRPCAddr())

	base := "http://" + server.HTTPAddr()

	resp, err := http.Post(base+"/greeting", "application/json", strings.NewReader(`"hello"`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Eventually(t, func() bool {
		resp, err := http.Get(base + "/greeting")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode == http.StatusOK && string(body) == `"\"hello\""`
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, server.Stop(ctx))
	assert.False(t, server.Ready())
	assert.NoError(t, server.Stop(ctx))
}

func TestServer_WithoutGRPC(t *testing.T) {
	server := newTestServer(t, false)
	ctx := context.Background()

	require.NoError(t, server.Start(ctx))
	defer server.Stop(ctx)

	assert.True(t, server.Ready())
	assert.Empty(t, server.GRPCAddr())
}
