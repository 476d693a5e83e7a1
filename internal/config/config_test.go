package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidekv/engine/internal/test"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
	assert.Equal(t, ":50051", cfg.Server.GRPCAddr)
	assert.True(t, cfg.Server.GRPCEnabled)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, time.Second, cfg.Store.ReclaimMaxIdle)
	assert.Equal(t, int64(1<<20), cfg.Store.MaxValueSize)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
}

func TestLoad_EnvAndFlags(t *testing.T) {
	t.Setenv("HTTP_ADDR", "127.0.0.1:7000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RECLAIM_MAX_IDLE", "250ms")

	cfg, err := Load([]string{"-log-level", "warn"})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:7000", cfg.Server.HTTPAddr)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 250*time.Millisecond, cfg.Store.ReclaimMaxIdle)
}

func TestLoad_ServerPort(t *testing.T) {
	t.Setenv("HTTP_ADDR", "127.0.0.1:8080")
	t.Setenv("SERVER_PORT", "3000")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:3000", cfg.Server.HTTPAddr)
}

func TestLoad_File(t *testing.T) {
	path := test.WriteFile(t, "tidekv.yaml", `
server:
  http_addr: ":9999"
  shutdown_timeout: 3s
store:
  reclaim_max_idle: 50ms
logging:
  level: error
  format: text
`)

	cfg, err := Load([]string{"-config", path, "-log-level", "debug"})
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.HTTPAddr)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 50*time.Millisecond, cfg.Store.ReclaimMaxIdle)
	assert.Equal(t, "text", cfg.Logging.Format)
	// flags win over the file
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load([]string{"-config", test.MissingFile(t, "missing.yaml")})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load(nil)
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty http addr", func(c *Config) { c.Server.HTTPAddr = "" }},
		{"empty grpc addr", func(c *Config) { c.Server.GRPCAddr = "" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"negative idle", func(c *Config) { c.Store.ReclaimMaxIdle = -time.Second }},
		{"zero value size", func(c *Config) { c.Store.MaxValueSize = 0 }},
		{"tracing without endpoint", func(c *Config) { c.Metrics.TracingEnabled = true }},
		{"bad exporter", func(c *Config) {
			c.Metrics.TracingEnabled = true
			c.Metrics.TracingEndpoint = "localhost:4317"
			c.Metrics.TracingExporter = "zipkin"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, valid().Validate())
}
