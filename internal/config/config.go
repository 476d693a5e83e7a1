package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `yaml:"server"`

	// Store configuration
	Store StoreConfig `yaml:"store"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configuration
	Metrics MetricsConfig `yaml:"metrics"`

	// Configuration file path
	ConfigFile string `env:"CONFIG_FILE" yaml:"-"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	// HTTP server address
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080" yaml:"http_addr"`

	// Port takes precedence over the port of HTTPAddr when set
	Port int `env:"SERVER_PORT" envDefault:"0" yaml:"port"`

	// gRPC health server address
	GRPCAddr string `env:"GRPC_ADDR" envDefault:":50051" yaml:"grpc_addr"`

	// Enable the gRPC health server
	GRPCEnabled bool `env:"GRPC_ENABLED" envDefault:"true" yaml:"grpc_enabled"`

	// Time allowed for in-flight requests on shutdown
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s" yaml:"shutdown_timeout"`

	// Read header timeout for the HTTP server
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" envDefault:"10s" yaml:"read_header_timeout"`
}

// StoreConfig holds storage engine configuration
type StoreConfig struct {
	// Upper bound on how long the reclaimer sleeps without a write or a due expiry (0 = no bound)
	ReclaimMaxIdle time.Duration `env:"RECLAIM_MAX_IDLE" envDefault:"1s" yaml:"reclaim_max_idle"`

	// Optional JSON schema every inserted value must satisfy
	ValueSchemaFile string `env:"VALUE_SCHEMA_FILE" yaml:"value_schema_file"`

	// Max request body size in bytes
	MaxValueSize int64 `env:"MAX_VALUE_SIZE" envDefault:"1048576" yaml:"max_value_size"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	// Log level: "debug", "info", "warn", "error"
	Level string `env:"LOG_LEVEL" envDefault:"info" yaml:"level"`

	// Log format: "json", "text"
	Format string `env:"LOG_FORMAT" envDefault:"json" yaml:"format"`

	// Log file path (empty for stdout)
	Output string `env:"LOG_OUTPUT" envDefault:"" yaml:"output"`

	// Enable log rotation
	Rotation bool `env:"LOG_ROTATION" envDefault:"true" yaml:"rotation"`

	// Max log file size in MB
	MaxSize int `env:"LOG_MAX_SIZE" envDefault:"100" yaml:"max_size"`

	// Number of backup files to keep
	MaxBackups int `env:"LOG_MAX_BACKUPS" envDefault:"7" yaml:"max_backups"`

	// Max age in days
	MaxAge int `env:"LOG_MAX_AGE" envDefault:"30" yaml:"max_age"`
}

// MetricsConfig holds metrics-related configuration
type MetricsConfig struct {
	// Enable Prometheus metrics
	Enabled bool `env:"METRICS_ENABLED" envDefault:"true" yaml:"enabled"`

	// Metrics server address
	Addr string `env:"METRICS_ADDR" envDefault:":9090" yaml:"addr"`

	// Metrics path
	Path string `env:"METRICS_PATH" envDefault:"/metrics" yaml:"path"`

	// Enable OpenTelemetry tracing
	TracingEnabled bool `env:"TRACING_ENABLED" envDefault:"false" yaml:"tracing_enabled"`

	// OpenTelemetry endpoint
	TracingEndpoint string `env:"TRACING_ENDPOINT" envDefault:"" yaml:"tracing_endpoint"`

	// OTLP exporter: "grpc" or "http"
	TracingExporter string `env:"TRACING_EXPORTER" envDefault:"grpc" yaml:"tracing_exporter"`

	// Disable TLS towards the collector
	TracingInsecure bool `env:"TRACING_INSECURE" envDefault:"false" yaml:"tracing_insecure"`

	// Fraction of root spans sampled, in [0, 1]
	TracingSamplingRatio float64 `env:"TRACING_SAMPLING_RATIO" envDefault:"1" yaml:"tracing_sampling_ratio"`
}

// Load loads configuration from multiple sources, later sources winning:
// 1. Default values and environment variables
// 2. Configuration file (YAML)
// 3. Command line flags
func Load(args []string) (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	fs := flag.NewFlagSet("tidekv", flag.ContinueOnError)
	fs.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "Path to configuration file")
	fs.StringVar(&cfg.Server.HTTPAddr, "http-addr", cfg.Server.HTTPAddr, "HTTP server address")
	fs.StringVar(&cfg.Server.GRPCAddr, "grpc-addr", cfg.Server.GRPCAddr, "gRPC health server address")
	fs.StringVar(&cfg.Metrics.Addr, "metrics-addr", cfg.Metrics.Addr, "Metrics server address")
	fs.StringVar(&cfg.Logging.Level, "log-level", cfg.Logging.Level, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.Logging.Format, "log-format", cfg.Logging.Format, "Log format (json, text)")
	fs.StringVar(&cfg.Store.ValueSchemaFile, "value-schema", cfg.Store.ValueSchemaFile, "JSON schema for inserted values")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	// Remember explicit flags so they can be re-applied over the file
	explicit := make(map[string]string)
	fs.Visit(func(f *flag.Flag) {
		explicit[f.Name] = f.Value.String()
	})

	if cfg.ConfigFile != "" {
		if err := loadFromFile(cfg, cfg.ConfigFile); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
		for name, value := range explicit {
			if err := fs.Set(name, value); err != nil {
				return nil, fmt.Errorf("failed to apply flag %s: %w", name, err)
			}
		}
	}

	if cfg.Server.Port > 0 {
		cfg.Server.HTTPAddr = withPort(cfg.Server.HTTPAddr, cfg.Server.Port)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("http server address cannot be empty")
	}

	if c.Server.GRPCEnabled && c.Server.GRPCAddr == "" {
		return fmt.Errorf("grpc server address cannot be empty when grpc is enabled")
	}

	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}

	if c.Store.ReclaimMaxIdle < 0 {
		return fmt.Errorf("reclaim max idle cannot be negative")
	}

	if c.Store.MaxValueSize <= 0 {
		return fmt.Errorf("max value size must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validLogFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics address cannot be empty when metrics are enabled")
	}

	if c.Metrics.TracingEnabled {
		if c.Metrics.TracingEndpoint == "" {
			return fmt.Errorf("tracing endpoint is required when tracing is enabled")
		}
		switch strings.ToLower(c.Metrics.TracingExporter) {
		case "grpc", "http":
		default:
			return fmt.Errorf("invalid tracing exporter: %s", c.Metrics.TracingExporter)
		}
		if c.Metrics.TracingSamplingRatio < 0 || c.Metrics.TracingSamplingRatio > 1 {
			return fmt.Errorf("tracing sampling ratio must be within [0, 1]")
		}
	}

	return nil
}

// loadFromFile overlays a YAML configuration file onto cfg
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// withPort replaces the port of addr, keeping its host
func withPort(addr string, port int) string {
	host := addr
	if idx := strings.LastIndex(addr, ":"); idx >= 0 {
		host = addr[:idx]
	}
	return host + ":" + strconv.Itoa(port)
}
