package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tidekv/engine/internal/logger"
	"github.com/tidekv/engine/internal/metrics"
	"github.com/tidekv/engine/internal/storage/kv"
)

// Builder provides a fluent interface for building Storage instances
type Builder struct {
	config  *Config
	metrics *metrics.StoreMetrics
	now     func() time.Time
	log     zerolog.Logger
}

// NewBuilder creates a new Storage builder
func NewBuilder() *Builder {
	return &Builder{
		config: DefaultConfig(),
		log:    logger.WithComponent("storage.builder"),
	}
}

// WithConfig sets the configuration
func (b *Builder) WithConfig(config *Config) *Builder {
	b.config = config
	return b
}

// WithMetrics sets the store metrics (optional, metrics are skipped if not set)
func (b *Builder) WithMetrics(m *metrics.StoreMetrics) *Builder {
	b.metrics = m
	return b
}

// WithClock overrides the store clock (optional, defaults to time.Now)
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build creates the Storage instance
func (b *Builder) Build() (*Storage, error) {
	if b.config == nil {
		b.config = DefaultConfig()
	}

	if err := b.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	kvConfig := kv.DefaultConfig()
	kvConfig.ReclaimMaxIdle = b.config.ReclaimMaxIdle
	kvConfig.Now = b.now
	if b.config.EnableMetrics {
		kvConfig.Metrics = b.metrics
	}

	storage := &Storage{
		store: kv.NewStore(kvConfig),
		log:   logger.WithComponent("storage"),
	}

	b.log.Info().
		Dur("reclaim_max_idle", b.config.ReclaimMaxIdle).
		Bool("metrics", kvConfig.Metrics != nil).
		Msg("Storage built successfully")

	return storage, nil
}

// BuildAndStart creates and starts the Storage instance
func (b *Builder) BuildAndStart(ctx context.Context) (*Storage, error) {
	storage, err := b.Build()
	if err != nil {
		return nil, err
	}

	if err := storage.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start storage: %w", err)
	}

	return storage, nil
}
