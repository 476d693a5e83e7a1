package storage

import (
	"time"

	"github.com/tidekv/engine/internal/storage/kv"
)

// Config holds configuration for the storage system
type Config struct {
	// ReclaimMaxIdle bounds the reclaimer sleep when nothing is due (0 = sleep until woken)
	ReclaimMaxIdle time.Duration

	// EnableMetrics enables metrics collection
	EnableMetrics bool
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		ReclaimMaxIdle: kv.DefaultReclaimMaxIdle,
		EnableMetrics:  true,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.ReclaimMaxIdle < 0 {
		return ErrInvalidConfig{Field: "ReclaimMaxIdle", Reason: "cannot be negative"}
	}
	return nil
}

// ErrInvalidConfig indicates an invalid configuration
type ErrInvalidConfig struct {
	Field  string
	Reason string
}

func (e ErrInvalidConfig) Error() string {
	return "invalid config: " + e.Field + ": " + e.Reason
}
