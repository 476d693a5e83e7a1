package kv

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/tidekv/engine/internal/metrics"
)

// StoredValue is an immutable stored payload
type StoredValue struct {
	// Data is the serialized JSON payload
	Data string
	// ExpiresAt is the absolute expiry instant (nil = no expiration)
	ExpiresAt *time.Time
}

// Expired reports whether the value's TTL has elapsed at now
func (v *StoredValue) Expired(now time.Time) bool {
	return v.ExpiresAt != nil && !v.ExpiresAt.After(now)
}

// Config configures a Store
type Config struct {
	// ReclaimMaxIdle bounds how long the reclaimer sleeps when no write
	// arrives and no expiry is due (0 = sleep until woken)
	ReclaimMaxIdle time.Duration

	// Metrics receives store metrics (nil disables)
	Metrics *metrics.StoreMetrics

	// Now overrides the clock (nil = time.Now)
	Now func() time.Time

	// Logger overrides the component logger
	Logger *zerolog.Logger
}

// DefaultConfig returns the default store configuration
func DefaultConfig() Config {
	return Config{
		ReclaimMaxIdle: DefaultReclaimMaxIdle,
	}
}

// CycleStats describes one reclamation cycle
type CycleStats struct {
	// Drained is the number of operations read from the operation log
	Drained int
	// Evicted is the number of keys removed because their TTL elapsed
	Evicted int
	// Published is true when the cycle made new state visible to readers
	Published bool
	// Tracked is the number of keys left in the expiration index
	Tracked int
	// NextExpiry is the soonest remaining expiry, zero if none
	NextExpiry time.Time
}
