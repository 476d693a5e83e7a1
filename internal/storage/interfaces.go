package storage

import (
	"context"
)

// Lifecycle manages component lifecycle
type Lifecycle interface {
	// Start initializes and starts the component
	Start(ctx context.Context) error
	// Stop gracefully stops the component
	Stop(ctx context.Context) error
	// Ready returns true if the component is ready
	Ready() bool
}

// KVWriter defines the interface for staging writes
type KVWriter interface {
	// Insert stages value under key with an optional TTL in milliseconds
	Insert(ctx context.Context, key string, value []byte, ttlMillis *int64) error
	// Delete stages removal of key
	Delete(ctx context.Context, key string) error
}

// KVReader defines the interface for reading published values
type KVReader interface {
	// Get returns the published data of key
	Get(ctx context.Context, key string) (string, bool)
	// Len returns the number of published keys
	Len() int
}

// KVStore is the narrow operation surface handed to the API layers
type KVStore interface {
	KVWriter
	KVReader
}

// Backend defines the interface for the storage system
type Backend interface {
	Lifecycle
	// KV returns the key-value store
	KV() KVStore
}
