package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tidekv/engine/internal/storage/kv"
)

// Storage represents the complete storage system
type Storage struct {
	store  *kv.Store
	log    zerolog.Logger
	mu     sync.Mutex
	closed bool
}

var _ Backend = (*Storage)(nil)

// New creates a storage system with the default configuration
func New() (*Storage, error) {
	return NewBuilder().Build()
}

// KV returns the key-value store
func (s *Storage) KV() KVStore {
	return s.store
}

// Store returns the concrete store, including its test hooks
func (s *Storage) Store() *kv.Store {
	return s.store
}

// Start starts the reclamation loop
func (s *Storage) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("storage is closed")
	}

	s.log.Info().Msg("Starting storage...")
	if err := s.store.Start(ctx); err != nil {
		return fmt.Errorf("failed to start KV store: %w", err)
	}
	s.log.Info().Msg("Storage started")

	return nil
}

// Stop stops the reclamation loop. Staged writes not yet published are
// discarded with the process.
func (s *Storage) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.log.Info().Msg("Stopping storage...")
	if err := s.store.Stop(ctx); err != nil {
		s.log.Error().Err(err).Msg("Failed to stop KV store")
		return fmt.Errorf("failed to stop KV store: %w", err)
	}

	s.closed = true
	s.log.Info().Msg("Storage stopped")

	return nil
}

// Ready returns true if the storage system is serving
func (s *Storage) Ready() bool {
	return s.store.Ready()
}
