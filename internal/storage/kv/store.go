// Package kv implements the in-memory key-value store with per-key TTL.
//
// Writes go through a single mutex to the dual-view map's write handle and
// stay invisible to Get until the reclaimer publishes them. The reclaimer is
// the only component that reads or writes the expiration index.
package kv

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tidekv/engine/internal/logger"
	"github.com/tidekv/engine/internal/metrics"
	"github.com/tidekv/engine/internal/storage/dualmap"
	"github.com/tidekv/engine/internal/storage/expiry"
)

// Store is the public operation surface of the storage engine
type Store struct {
	// mu is the single write-access lock shared by Insert, Delete and the reclaimer.
	// It guards writer and index.
	mu      sync.Mutex
	writer  *dualmap.WriteHandle[*StoredValue]
	index   *expiry.Index
	readers dualmap.ReadHandleFactory[*StoredValue]

	wake    chan struct{}
	now     func() time.Time
	maxIdle time.Duration
	metrics *metrics.StoreMetrics
	log     zerolog.Logger

	// lifecycle
	lifeMu sync.Mutex
	ready  bool
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewStore creates an empty store. Call Start to run the reclaimer.
func NewStore(cfg Config) *Store {
	readers, writer := dualmap.New[*StoredValue]()

	s := &Store{
		writer:  writer,
		index:   expiry.New(),
		readers: readers,
		wake:    make(chan struct{}, 1),
		now:     cfg.Now,
		maxIdle: cfg.ReclaimMaxIdle,
		metrics: cfg.Metrics,
		log:     logger.WithComponent("kv"),
	}
	if s.now == nil {
		s.now = time.Now
	}
	if cfg.Logger != nil {
		s.log = *cfg.Logger
	}
	return s
}

// Insert stages value under key. ttlMillis, when non-nil, sets the expiry to
// now + ttlMillis. Insert fails with AlreadyPresentError if the key holds a
// live value; there is no overwrite. The value becomes visible to Get after
// the next reclamation cycle.
func (s *Store) Insert(ctx context.Context, key string, value []byte, ttlMillis *int64) error {
	_, span := StartInsertSpan(ctx, key, ttlMillis)
	defer span.End()

	s.mu.Lock()
	var expiresAt *time.Time
	if ttlMillis != nil {
		at := s.now().Add(time.Duration(*ttlMillis) * time.Millisecond)
		expiresAt = &at
	}

	if s.writer.Contains(key) {
		s.mu.Unlock()
		s.metrics.RecordOperation(metrics.OpInsert, metrics.StatusAlreadyPresent)
		err := AlreadyPresentError{Key: key}
		span.RecordError(err)
		return err
	}

	s.writer.Insert(key, &StoredValue{
		Data:      string(value),
		ExpiresAt: expiresAt,
	})
	s.mu.Unlock()

	s.signal()
	s.metrics.RecordOperation(metrics.OpInsert, metrics.StatusOK)
	return nil
}

// Delete stages removal of key. It fails with NotFoundError if the key holds
// no live value. The removal becomes visible to Get after the next
// reclamation cycle.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, span := StartDeleteSpan(ctx, key)
	defer span.End()

	s.mu.Lock()
	removed := s.writer.Remove(key)
	s.mu.Unlock()

	if !removed {
		s.metrics.RecordOperation(metrics.OpDelete, metrics.StatusNotFound)
		err := NotFoundError{Key: key}
		span.RecordError(err)
		return err
	}

	s.signal()
	s.metrics.RecordOperation(metrics.OpDelete, metrics.StatusOK)
	return nil
}

// Get returns the published data of key. It never takes the write lock.
func (s *Store) Get(ctx context.Context, key string) (string, bool) {
	_, span := StartGetSpan(ctx, key)
	defer span.End()

	v, ok := s.readers.Handle().Get(key)
	if !ok {
		s.metrics.RecordOperation(metrics.OpGet, metrics.StatusMiss)
		return "", false
	}
	s.metrics.RecordOperation(metrics.OpGet, metrics.StatusHit)
	return v.Data, true
}

// Lookup returns the published stored value of key, including its expiry
func (s *Store) Lookup(key string) (*StoredValue, bool) {
	return s.readers.Handle().Get(key)
}

// Contains reports whether key holds a live value in the writer's view,
// including staged but unpublished mutations
func (s *Store) Contains(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writer.Contains(key)
}

// Len returns the number of published keys
func (s *Store) Len() int {
	return s.readers.Handle().Len()
}

// Readers returns the read handle factory. It may be shared freely.
func (s *Store) Readers() dualmap.ReadHandleFactory[*StoredValue] {
	return s.readers
}

// signal wakes the reclaimer without blocking
func (s *Store) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}
