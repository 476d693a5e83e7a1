package kv

import (
	"context"
	"time"

	"github.com/tidekv/engine/internal/storage/dualmap"
)

const (
	// DefaultReclaimMaxIdle is the default upper bound on reclaimer sleep
	DefaultReclaimMaxIdle = time.Second
)

// Start starts the reclaimer goroutine. It runs until ctx is canceled or
// Stop is called.
func (s *Store) Start(ctx context.Context) error {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()

	if s.running() {
		return nil
	}

	s.log.Info().Msg("Starting KV store...")

	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	go s.runReclaimer(ctx, s.stopCh, s.doneCh)

	s.ready = true
	s.log.Info().Msg("KV store started")

	return nil
}

// Stop stops the reclaimer and waits for it to exit or for ctx to expire
func (s *Store) Stop(ctx context.Context) error {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()

	if !s.ready {
		return nil
	}

	s.log.Info().Msg("Stopping KV store...")

	close(s.stopCh)
	s.ready = false

	select {
	case <-s.doneCh:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.log.Info().Msg("KV store stopped")
	return nil
}

// Ready returns true while the reclaimer is running
func (s *Store) Ready() bool {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()
	return s.running()
}

// running reports whether the reclaimer goroutine is live. Caller holds lifeMu.
func (s *Store) running() bool {
	if !s.ready {
		return false
	}
	select {
	case <-s.doneCh:
		return false
	default:
		return true
	}
}

// Reconcile runs one reclamation cycle synchronously
func (s *Store) Reconcile() CycleStats {
	return s.reclaim(s.now())
}

// runReclaimer runs the background reclamation loop
func (s *Store) runReclaimer(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	s.log.Info().Dur("max_idle", s.maxIdle).Msg("Reclaimer started")

	for {
		stats := s.reclaim(s.now())

		wait := s.maxIdle
		if !stats.NextExpiry.IsZero() {
			untilNext := stats.NextExpiry.Sub(s.now())
			if untilNext <= 0 {
				continue
			}
			if wait <= 0 || untilNext < wait {
				wait = untilNext
			}
		}

		var timerC <-chan time.Time
		var timer *time.Timer
		if wait > 0 {
			timer = time.NewTimer(wait)
			timerC = timer.C
		}

		select {
		case <-ctx.Done():
			stopTimer(timer)
			s.log.Info().Msg("Reclaimer stopped due to context cancellation")
			return
		case <-stopCh:
			stopTimer(timer)
			s.log.Info().Msg("Reclaimer stopped")
			return
		case <-s.wake:
			stopTimer(timer)
		case <-timerC:
		}
	}
}

func stopTimer(t *time.Timer) {
	if t != nil {
		t.Stop()
	}
}

// reclaim runs one cycle under the write lock: drain the operation log into
// the expiration index, evict everything due at now, then publish.
func (s *Store) reclaim(now time.Time) CycleStats {
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	var stats CycleStats

	ops := s.writer.Drain()
	stats.Drained = len(ops)
	for _, op := range ops {
		switch op.Kind {
		case dualmap.OpAdd:
			if op.Value != nil && op.Value.ExpiresAt != nil {
				s.index.Push(op.Key, *op.Value.ExpiresAt)
			}
		case dualmap.OpRemove:
			// Evictions from earlier cycles land here too; the key is
			// already gone from the index.
			s.index.Remove(op.Key)
		}
	}

	for {
		next, ok := s.index.PeekMin()
		if !ok || next.ExpiresAt.After(now) {
			break
		}
		if s.writer.Remove(next.Key) {
			stats.Evicted++
			s.log.Debug().Str("key", next.Key).Time("expires_at", next.ExpiresAt).Msg("Evicted expired key")
		}
		s.index.PopMin()
	}

	stats.Published = s.writer.Publish()
	stats.Tracked = s.index.Len()
	if next, ok := s.index.PeekMin(); ok {
		stats.NextExpiry = next.ExpiresAt
	}

	s.metrics.RecordReclaim(stats.Drained, stats.Evicted, time.Since(start))
	s.metrics.SetIndexSize(stats.Tracked)
	s.metrics.SetPublishedKeys(s.writer.Len())

	if stats.Drained > 0 || stats.Evicted > 0 {
		s.log.Debug().
			Int("drained", stats.Drained).
			Int("evicted", stats.Evicted).
			Int("tracked", stats.Tracked).
			Bool("published", stats.Published).
			Msg("Reclaim cycle completed")
	}

	return stats
}
