// Package dualmap implements a single-writer, multi-reader map.
//
// The writer mutates a private map and records every mutation in an ordered
// operation log. Readers never see those mutations until the writer calls
// Publish, which swaps in an immutable snapshot of the writer's map. Readers
// load the current snapshot through an atomic pointer, so reads never lock
// and never block the writer.
//
// A WriteHandle is not safe for concurrent use. Callers serialize access to
// it, typically with a mutex shared by every goroutine that mutates.
package dualmap

import (
	"maps"
	"sync/atomic"
)

// OpKind identifies a write-side mutation
type OpKind int

const (
	// OpAdd records an insertion
	OpAdd OpKind = iota
	// OpRemove records a removal
	OpRemove
)

func (k OpKind) String() string {
	switch k {
	case OpAdd:
		return "add"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Operation is one entry of the writer's operation log
type Operation[V any] struct {
	Kind  OpKind
	Key   string
	Value V
}

// snapshot is an immutable published state. data is never written after publish.
type snapshot[V any] struct {
	data  map[string]V
	epoch uint64
}

// WriteHandle is the exclusive mutation surface of a map
type WriteHandle[V any] struct {
	live        map[string]V
	oplog       []Operation[V]
	unpublished int
	epoch       uint64
	published   *atomic.Pointer[snapshot[V]]
}

// ReadHandleFactory produces read handles. It is cheap to copy and safe to
// share across goroutines.
type ReadHandleFactory[V any] struct {
	published *atomic.Pointer[snapshot[V]]
}

// ReadHandle reads the most recently published state
type ReadHandle[V any] struct {
	published *atomic.Pointer[snapshot[V]]
}

// View is a pinned published state. Every read through a View observes the
// same snapshot.
type View[V any] struct {
	s *snapshot[V]
}

// New creates an empty map and returns its read factory and write handle.
// The empty state is published immediately.
func New[V any]() (ReadHandleFactory[V], *WriteHandle[V]) {
	p := &atomic.Pointer[snapshot[V]]{}
	p.Store(&snapshot[V]{data: make(map[string]V)})

	w := &WriteHandle[V]{
		live:      make(map[string]V),
		published: p,
	}
	return ReadHandleFactory[V]{published: p}, w
}

// Insert stages key=value. It does not check for an existing key.
func (w *WriteHandle[V]) Insert(key string, value V) {
	w.live[key] = value
	w.record(Operation[V]{Kind: OpAdd, Key: key, Value: value})
}

// Remove stages removal of key, reporting whether the key was present.
// Removing an absent key records nothing.
func (w *WriteHandle[V]) Remove(key string) bool {
	if _, ok := w.live[key]; !ok {
		return false
	}
	delete(w.live, key)
	w.record(Operation[V]{Kind: OpRemove, Key: key})
	return true
}

func (w *WriteHandle[V]) record(op Operation[V]) {
	w.oplog = append(w.oplog, op)
	w.unpublished++
}

// Contains reports whether key is present in the writer's view
func (w *WriteHandle[V]) Contains(key string) bool {
	_, ok := w.live[key]
	return ok
}

// Get reads key from the writer's view, including unpublished mutations
func (w *WriteHandle[V]) Get(key string) (V, bool) {
	v, ok := w.live[key]
	return v, ok
}

// Len returns the number of keys in the writer's view
func (w *WriteHandle[V]) Len() int {
	return len(w.live)
}

// Drain returns the operations recorded since the previous Drain, in the
// order they were applied, and clears the log
func (w *WriteHandle[V]) Drain() []Operation[V] {
	ops := w.oplog
	w.oplog = nil
	return ops
}

// Pending returns the number of mutations not yet published
func (w *WriteHandle[V]) Pending() int {
	return w.unpublished
}

// Publish makes every staged mutation visible to readers at once. It reports
// false and keeps the current snapshot when nothing is pending.
func (w *WriteHandle[V]) Publish() bool {
	if w.unpublished == 0 {
		return false
	}
	w.epoch++
	w.published.Store(&snapshot[V]{
		data:  maps.Clone(w.live),
		epoch: w.epoch,
	})
	w.unpublished = 0
	return true
}

// Factory returns a read factory observing this writer's published state
func (w *WriteHandle[V]) Factory() ReadHandleFactory[V] {
	return ReadHandleFactory[V]{published: w.published}
}

// Handle creates a new read handle
func (f ReadHandleFactory[V]) Handle() ReadHandle[V] {
	return ReadHandle[V]{published: f.published}
}

// Get returns the published value of key
func (r ReadHandle[V]) Get(key string) (V, bool) {
	v, ok := r.published.Load().data[key]
	return v, ok
}

// Len returns the number of published keys
func (r ReadHandle[V]) Len() int {
	return len(r.published.Load().data)
}

// Epoch returns the number of publishes observed so far
func (r ReadHandle[V]) Epoch() uint64 {
	return r.published.Load().epoch
}

// Snapshot pins the current published state
func (r ReadHandle[V]) Snapshot() View[V] {
	return View[V]{s: r.published.Load()}
}

// Get returns the value of key in the pinned state
func (v View[V]) Get(key string) (V, bool) {
	val, ok := v.s.data[key]
	return val, ok
}

// Len returns the number of keys in the pinned state
func (v View[V]) Len() int {
	return len(v.s.data)
}

// Epoch returns the publish number of the pinned state
func (v View[V]) Epoch() uint64 {
	return v.s.epoch
}

// Keys returns the keys of the pinned state in no particular order
func (v View[V]) Keys() []string {
	keys := make([]string, 0, len(v.s.data))
	for k := range v.s.data {
		keys = append(keys, k)
	}
	return keys
}
