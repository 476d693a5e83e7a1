// Package expiry provides the min-ordered index of key expiry instants used by
// the reclaimer. The index is not safe for concurrent use; callers hold the
// store's writer lock while touching it.
package expiry

import (
	"container/heap"
	"time"
)

// Ensure entryHeap implements heap.Interface
var _ heap.Interface = (*entryHeap)(nil)

// Entry is a tracked key and the instant it expires
type Entry struct {
	Key       string
	ExpiresAt time.Time
}

// Index is a min-heap of entries ordered by ExpiresAt (soonest first) with
// removal and update by key
type Index struct {
	h entryHeap
}

// New creates an empty index
func New() *Index {
	return &Index{
		h: entryHeap{
			entries: make([]*item, 0),
			pos:     make(map[string]*item),
		},
	}
}

// Push inserts key with the given expiry or moves it if already tracked
func (x *Index) Push(key string, expiresAt time.Time) {
	if it, ok := x.h.pos[key]; ok {
		it.entry.ExpiresAt = expiresAt
		heap.Fix(&x.h, it.index)
		return
	}
	heap.Push(&x.h, &item{entry: Entry{Key: key, ExpiresAt: expiresAt}})
}

// Remove drops the key's tracked expiry, reporting whether it was tracked
func (x *Index) Remove(key string) bool {
	it, ok := x.h.pos[key]
	if !ok {
		return false
	}
	heap.Remove(&x.h, it.index)
	return true
}

// PeekMin returns the soonest-to-expire entry without removing it
func (x *Index) PeekMin() (Entry, bool) {
	if len(x.h.entries) == 0 {
		return Entry{}, false
	}
	return x.h.entries[0].entry, true
}

// PopMin removes and returns the soonest-to-expire entry
func (x *Index) PopMin() (Entry, bool) {
	if len(x.h.entries) == 0 {
		return Entry{}, false
	}
	it := heap.Pop(&x.h).(*item)
	return it.entry, true
}

// Contains reports whether key is tracked
func (x *Index) Contains(key string) bool {
	_, ok := x.h.pos[key]
	return ok
}

// Expiry returns the tracked expiry of key
func (x *Index) Expiry(key string) (time.Time, bool) {
	it, ok := x.h.pos[key]
	if !ok {
		return time.Time{}, false
	}
	return it.entry.ExpiresAt, true
}

// Len returns the number of tracked keys
func (x *Index) Len() int {
	return len(x.h.entries)
}

type item struct {
	entry Entry
	index int
}

// entryHeap backs Index. heap.Interface methods keep pos in sync with index.
type entryHeap struct {
	entries []*item
	pos     map[string]*item
}

func (h *entryHeap) Len() int {
	return len(h.entries)
}

func (h *entryHeap) Less(i, j int) bool {
	return h.entries[i].entry.ExpiresAt.Before(h.entries[j].entry.ExpiresAt)
}

func (h *entryHeap) Swap(i, j int) {
	h.entries[i], h.entries[j] = h.entries[j], h.entries[i]
	h.entries[i].index = i
	h.entries[j].index = j
}

func (h *entryHeap) Push(x interface{}) {
	it := x.(*item)
	it.index = len(h.entries)
	h.entries = append(h.entries, it)
	h.pos[it.entry.Key] = it
}

func (h *entryHeap) Pop() interface{} {
	old := h.entries
	n := len(old)
	if n == 0 {
		return nil
	}
	it := old[n-1]
	old[n-1] = nil
	h.entries = old[:n-1]
	delete(h.pos, it.entry.Key)
	it.index = -1
	return it
}
