package expiry

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_PushAndPop(t *testing.T) {
	idx := New()
	now := time.Now()

	idx.Push("k1", now.Add(10*time.Second))
	idx.Push("k2", now.Add(5*time.Second))
	idx.Push("k3", now)

	e, ok := idx.PopMin()
	require.True(t, ok)
	assert.Equal(t, "k3", e.Key)

	e, ok = idx.PopMin()
	require.True(t, ok)
	assert.Equal(t, "k2", e.Key)

	e, ok = idx.PopMin()
	require.True(t, ok)
	assert.Equal(t, "k1", e.Key)

	_, ok = idx.PopMin()
	assert.False(t, ok)
	assert.Equal(t, 0, idx.Len())
}

func TestIndex_PeekMin(t *testing.T) {
	idx := New()

	_, ok := idx.PeekMin()
	assert.False(t, ok)

	now := time.Now()
	idx.Push("late", now.Add(time.Minute))
	idx.Push("soon", now)

	e, ok := idx.PeekMin()
	require.True(t, ok)
	assert.Equal(t, "soon", e.Key)
	assert.True(t, e.ExpiresAt.Equal(now))

	// Peek does not remove
	e, _ = idx.PeekMin()
	assert.Equal(t, "soon", e.Key)
	assert.Equal(t, 2, idx.Len())
}

func TestIndex_Remove(t *testing.T) {
	idx := New()
	now := time.Now()

	idx.Push("k1", now)
	idx.Push("k2", now.Add(time.Second))

	assert.True(t, idx.Remove("k1"))
	assert.False(t, idx.Contains("k1"))
	assert.False(t, idx.Remove("k1"))
	assert.False(t, idx.Remove("nonexistent"))

	e, ok := idx.PopMin()
	require.True(t, ok)
	assert.Equal(t, "k2", e.Key)
}

func TestIndex_PushUpdatesExisting(t *testing.T) {
	idx := New()
	now := time.Now()

	idx.Push("a", now.Add(time.Second))
	idx.Push("b", now.Add(2*time.Second))
	idx.Push("a", now.Add(3*time.Second))

	assert.Equal(t, 2, idx.Len())
	exp, ok := idx.Expiry("a")
	require.True(t, ok)
	assert.True(t, exp.Equal(now.Add(3*time.Second)))

	e, _ := idx.PopMin()
	assert.Equal(t, "b", e.Key)
	e, _ = idx.PopMin()
	assert.Equal(t, "a", e.Key)
}

func TestIndex_EqualExpiryEachPoppedOnce(t *testing.T) {
	idx := New()
	at := time.Now()

	for i := 0; i < 50; i++ {
		idx.Push(fmt.Sprintf("k%d", i), at)
	}

	seen := make(map[string]bool)
	for {
		e, ok := idx.PopMin()
		if !ok {
			break
		}
		assert.False(t, seen[e.Key], "key %s popped twice", e.Key)
		seen[e.Key] = true
	}
	assert.Len(t, seen, 50)
}

func TestIndex_OrderAfterRandomRemovals(t *testing.T) {
	idx := New()
	base := time.Now()

	for i := 0; i < 100; i++ {
		// interleave so insertion order differs from expiry order
		offset := time.Duration((i*37)%100) * time.Millisecond
		idx.Push(fmt.Sprintf("k%d", i), base.Add(offset))
	}
	for i := 0; i < 100; i += 3 {
		idx.Remove(fmt.Sprintf("k%d", i))
	}

	var prev time.Time
	count := 0
	for {
		e, ok := idx.PopMin()
		if !ok {
			break
		}
		assert.False(t, e.ExpiresAt.Before(prev))
		prev = e.ExpiresAt
		count++
	}
	assert.Equal(t, 66, count)
}
