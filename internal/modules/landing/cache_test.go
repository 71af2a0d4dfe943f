package landing

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestCacheFreshRespectsTTLAndKey(t *testing.T) {
	clock := newFakeClock()
	c := NewCache[string](10*time.Minute, clock.Now)

	_, ok := c.Fresh("IN")
	assert.False(t, ok)

	c.Store("IN", []string{"a", "b"})
	got, ok := c.Fresh("IN")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, got)

	_, ok = c.Fresh("US")
	assert.False(t, ok, "different key is a miss")

	clock.Advance(9*time.Minute + 59*time.Second)
	_, ok = c.Fresh("IN")
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok = c.Fresh("IN")
	assert.False(t, ok, "expired at ttl")

	stale, ok := c.LastKnownGood()
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, stale)
}

func TestCacheIgnoresEmptyAndCopies(t *testing.T) {
	c := NewCache[string](time.Minute, nil)
	c.Store("IN", []string{"keep"})
	c.Store("IN", nil)

	got, ok := c.LastKnownGood()
	require.True(t, ok)
	got[0] = "mutated"

	again, _ := c.LastKnownGood()
	assert.Equal(t, []string{"keep"}, again)
}

func TestCacheConcurrentStoreAndRead(t *testing.T) {
	c := NewCache[int](time.Minute, nil)
	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			items := make([]int, n)
			for j := range items {
				items[j] = n
			}
			c.Store("k", items)
		}(i)
		go func() {
			defer wg.Done()
			if items, ok := c.LastKnownGood(); ok {
				// a snapshot is whole: every element equals its length
				for _, v := range items {
					assert.Equal(t, len(items), v)
				}
			}
		}()
	}
	wg.Wait()
}
