package landing

import (
	"sync/atomic"
	"time"
)

// DefaultCacheTTL bounds how long a live fetch is reused.
const DefaultCacheTTL = 10 * time.Minute

// Snapshot is one successful live fetch. Snapshots are immutable once stored.
type Snapshot[T any] struct {
	FetchedAt time.Time
	Key       string
	Items     []T
}

// Cache holds the latest snapshot of a feed. Writers replace the whole snapshot in one
// atomic store, so readers never observe a partial update.
type Cache[T any] struct {
	ttl  time.Duration
	now  func() time.Time
	last atomic.Pointer[Snapshot[T]]
}

func NewCache[T any](ttl time.Duration, now func() time.Time) *Cache[T] {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Cache[T]{ttl: ttl, now: now}
}

// Fresh returns the cached items when they were fetched for key less than ttl ago.
func (c *Cache[T]) Fresh(key string) ([]T, bool) {
	snap := c.last.Load()
	if snap == nil || snap.Key != key || len(snap.Items) == 0 {
		return nil, false
	}
	if c.now().Sub(snap.FetchedAt) >= c.ttl {
		return nil, false
	}
	return clone(snap.Items), true
}

// LastKnownGood returns the most recent snapshot's items regardless of key or age.
func (c *Cache[T]) LastKnownGood() ([]T, bool) {
	snap := c.last.Load()
	if snap == nil || len(snap.Items) == 0 {
		return nil, false
	}
	return clone(snap.Items), true
}

// Store replaces the snapshot. Empty results are ignored so they never shadow good data.
func (c *Cache[T]) Store(key string, items []T) {
	if len(items) == 0 {
		return
	}
	c.last.Store(&Snapshot[T]{FetchedAt: c.now(), Key: key, Items: clone(items)})
}

func (c *Cache[T]) Snapshot() *Snapshot[T] {
	return c.last.Load()
}

func clone[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}
