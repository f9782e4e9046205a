// Package cache holds loaded tables for a fixed time-to-live.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sells-group/dco-dashboard/internal/metrics"
)

// LoadFunc produces a fresh value. It must not fail; sources report
// problems as warnings on the value itself.
type LoadFunc[T any] func(ctx context.Context) T

// TTL caches the result of a LoadFunc. Within the TTL every caller gets the
// same value. After expiry the next caller triggers exactly one reload;
// concurrent callers wait for it and share its result.
type TTL[T any] struct {
	name string
	ttl  time.Duration
	load LoadFunc[T]
	now  func() time.Time

	group singleflight.Group

	mu        sync.RWMutex
	value     T
	fetchedAt time.Time
	valid     bool
	// gen counts invalidations; a load started under an older gen is
	// returned to its waiters but not stored.
	gen uint64
}

// New creates a TTL cache. name labels the cache in metrics and logs.
func New[T any](name string, ttl time.Duration, load LoadFunc[T]) *TTL[T] {
	return &TTL[T]{
		name: name,
		ttl:  ttl,
		load: load,
		now:  time.Now,
	}
}

// WithClock replaces time.Now. Intended for tests.
func (c *TTL[T]) WithClock(now func() time.Time) *TTL[T] {
	c.now = now
	return c
}

// GetOrRefresh returns the cached value, reloading it if the TTL elapsed.
// The reload is detached from ctx so a cancelled request does not poison
// the shared result for other waiters.
func (c *TTL[T]) GetOrRefresh(ctx context.Context) T {
	if v, ok := c.fresh(); ok {
		metrics.CacheLookup(c.name, true)
		return v
	}
	metrics.CacheLookup(c.name, false)

	v, _, _ := c.group.Do(c.name, func() (any, error) {
		// Another caller may have refreshed while we waited on the group.
		if v, ok := c.fresh(); ok {
			return v, nil
		}
		c.mu.RLock()
		gen := c.gen
		c.mu.RUnlock()

		v := c.load(context.WithoutCancel(ctx))

		c.mu.Lock()
		if c.gen == gen {
			c.value = v
			c.fetchedAt = c.now()
			c.valid = true
		}
		c.mu.Unlock()
		return v, nil
	})
	t, _ := v.(T)
	return t
}

// Invalidate forces the next GetOrRefresh to reload. A reload already in
// flight is detached so later callers do not join it, and its result is
// not cached.
func (c *TTL[T]) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.gen++
	c.mu.Unlock()
	c.group.Forget(c.name)
}

// FetchedAt returns when the current value was loaded, or the zero time
// before the first load.
func (c *TTL[T]) FetchedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.valid {
		return time.Time{}
	}
	return c.fetchedAt
}

func (c *TTL[T]) fresh() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.valid && c.now().Sub(c.fetchedAt) < c.ttl {
		return c.value, true
	}
	var zero T
	return zero, false
}
