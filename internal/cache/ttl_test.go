package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type table struct{ gen int64 }

func TestTTL_ReturnsSameValueWithinTTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	var loads atomic.Int64
	c := New("test", time.Minute, func(context.Context) *table {
		return &table{gen: loads.Add(1)}
	}).WithClock(clock.Now)

	first := c.GetOrRefresh(context.Background())
	clock.Advance(59 * time.Second)
	second := c.GetOrRefresh(context.Background())

	assert.Same(t, first, second)
	assert.Equal(t, int64(1), loads.Load())
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), c.FetchedAt())
}

func TestTTL_ReloadsAfterExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	var loads atomic.Int64
	c := New("test", time.Minute, func(context.Context) *table {
		return &table{gen: loads.Add(1)}
	}).WithClock(clock.Now)

	first := c.GetOrRefresh(context.Background())
	clock.Advance(time.Minute)
	second := c.GetOrRefresh(context.Background())

	assert.NotSame(t, first, second)
	assert.Equal(t, int64(2), second.gen)
	assert.Equal(t, clock.Now(), c.FetchedAt())
}

func TestTTL_Invalidate(t *testing.T) {
	var loads atomic.Int64
	c := New("test", time.Hour, func(context.Context) *table {
		return &table{gen: loads.Add(1)}
	})

	assert.True(t, c.FetchedAt().IsZero())
	c.GetOrRefresh(context.Background())
	c.Invalidate()
	assert.True(t, c.FetchedAt().IsZero())
	v := c.GetOrRefresh(context.Background())
	assert.Equal(t, int64(2), v.gen)
}

func TestTTL_ConcurrentMissesLoadOnce(t *testing.T) {
	var loads atomic.Int64
	release := make(chan struct{})
	c := New("test", time.Hour, func(context.Context) *table {
		<-release
		return &table{gen: loads.Add(1)}
	})

	const callers = 16
	results := make([]*table, callers)
	var started, wg sync.WaitGroup
	started.Add(callers)
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			started.Done()
			results[i] = c.GetOrRefresh(context.Background())
		}(i)
	}
	started.Wait()
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), loads.Load())
	for _, r := range results {
		require.NotNil(t, r)
		assert.Same(t, results[0], r)
	}
}

func TestTTL_CancelledCallerDoesNotCancelLoad(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New("test", time.Hour, func(ctx context.Context) *table {
		if ctx.Err() != nil {
			return nil
		}
		return &table{gen: 1}
	})
	v := c.GetOrRefresh(ctx)
	require.NotNil(t, v)
	assert.Equal(t, int64(1), v.gen)
}

func TestTTL_InvalidateDuringLoadDiscardsStaleResult(t *testing.T) {
	var loads atomic.Int64
	started := make(chan struct{})
	release := make(chan struct{})
	c := New("test", time.Minute, func(context.Context) *table {
		n := loads.Add(1)
		if n == 1 {
			close(started)
			<-release
		}
		return &table{gen: n}
	})

	firstCh := make(chan *table, 1)
	go func() { firstCh <- c.GetOrRefresh(context.Background()) }()
	<-started

	c.Invalidate()

	secondCh := make(chan *table, 1)
	go func() { secondCh <- c.GetOrRefresh(context.Background()) }()
	select {
	case second := <-secondCh:
		assert.Equal(t, int64(2), second.gen)
	case <-time.After(2 * time.Second):
		close(release)
		t.Fatal("caller after Invalidate joined the stale load")
	}

	close(release)
	assert.Equal(t, int64(1), (<-firstCh).gen)

	assert.Equal(t, int64(2), c.GetOrRefresh(context.Background()).gen)
	assert.Equal(t, int64(2), loads.Load())
}
