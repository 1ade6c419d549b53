package querycache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetCachesResult(t *testing.T) {
	t.Parallel()

	c := New()
	ctx := context.Background()
	var fetches int32

	fetch := func(context.Context) (any, error) {
		atomic.AddInt32(&fetches, 1)
		return "value", nil
	}

	v, err := c.Get(ctx, "user:1", fetch)
	require.NoError(t, err)
	assert.Equal(t, "value", v)

	v, err = c.Get(ctx, "user:1", fetch)
	require.NoError(t, err)
	assert.Equal(t, "value", v)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fetches), "second read must be served from cache")
}

func TestCache_InvalidateForcesRefetchOnNextRead(t *testing.T) {
	t.Parallel()

	c := New()
	ctx := context.Background()
	var fetches int32

	fetch := func(context.Context) (any, error) {
		return atomic.AddInt32(&fetches, 1), nil
	}

	_, err := c.Get(ctx, "post:7", fetch)
	require.NoError(t, err)

	c.Invalidate(PostKey(7))
	assert.True(t, c.Stale(PostKey(7)))

	// Invalidation alone must not refetch.
	assert.Equal(t, int32(1), atomic.LoadInt32(&fetches))

	v, err := c.Get(ctx, "post:7", fetch)
	require.NoError(t, err)
	assert.Equal(t, int32(2), v)
	assert.False(t, c.Stale(PostKey(7)))
}

func TestCache_InvalidatePrefix(t *testing.T) {
	t.Parallel()

	c := New()
	ctx := context.Background()
	fetch := func(context.Context) (any, error) { return 1, nil }

	_, _ = c.Get(ctx, FeedPageKey(0), fetch)
	_, _ = c.Get(ctx, FeedPageKey(10), fetch)
	_, _ = c.Get(ctx, UserKey(3), fetch)

	c.InvalidatePrefix(FeedPrefix)

	assert.True(t, c.Stale(FeedPageKey(0)))
	assert.True(t, c.Stale(FeedPageKey(10)))
	assert.False(t, c.Stale(UserKey(3)), "unrelated keys stay fresh")
}

func TestCache_SingleFlight(t *testing.T) {
	t.Parallel()

	c := New()
	ctx := context.Background()
	var fetches int32
	release := make(chan struct{})

	fetch := func(context.Context) (any, error) {
		atomic.AddInt32(&fetches, 1)
		<-release
		return "shared", nil
	}

	const readers = 10
	var wg sync.WaitGroup
	results := make([]any, readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.Get(ctx, "feed:0", fetch)
			require.NoError(t, err)
			results[i] = v
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&fetches), "concurrent readers must share one flight")
	for _, v := range results {
		assert.Equal(t, "shared", v)
	}
}

func TestCache_FetchErrorNotCached(t *testing.T) {
	t.Parallel()

	c := New()
	ctx := context.Background()
	var fetches int32

	fetch := func(context.Context) (any, error) {
		if atomic.AddInt32(&fetches, 1) == 1 {
			return nil, errors.New("boom")
		}
		return "recovered", nil
	}

	_, err := c.Get(ctx, "user:9", fetch)
	require.Error(t, err)
	_, ok := c.Peek("user:9")
	assert.False(t, ok)

	v, err := c.Get(ctx, "user:9", fetch)
	require.NoError(t, err)
	assert.Equal(t, "recovered", v)
}

func TestCoordinator_Rules(t *testing.T) {
	t.Parallel()

	c := New()
	ctx := context.Background()
	fetch := func(context.Context) (any, error) { return 1, nil }
	_, _ = c.Get(ctx, FeedPageKey(0), fetch)
	_, _ = c.Get(ctx, PostKey(5), fetch)
	_, _ = c.Get(ctx, UserKey(2), fetch)

	coord := NewCoordinator(c)

	coord.PostMutated(5)
	assert.True(t, c.Stale(FeedPageKey(0)))
	assert.True(t, c.Stale(PostKey(5)))
	assert.False(t, c.Stale(UserKey(2)))

	_, _ = c.Get(ctx, FeedPageKey(0), fetch)
	coord.UserMutated(2)
	assert.True(t, c.Stale(UserKey(2)))
	assert.True(t, c.Stale(FeedPageKey(0)), "feed embeds user summaries")
}
