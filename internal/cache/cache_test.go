package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withMiniredis points the package client at an in-process server; the
// client is package-global, so these tests must not run in parallel.
func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	InitRedis(mr.Addr())
	require.NotNil(t, GetClient(), "miniredis must be reachable")
	t.Cleanup(func() { client = nil })
	return mr
}

func TestInitRedis_UnreachableDisablesCache(t *testing.T) {
	InitRedis("127.0.0.1:1")
	assert.Nil(t, GetClient())

	InitRedis("not-a-url://%%")
	assert.Nil(t, GetClient())
}

func TestJSONRoundTrip(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	found, err := GetJSON(ctx, "missing", &payload{})
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, UserKey(1), payload{Name: "jane", Count: 3}, UserTTL))

	var got payload
	found, err = GetJSON(ctx, UserKey(1), &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload{Name: "jane", Count: 3}, got)
}

func TestAside(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()
	fetches := 0
	fetch := func(dest *string) func() error {
		return func() error {
			fetches++
			*dest = "from-db"
			return nil
		}
	}

	var v string
	require.NoError(t, Aside(ctx, "k", &v, time.Minute, fetch(&v)))
	assert.Equal(t, "from-db", v)
	assert.Equal(t, 1, fetches)

	var again string
	require.NoError(t, Aside(ctx, "k", &again, time.Minute, fetch(&again)))
	assert.Equal(t, "from-db", again)
	assert.Equal(t, 1, fetches, "second read is served from the cache")

	Invalidate(ctx, "k")
	var third string
	require.NoError(t, Aside(ctx, "k", &third, time.Minute, fetch(&third)))
	assert.Equal(t, 2, fetches)
}

func TestAside_FetchErrorPropagates(t *testing.T) {
	withMiniredis(t)

	var v string
	err := Aside(context.Background(), "k", &v, time.Minute, func() error {
		return errors.New("db down")
	})
	assert.EqualError(t, err, "db down")
}

func TestAside_NilClientFallsThrough(t *testing.T) {
	client = nil
	fetches := 0

	var v string
	for i := 0; i < 2; i++ {
		require.NoError(t, Aside(context.Background(), "k", &v, time.Minute, func() error {
			fetches++
			v = "from-db"
			return nil
		}))
	}
	assert.Equal(t, 2, fetches, "without redis every read goes to the fetch path")
}

func TestFeedEpoch(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	assert.Zero(t, FeedEpoch(ctx), "epoch starts at zero")
	keyBefore := FeedPageKey(FeedEpoch(ctx), 0, 10)

	BumpFeedEpoch(ctx)
	assert.Equal(t, int64(1), FeedEpoch(ctx))
	keyAfter := FeedPageKey(FeedEpoch(ctx), 0, 10)
	assert.NotEqual(t, keyBefore, keyAfter, "bumping the epoch retires all page keys")

	// Old-epoch entries are unreachable and fall out via TTL.
	require.NoError(t, SetJSON(ctx, keyBefore, []int{1}, FeedTTL))
	mr.FastForward(2 * FeedTTL)
	found, err := GetJSON(ctx, keyBefore, &[]int{})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidateUser(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, UserKey(3), "cached", UserTTL))
	InvalidateUser(ctx, 3)

	var v string
	found, err := GetJSON(ctx, UserKey(3), &v)
	require.NoError(t, err)
	assert.False(t, found)
}
