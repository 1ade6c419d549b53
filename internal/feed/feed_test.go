package feed

import (
	"context"
	"sync"
	"testing"
	"time"

	"glimpse/internal/models"
	"glimpse/internal/querycache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// feedStub serves pages from a fixed slice of posts, mirroring the gateway's
// cursor math: a full page carries cursor+size as the next cursor.
type feedStub struct {
	mu      sync.Mutex
	posts   []models.Post
	size    int
	fetches int
	fail    bool
	block   chan struct{}
}

func (s *feedStub) FeedPage(_ context.Context, cursor int) models.Result[models.FeedPage] {
	s.mu.Lock()
	s.fetches++
	fail := s.fail
	block := s.block
	s.mu.Unlock()

	if block != nil {
		<-block
	}
	if fail {
		return models.Fail[models.FeedPage]("failed to fetch posts")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	end := cursor + s.size
	if end > len(s.posts) {
		end = len(s.posts)
	}
	page := models.FeedPage{}
	if cursor < len(s.posts) {
		page.Posts = append(page.Posts, s.posts[cursor:end]...)
	}
	if len(page.Posts) == s.size {
		next := cursor + s.size
		page.NextCursor = &next
	}
	return models.OK(&page)
}

func (s *feedStub) fetchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}

func makePosts(n int) []models.Post {
	posts := make([]models.Post, n)
	for i := range posts {
		posts[i] = models.Post{ID: uint(i + 1), Caption: "post"}
	}
	return posts
}

func TestEngine_PaginatesToExhaustion(t *testing.T) {
	t.Parallel()

	src := &feedStub{posts: makePosts(10), size: 2}
	engine := New(src, querycache.New())
	ctx := context.Background()

	for engine.HasNextPage() {
		engine.RequestNextPage(ctx)
		require.NoError(t, engine.Err())
	}

	posts := engine.Posts()
	require.Len(t, posts, 10)
	for i, p := range posts {
		assert.Equal(t, uint(i+1), p.ID, "feed order must be stable across pages")
	}
	assert.Equal(t, StatusReady, engine.Status())
	assert.Len(t, engine.Pages(), 6, "the final empty page marks exhaustion")

	// Further requests are no-ops once exhausted.
	fetched := src.fetchCount()
	engine.RequestNextPage(ctx)
	assert.Equal(t, fetched, src.fetchCount())
}

func TestEngine_PartialLastPageStops(t *testing.T) {
	t.Parallel()

	src := &feedStub{posts: makePosts(5), size: 2}
	engine := New(src, querycache.New())
	ctx := context.Background()

	for engine.HasNextPage() {
		engine.RequestNextPage(ctx)
		require.NoError(t, engine.Err())
	}

	assert.Len(t, engine.Posts(), 5)
	assert.Equal(t, 3, src.fetchCount(), "a short page must not trigger an empty probe")
}

func TestEngine_DeduplicatesInFlightRequests(t *testing.T) {
	t.Parallel()

	src := &feedStub{posts: makePosts(4), size: 2, block: make(chan struct{})}
	engine := New(src, querycache.New())
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		engine.RequestNextPage(ctx)
		close(done)
	}()

	require.Eventually(t, engine.IsFetchingNextPage, time.Second, time.Millisecond)

	// Concurrent triggers while the fetch is outstanding are no-ops.
	engine.RequestNextPage(ctx)
	engine.RequestNextPage(ctx)

	close(src.block)
	<-done

	assert.Equal(t, 1, src.fetchCount())
	assert.Len(t, engine.Posts(), 2)
}

func TestEngine_ErrorKeepsCursorForRetry(t *testing.T) {
	t.Parallel()

	src := &feedStub{posts: makePosts(4), size: 2, fail: true}
	engine := New(src, querycache.New())
	ctx := context.Background()

	engine.RequestNextPage(ctx)
	assert.Equal(t, StatusErrored, engine.Status())
	require.EqualError(t, engine.Err(), "failed to fetch posts")
	assert.Empty(t, engine.Posts())

	src.mu.Lock()
	src.fail = false
	src.mu.Unlock()

	engine.RequestNextPage(ctx)
	assert.Equal(t, StatusReady, engine.Status())
	assert.NoError(t, engine.Err())
	assert.Len(t, engine.Posts(), 2)
}

func TestEngine_RefreshRefetchesStalePages(t *testing.T) {
	t.Parallel()

	src := &feedStub{posts: makePosts(4), size: 2}
	cache := querycache.New()
	engine := New(src, cache)
	ctx := context.Background()

	engine.RequestNextPage(ctx)
	engine.RequestNextPage(ctx)
	require.Len(t, engine.Posts(), 4)

	src.mu.Lock()
	src.posts[0].Caption = "edited"
	src.mu.Unlock()

	// Without invalidation a refresh is served from cache.
	engine.Refresh(ctx)
	assert.Equal(t, "post", engine.Posts()[0].Caption)

	cache.InvalidatePrefix(querycache.FeedPrefix)
	engine.Refresh(ctx)
	assert.Equal(t, "edited", engine.Posts()[0].Caption)
}

func TestEngine_RefreshTruncatesShrunkenFeed(t *testing.T) {
	t.Parallel()

	src := &feedStub{posts: makePosts(6), size: 2}
	cache := querycache.New()
	engine := New(src, cache)
	ctx := context.Background()

	engine.RequestNextPage(ctx)
	engine.RequestNextPage(ctx)
	engine.RequestNextPage(ctx)
	require.Len(t, engine.Posts(), 6)

	src.mu.Lock()
	src.posts = src.posts[:3]
	src.mu.Unlock()
	cache.InvalidatePrefix(querycache.FeedPrefix)

	engine.Refresh(ctx)
	assert.Len(t, engine.Posts(), 3)
	assert.Len(t, engine.Pages(), 2)
}

func TestEngine_RestartDiscardsLateResult(t *testing.T) {
	t.Parallel()

	src := &feedStub{posts: makePosts(4), size: 2, block: make(chan struct{})}
	engine := New(src, querycache.New())
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		engine.RequestNextPage(ctx)
		close(done)
	}()
	require.Eventually(t, engine.IsFetchingNextPage, time.Second, time.Millisecond)

	engine.Restart()
	close(src.block)
	<-done

	assert.Empty(t, engine.Posts(), "a fetch from before the restart must be discarded")
	assert.Equal(t, StatusIdle, engine.Status())
	assert.True(t, engine.HasNextPage())

	engine.RequestNextPage(ctx)
	assert.Len(t, engine.Posts(), 2)
}
