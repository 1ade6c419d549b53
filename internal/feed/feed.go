// Package feed implements cursor-based feed pagination: a forward-only,
// restartable sequence of pages with deduplicated in-flight fetches.
package feed

import (
	"context"
	"errors"
	"sync"

	"glimpse/internal/models"
	"glimpse/internal/observability"
	"glimpse/internal/querycache"
)

// Status is the engine's lifecycle state.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusErrored Status = "errored"
)

// Source fetches one feed page by offset cursor.
type Source interface {
	FeedPage(ctx context.Context, cursor int) models.Result[models.FeedPage]
}

// Engine manages the page sequence. All methods are safe for concurrent use;
// RequestNextPage is idempotent while a fetch is outstanding or the sequence
// is exhausted.
type Engine struct {
	source Source
	cache  *querycache.Cache

	mu        sync.Mutex
	cursors   []int
	pages     map[int]models.FeedPage
	next      int
	exhausted bool
	fetching  bool
	status    Status
	err       error
	gen       uint64
}

// New creates an Engine reading through the given query cache.
func New(source Source, cache *querycache.Cache) *Engine {
	return &Engine{
		source: source,
		cache:  cache,
		pages:  make(map[int]models.FeedPage),
		status: StatusIdle,
	}
}

// RequestNextPage loads the page at the current cursor. It is a no-op while a
// fetch is outstanding or after the sequence is exhausted, so proximity
// signals may call it repeatedly.
func (e *Engine) RequestNextPage(ctx context.Context) {
	e.mu.Lock()
	if e.fetching || e.exhausted {
		e.mu.Unlock()
		return
	}
	cursor := e.next
	gen := e.gen
	e.fetching = true
	if e.status == StatusIdle {
		e.status = StatusLoading
	}
	e.mu.Unlock()

	page, err := e.loadPage(ctx, cursor)

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen {
		// Restarted while the fetch was in flight; discard the late result.
		return
	}
	e.fetching = false
	if err != nil {
		e.status = StatusErrored
		e.err = err
		return
	}

	if _, loaded := e.pages[cursor]; !loaded {
		e.cursors = append(e.cursors, cursor)
	}
	e.pages[cursor] = page
	e.advance(page)
	e.status = StatusReady
	e.err = nil
}

// Refresh re-reads every loaded page; pages marked stale in the cache are
// refetched. The cursor chain is rebuilt, so a shrunken feed truncates.
func (e *Engine) Refresh(ctx context.Context) {
	e.mu.Lock()
	if e.fetching {
		e.mu.Unlock()
		return
	}
	cursors := make([]int, len(e.cursors))
	copy(cursors, e.cursors)
	gen := e.gen
	e.fetching = true
	e.mu.Unlock()

	refreshed := make(map[int]models.FeedPage, len(cursors))
	kept := cursors[:0]
	var err error
	for _, cursor := range cursors {
		var page models.FeedPage
		page, err = e.loadPage(ctx, cursor)
		if err != nil {
			break
		}
		refreshed[cursor] = page
		kept = append(kept, cursor)
		if page.NextCursor == nil {
			break
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen {
		return
	}
	e.fetching = false
	if err != nil {
		e.status = StatusErrored
		e.err = err
		return
	}
	e.cursors = kept
	e.pages = refreshed
	e.exhausted = false
	if len(kept) > 0 {
		e.advance(refreshed[kept[len(kept)-1]])
	} else {
		e.next = 0
	}
	e.status = StatusReady
	e.err = nil
}

// Restart resets the engine to an empty sequence starting at cursor 0. An
// in-flight fetch for the previous generation is discarded on arrival.
func (e *Engine) Restart() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gen++
	e.cursors = nil
	e.pages = make(map[int]models.FeedPage)
	e.next = 0
	e.exhausted = false
	e.fetching = false
	e.status = StatusIdle
	e.err = nil
}

// Pages returns the loaded pages in cursor order.
func (e *Engine) Pages() []models.FeedPage {
	e.mu.Lock()
	defer e.mu.Unlock()
	pages := make([]models.FeedPage, 0, len(e.cursors))
	for _, c := range e.cursors {
		pages = append(pages, e.pages[c])
	}
	return pages
}

// Posts returns all loaded posts as one flat ordered sequence.
func (e *Engine) Posts() []models.Post {
	e.mu.Lock()
	defer e.mu.Unlock()
	var posts []models.Post
	for _, c := range e.cursors {
		posts = append(posts, e.pages[c].Posts...)
	}
	return posts
}

// HasNextPage reports whether the sequence has more pages to fetch.
func (e *Engine) HasNextPage() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.exhausted
}

// IsFetchingNextPage reports whether a fetch is outstanding.
func (e *Engine) IsFetchingNextPage() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fetching
}

// Status returns the engine's lifecycle state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Err returns the last fetch error, nil after a successful fetch.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// loadPage reads one page through the cache; misses and stale entries hit the
// source under single-flight.
func (e *Engine) loadPage(ctx context.Context, cursor int) (models.FeedPage, error) {
	v, err := e.cache.Get(ctx, querycache.FeedPageKey(cursor), func(ctx context.Context) (any, error) {
		res := e.source.FeedPage(ctx, cursor)
		if !res.Success {
			return nil, errors.New(res.Message)
		}
		observability.FeedPagesFetched.Inc()
		return *res.Data, nil
	})
	if err != nil {
		return models.FeedPage{}, err
	}
	return v.(models.FeedPage), nil
}

// advance moves the cursor according to the fetched page's next marker.
// caller holds e.mu.
func (e *Engine) advance(page models.FeedPage) {
	if page.NextCursor != nil {
		e.next = *page.NextCursor
		e.exhausted = false
	} else {
		e.exhausted = true
	}
}
