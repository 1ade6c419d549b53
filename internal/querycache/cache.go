// Package querycache is the client-side request cache: query results keyed by
// query identity, with stale marking and single-flight read-through. Entries
// are in-memory only; invalidation never refetches, the next read does.
package querycache

import (
	"context"
	"strings"
	"sync"

	"glimpse/internal/observability"

	"golang.org/x/sync/singleflight"
)

type entry struct {
	value any
	stale bool
}

// Cache stores query results by key.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	group   singleflight.Group
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{entries: make(map[string]*entry)}
}

// Get returns the cached value for key when fresh; on miss or stale it runs
// fetch under single-flight, stores the result and returns it. Concurrent
// callers for the same key share one fetch.
func (c *Cache) Get(ctx context.Context, key string, fetch func(ctx context.Context) (any, error)) (any, error) {
	kind := keyKind(key)

	c.mu.Lock()
	if e, ok := c.entries[key]; ok && !e.stale {
		c.mu.Unlock()
		observability.QueryCacheHits.WithLabelValues(kind).Inc()
		return e.value, nil
	}
	c.mu.Unlock()
	observability.QueryCacheMisses.WithLabelValues(kind).Inc()

	v, err, _ := c.group.Do(key, func() (any, error) {
		// A concurrent flight may have refreshed the entry already.
		c.mu.Lock()
		if e, ok := c.entries[key]; ok && !e.stale {
			c.mu.Unlock()
			return e.value, nil
		}
		c.mu.Unlock()

		value, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = &entry{value: value}
		c.mu.Unlock()
		return value, nil
	})
	return v, err
}

// Peek returns the cached value and whether it is present and fresh.
func (c *Cache) Peek(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || e.stale {
		return nil, false
	}
	return e.value, true
}

// Stale reports whether the key is present but marked stale.
func (c *Cache) Stale(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return ok && e.stale
}

// Invalidate marks the given keys stale. Unknown keys are ignored.
func (c *Cache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		if e, ok := c.entries[k]; ok {
			e.stale = true
		}
	}
}

// InvalidatePrefix marks every key with the given prefix stale.
func (c *Cache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if strings.HasPrefix(k, prefix) {
			e.stale = true
		}
	}
}

// DropPrefix removes every key with the given prefix.
func (c *Cache) DropPrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}

// keyKind reduces a cache key to its leading segment for metric labels.
func keyKind(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
