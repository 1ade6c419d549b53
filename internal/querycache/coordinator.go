package querycache

import "fmt"

// Query key inventory. The feed prefix groups every cached feed page so one
// prefix invalidation retires them all.
const (
	FeedPrefix = "feed:"
	userPrefix = "user:"
	postPrefix = "post:"
)

func FeedPageKey(cursor int) string {
	return fmt.Sprintf("%s%d", FeedPrefix, cursor)
}

func UserKey(userID uint) string {
	return fmt.Sprintf("%s%d", userPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf("%s%d", postPrefix, postID)
}

// Coordinator applies the invalidation rules after successful mutations.
// The policy is at-least-once: over-invalidation is acceptable, serving data
// known to be wrong is not.
type Coordinator struct {
	cache *Cache
}

// NewCoordinator creates a Coordinator over the given cache.
func NewCoordinator(cache *Cache) *Coordinator {
	return &Coordinator{cache: cache}
}

// Cache exposes the underlying query cache.
func (c *Coordinator) Cache() *Cache {
	return c.cache
}

// PostMutated marks the feed and the post's own entry stale.
func (c *Coordinator) PostMutated(postID uint) {
	c.cache.InvalidatePrefix(FeedPrefix)
	c.cache.Invalidate(PostKey(postID))
}

// UserMutated marks the user's entry and the feed (which embeds user
// summaries) stale.
func (c *Coordinator) UserMutated(userID uint) {
	c.cache.Invalidate(UserKey(userID))
	c.cache.InvalidatePrefix(FeedPrefix)
}
