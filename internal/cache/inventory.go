package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix     = "user:%d"
	FeedPageKeyPrefix = "feed:%d:%d:%d"

	feedEpochKey = "feed:epoch"
)

const (
	UserTTL = 5 * time.Minute
	FeedTTL = time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

// FeedPageKey includes the current feed epoch so that bumping the epoch
// retires every cached page at once; stale-epoch keys fall out via TTL.
func FeedPageKey(epoch int64, offset, limit int) string {
	return fmt.Sprintf(FeedPageKeyPrefix, epoch, offset, limit)
}

// FeedEpoch returns the current feed cache epoch, 0 when unset or uncached.
func FeedEpoch(ctx context.Context) int64 {
	if client == nil {
		return 0
	}
	epoch, err := client.Get(ctx, feedEpochKey).Int64()
	if err != nil {
		return 0
	}
	return epoch
}

// BumpFeedEpoch invalidates all cached feed pages.
func BumpFeedEpoch(ctx context.Context) {
	if client != nil {
		client.Incr(ctx, feedEpochKey)
	}
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}
