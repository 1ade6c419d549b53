package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "glimpse_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// QueryCacheHits counts query-cache reads served from a fresh entry.
	QueryCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "glimpse_querycache_hits_total",
		Help: "Total query cache hits by query kind",
	}, []string{"query"})

	// QueryCacheMisses counts query-cache reads that had to fetch (miss or stale).
	QueryCacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "glimpse_querycache_misses_total",
		Help: "Total query cache misses by query kind",
	}, []string{"query"})

	// GatewayFailures counts normalized gateway failures by operation.
	GatewayFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "glimpse_gateway_failures_total",
		Help: "Total gateway operations that returned a failure envelope",
	}, []string{"operation"})

	// ToggleRollbacks counts optimistic toggles that were rolled back.
	ToggleRollbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "glimpse_toggle_rollbacks_total",
		Help: "Total optimistic toggle mutations rolled back after a remote failure",
	}, []string{"kind"})

	// FeedPagesFetched counts feed pages fetched from the remote store.
	FeedPagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "glimpse_feed_pages_fetched_total",
		Help: "Total feed pages fetched from the backing store",
	})
)
