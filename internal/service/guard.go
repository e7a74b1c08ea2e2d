// Package service orchestrates the sync flows: which numbers to fetch, the
// fetch-map-store pipeline per record type, the Mutatieservice reader and
// the daemon loop.
package service

import (
	"context"
	"time"

	"kvk-connect/internal/common/database"
	"kvk-connect/internal/common/logger"
)

// FetchGuard is the Redis-backed recent-fetch cache. It keeps daemon cycles
// from refetching a number that was just stored, for example when a signal
// arrives right after a backfill. The guard is advisory: Redis being down
// only means extra API calls.
type FetchGuard struct {
	redis  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

// NewFetchGuard builds a guard with the given entry TTL.
func NewFetchGuard(redis *database.RedisClient, ttl time.Duration, log logger.Logger) *FetchGuard {
	return &FetchGuard{redis: redis, ttl: ttl, logger: log}
}

// RecentlyFetched reports whether the key was marked within the TTL. Cache
// errors count as a miss.
func (g *FetchGuard) RecentlyFetched(ctx context.Context, key string) bool {
	if g == nil || g.redis == nil {
		return false
	}
	_, err := g.redis.Get(ctx, "kvk:fetched:"+key)
	return err == nil
}

// MarkFetched records that the key was just fetched.
func (g *FetchGuard) MarkFetched(ctx context.Context, key string) {
	if g == nil || g.redis == nil {
		return
	}
	if err := g.redis.Set(ctx, "kvk:fetched:"+key, "1", g.ttl); err != nil {
		g.logger.Warn("fetch guard write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}
