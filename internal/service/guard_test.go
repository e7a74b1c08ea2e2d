package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kvk-connect/internal/common/database"
	"kvk-connect/internal/common/logger"
)

func newTestGuard(t *testing.T, ttl time.Duration) (*FetchGuard, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := &database.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	return NewFetchGuard(client, ttl, logger.NewNoOpLogger()), mr
}

func TestFetchGuardMarkAndCheck(t *testing.T) {
	guard, _ := newTestGuard(t, time.Hour)
	ctx := context.Background()

	assert.False(t, guard.RecentlyFetched(ctx, "basisprofiel:12345678"))

	guard.MarkFetched(ctx, "basisprofiel:12345678")

	assert.True(t, guard.RecentlyFetched(ctx, "basisprofiel:12345678"))
	assert.False(t, guard.RecentlyFetched(ctx, "basisprofiel:87654321"))
}

func TestFetchGuardExpires(t *testing.T) {
	guard, mr := newTestGuard(t, time.Minute)
	ctx := context.Background()

	guard.MarkFetched(ctx, "basisprofiel:12345678")
	require.True(t, guard.RecentlyFetched(ctx, "basisprofiel:12345678"))

	mr.FastForward(2 * time.Minute)

	assert.False(t, guard.RecentlyFetched(ctx, "basisprofiel:12345678"))
}

func TestNilGuardIsMiss(t *testing.T) {
	var guard *FetchGuard

	assert.False(t, guard.RecentlyFetched(context.Background(), "x"))
	guard.MarkFetched(context.Background(), "x") // must not panic
}

func TestFetchGuardSurvivesRedisDown(t *testing.T) {
	guard, mr := newTestGuard(t, time.Minute)
	mr.Close()

	assert.False(t, guard.RecentlyFetched(context.Background(), "x"))
	guard.MarkFetched(context.Background(), "x") // logged, not fatal
}
