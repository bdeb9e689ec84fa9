package redisstate

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gursimran75-way/Group-Chat-Backend/internal/repository"
)

func newTestRepository(t *testing.T) (*RedisSessionRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSessionRepository(client, "test:"), mr
}

func TestRedisSessionRepository_RefreshToken(t *testing.T) {
	repo, mr := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.GetRefreshToken(ctx, 7)
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)

	require.NoError(t, repo.SaveRefreshToken(ctx, 7, "first", time.Hour))
	require.NoError(t, repo.SaveRefreshToken(ctx, 7, "second", time.Hour))
	token, err := repo.GetRefreshToken(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "second", token, "同一用户只保留最新的刷新令牌")
	assert.Equal(t, time.Hour, mr.TTL("test:user:7:refresh_token"))

	mr.FastForward(2 * time.Hour)
	_, err = repo.GetRefreshToken(ctx, 7)
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)

	require.NoError(t, repo.SaveRefreshToken(ctx, 8, "t", time.Hour))
	require.NoError(t, repo.DeleteRefreshToken(ctx, 8))
	_, err = repo.GetRefreshToken(ctx, 8)
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestRedisSessionRepository_CheckRateLimit_FixedWindow(t *testing.T) {
	repo, mr := newTestRepository(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		exceeded, err := repo.CheckRateLimit(ctx, "ip:1", 2, time.Minute)
		require.NoError(t, err)
		assert.False(t, exceeded)
	}
	exceeded, err := repo.CheckRateLimit(ctx, "ip:1", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, exceeded)
	assert.Equal(t, time.Minute, mr.TTL("test:ratelimit:ip:1"))

	// 窗口内的请求不延长过期时间
	mr.FastForward(30 * time.Second)
	_, err = repo.CheckRateLimit(ctx, "ip:1", 2, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, mr.TTL("test:ratelimit:ip:1"))

	mr.FastForward(31 * time.Second)
	exceeded, err = repo.CheckRateLimit(ctx, "ip:1", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, exceeded, "窗口过期后重新计数")
}

func TestRedisSessionRepository_CheckRateLimit_RepairsMissingExpiry(t *testing.T) {
	repo, mr := newTestRepository(t)
	ctx := context.Background()
	// 模拟上次 INCR 成功但设置过期失败留下的永久计数器
	require.NoError(t, mr.Set("test:ratelimit:ip:2", "50"))
	require.Zero(t, mr.TTL("test:ratelimit:ip:2"))

	exceeded, err := repo.CheckRateLimit(ctx, "ip:2", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, exceeded)
	assert.Equal(t, time.Minute, mr.TTL("test:ratelimit:ip:2"))

	mr.FastForward(time.Minute + time.Second)
	exceeded, err = repo.CheckRateLimit(ctx, "ip:2", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, exceeded, "计数器过期后不再被限流")
}

func TestRedisSessionRepository_CheckRateLimit_RedisDown(t *testing.T) {
	repo, mr := newTestRepository(t)
	mr.Close()

	_, err := repo.CheckRateLimit(context.Background(), "ip:3", 2, time.Minute)
	assert.Error(t, err)
}
