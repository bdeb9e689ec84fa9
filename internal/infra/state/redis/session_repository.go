package redisstate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Gursimran75-way/Group-Chat-Backend/internal/repository"
)

// RedisSessionRepository 是 SessionRepository 接口的 Redis 实现
type RedisSessionRepository struct {
	client    *redis.Client
	keyPrefix string // Redis key 前缀，方便多个环境共用实例
}

// NewRedisSessionRepository 创建 RedisSessionRepository 实例
func NewRedisSessionRepository(client *redis.Client, keyPrefix string) *RedisSessionRepository {
	if client == nil {
		panic("redis client cannot be nil for RedisSessionRepository")
	}
	if keyPrefix == "" {
		keyPrefix = "gc:" // 默认前缀 "gc:" (group chat)
	}
	return &RedisSessionRepository{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// --- Key Generation Helpers ---
func (r *RedisSessionRepository) refreshTokenKey(userID uint) string {
	return fmt.Sprintf("%suser:%d:refresh_token", r.keyPrefix, userID)
}

func (r *RedisSessionRepository) rateLimitKey(key string) string {
	return fmt.Sprintf("%sratelimit:%s", r.keyPrefix, key)
}

// SaveRefreshToken 覆盖保存用户的刷新令牌，同一用户同时只有一个有效令牌
func (r *RedisSessionRepository) SaveRefreshToken(ctx context.Context, userID uint, token string, ttl time.Duration) error {
	key := r.refreshTokenKey(userID)
	if err := r.client.Set(ctx, key, token, ttl).Err(); err != nil {
		return fmt.Errorf("redis: failed to save refresh token for user %d on key %s: %w", userID, key, err)
	}
	return nil
}

// GetRefreshToken 获取用户的刷新令牌
func (r *RedisSessionRepository) GetRefreshToken(ctx context.Context, userID uint) (string, error) {
	key := r.refreshTokenKey(userID)
	token, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", repository.ErrSessionNotFound
		}
		return "", fmt.Errorf("redis: failed to get refresh token for user %d from %s: %w", userID, key, err)
	}
	return token, nil
}

// DeleteRefreshToken 删除用户的刷新令牌
func (r *RedisSessionRepository) DeleteRefreshToken(ctx context.Context, userID uint) error {
	key := r.refreshTokenKey(userID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis: failed to delete refresh token for user %d on key %s: %w", userID, key, err)
	}
	return nil
}

// CheckRateLimit 使用固定窗口计数器检查频率限制。
// INCR 和 TTL 在同一事务中执行；计数器没有过期时间 (新建，或上次设置过期失败) 时补上窗口，
// 已有过期时间的窗口不会被延长。
func (r *RedisSessionRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	fullKey := r.rateLimitKey(key)
	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, fullKey)
		ttl = pipe.TTL(ctx, fullKey)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("redis: failed to increment rate limit counter %s: %w", fullKey, err)
	}
	// TTL 为负表示 key 没有过期时间
	if ttl.Val() < 0 {
		if err := r.client.Expire(ctx, fullKey, window).Err(); err != nil {
			return false, fmt.Errorf("redis: failed to set rate limit window on %s: %w", fullKey, err)
		}
	}
	return incr.Val() > int64(limit), nil
}
