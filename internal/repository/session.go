package repository

import (
	"context"
	"time"
)

// SessionRepository 定义了登录会话相关的短期状态，通常由 Redis 实现。
type SessionRepository interface {
	// SaveRefreshToken 保存用户当前的刷新令牌，ttl 到期后自动失效。
	SaveRefreshToken(ctx context.Context, userID uint, token string, ttl time.Duration) error

	// GetRefreshToken 获取用户当前的刷新令牌，不存在时返回 ErrSessionNotFound。
	GetRefreshToken(ctx context.Context, userID uint) (string, error)

	// DeleteRefreshToken 删除用户的刷新令牌 (登出)。
	DeleteRefreshToken(ctx context.Context, userID uint) error

	// CheckRateLimit 检查给定 key 的请求频率是否超限，并递增计数。
	// 返回 true 表示超限。
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
