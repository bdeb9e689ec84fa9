package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// SessionRepository 是 repository.SessionRepository 的 Mock 实现
type SessionRepository struct {
	mock.Mock
}

func (m *SessionRepository) SaveRefreshToken(ctx context.Context, userID uint, token string, ttl time.Duration) error {
	args := m.Called(ctx, userID, token, ttl)
	return args.Error(0)
}

func (m *SessionRepository) GetRefreshToken(ctx context.Context, userID uint) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *SessionRepository) DeleteRefreshToken(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *SessionRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}
