// Package mocks 提供基于 testify/mock 的仓库接口 Mock 实现。
package mocks

import (
	"context"

	"github.com/Gursimran75-way/Group-Chat-Backend/internal/domain"
	"github.com/stretchr/testify/mock"
)

// UserRepository 是 repository.UserRepository 的 Mock 实现
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	args := m.Called(ctx, id)
	var user *domain.User
	if v := args.Get(0); v != nil {
		user = v.(*domain.User)
	}
	return user, args.Error(1)
}

func (m *UserRepository) FindByIDs(ctx context.Context, ids []uint) ([]domain.User, error) {
	args := m.Called(ctx, ids)
	var users []domain.User
	if v := args.Get(0); v != nil {
		users = v.([]domain.User)
	}
	return users, args.Error(1)
}

func (m *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	var users []domain.User
	if v := args.Get(0); v != nil {
		users = v.([]domain.User)
	}
	return users, args.Error(1)
}

func (m *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	var user *domain.User
	if v := args.Get(0); v != nil {
		user = v.(*domain.User)
	}
	return user, args.Error(1)
}

func (m *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	var user *domain.User
	if v := args.Get(0); v != nil {
		user = v.(*domain.User)
	}
	return user, args.Error(1)
}

func (m *UserRepository) Save(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *UserRepository) AddGroupReference(ctx context.Context, userID, groupID uint) error {
	args := m.Called(ctx, userID, groupID)
	return args.Error(0)
}

func (m *UserRepository) RemoveGroupReference(ctx context.Context, userID, groupID uint) error {
	args := m.Called(ctx, userID, groupID)
	return args.Error(0)
}

func (m *UserRepository) ListGroupIDs(ctx context.Context, userID uint) ([]uint, error) {
	args := m.Called(ctx, userID)
	var ids []uint
	if v := args.Get(0); v != nil {
		ids = v.([]uint)
	}
	return ids, args.Error(1)
}
