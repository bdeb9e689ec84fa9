package mocks

import (
	"context"

	"github.com/Gursimran75-way/Group-Chat-Backend/internal/domain"
	"github.com/stretchr/testify/mock"
)

// GroupRepository 是 repository.GroupRepository 的 Mock 实现
type GroupRepository struct {
	mock.Mock
}

func (m *GroupRepository) FindByID(ctx context.Context, id uint) (*domain.Group, error) {
	args := m.Called(ctx, id)
	var group *domain.Group
	if v := args.Get(0); v != nil {
		group = v.(*domain.Group)
	}
	return group, args.Error(1)
}

func (m *GroupRepository) FindByInviteToken(ctx context.Context, token string) (*domain.Group, error) {
	args := m.Called(ctx, token)
	var group *domain.Group
	if v := args.Get(0); v != nil {
		group = v.(*domain.Group)
	}
	return group, args.Error(1)
}

func (m *GroupRepository) Save(ctx context.Context, group *domain.Group) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *GroupRepository) Rename(ctx context.Context, id uint, name string) (*domain.Group, error) {
	args := m.Called(ctx, id, name)
	var group *domain.Group
	if v := args.Get(0); v != nil {
		group = v.(*domain.Group)
	}
	return group, args.Error(1)
}

func (m *GroupRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *GroupRepository) FindPublic(ctx context.Context) ([]domain.Group, error) {
	args := m.Called(ctx)
	var groups []domain.Group
	if v := args.Get(0); v != nil {
		groups = v.([]domain.Group)
	}
	return groups, args.Error(1)
}

func (m *GroupRepository) FindByAdmin(ctx context.Context, adminID uint) ([]domain.Group, error) {
	args := m.Called(ctx, adminID)
	var groups []domain.Group
	if v := args.Get(0); v != nil {
		groups = v.([]domain.Group)
	}
	return groups, args.Error(1)
}

func (m *GroupRepository) CountByAdmin(ctx context.Context, adminID uint) (int64, error) {
	args := m.Called(ctx, adminID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *GroupRepository) IsInviteTokenExists(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}
