package mocks

import (
	"context"

	"github.com/Gursimran75-way/Group-Chat-Backend/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MessageRepository 是 repository.MessageRepository 的 Mock 实现
type MessageRepository struct {
	mock.Mock
}

func (m *MessageRepository) Save(ctx context.Context, message *domain.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MessageRepository) ListByGroup(ctx context.Context, groupID uint) ([]domain.Message, error) {
	args := m.Called(ctx, groupID)
	var messages []domain.Message
	if v := args.Get(0); v != nil {
		messages = v.([]domain.Message)
	}
	return messages, args.Error(1)
}

func (m *MessageRepository) DeleteByGroup(ctx context.Context, groupID uint) (int64, error) {
	args := m.Called(ctx, groupID)
	return args.Get(0).(int64), args.Error(1)
}
