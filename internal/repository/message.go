package repository

import (
	"context"

	"github.com/Gursimran75-way/Group-Chat-Backend/internal/domain"
)

// MessageRepository 定义了群组消息的存储操作。
type MessageRepository interface {
	// Save 保存一条消息。
	Save(ctx context.Context, message *domain.Message) error

	// ListByGroup 按 CreatedAt 升序返回群组的全部消息，时间相同时按插入顺序。
	ListByGroup(ctx context.Context, groupID uint) ([]domain.Message, error)

	// DeleteByGroup 删除群组的全部消息并返回删除数量，可安全重试。
	DeleteByGroup(ctx context.Context, groupID uint) (int64, error)
}
