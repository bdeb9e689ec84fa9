package gormpersistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Gursimran75-way/Group-Chat-Backend/internal/domain"
)

// GormMessageRepository 是 MessageRepository 接口的 GORM 实现
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository 创建 GormMessageRepository 实例
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	if db == nil {
		panic("database connection cannot be nil for GormMessageRepository")
	}
	return &GormMessageRepository{db: db}
}

// Save 实现保存单条消息
func (r *GormMessageRepository) Save(ctx context.Context, message *domain.Message) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("gorm: save message for group %d: %w", message.GroupID, err)
	}
	return nil
}

// ListByGroup 按 created_at 升序返回消息，主键作为同一时间戳下的插入顺序
func (r *GormMessageRepository) ListByGroup(ctx context.Context, groupID uint) ([]domain.Message, error) {
	messages := []domain.Message{}
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list messages for group %d: %w", groupID, err)
	}
	return messages, nil
}

// DeleteByGroup 批量删除群组的所有消息
func (r *GormMessageRepository) DeleteByGroup(ctx context.Context, groupID uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("group_id = ?", groupID).Delete(&domain.Message{})
	if result.Error != nil {
		return 0, fmt.Errorf("gorm: delete messages for group %d: %w", groupID, result.Error)
	}
	return result.RowsAffected, nil
}
