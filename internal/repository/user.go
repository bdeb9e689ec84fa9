package repository

import (
	"context"

	"github.com/Gursimran75-way/Group-Chat-Backend/internal/domain"
)

// UserRepository 定义了用户数据以及用户侧群组反向引用的存储操作。
type UserRepository interface {
	// FindByID 根据用户 ID 查找用户，不存在时返回 ErrUserNotFound。
	FindByID(ctx context.Context, id uint) (*domain.User, error)

	// FindByIDs 批量查询用户，结果按传入 ID 的顺序排列，缺失的用户会被跳过。
	FindByIDs(ctx context.Context, ids []uint) ([]domain.User, error)

	// FindAll 按 ID 升序返回所有用户。
	FindAll(ctx context.Context) ([]domain.User, error)

	// FindByEmail 根据邮箱查找用户，不存在时返回 ErrUserNotFound。
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindByUsername 根据用户名查找用户，不存在时返回 ErrUserNotFound。
	FindByUsername(ctx context.Context, username string) (*domain.User, error)

	// Save 保存用户信息 (创建或更新)。违反唯一约束时返回 ErrDuplicateEntry。
	Save(ctx context.Context, user *domain.User) error

	// Delete 删除用户及其全部群组反向引用，用户不存在时返回 ErrUserNotFound。
	Delete(ctx context.Context, id uint) error

	// AddGroupReference 将群组加入用户的成员反向引用，重复添加是 no-op。
	AddGroupReference(ctx context.Context, userID, groupID uint) error

	// RemoveGroupReference 从用户的反向引用中移除群组。
	// 用户或引用不存在时不返回错误，可安全重试。
	RemoveGroupReference(ctx context.Context, userID, groupID uint) error

	// ListGroupIDs 返回用户所属群组的 ID 列表。
	ListGroupIDs(ctx context.Context, userID uint) ([]uint, error)
}
