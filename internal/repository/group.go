package repository

import (
	"context"

	"github.com/Gursimran75-way/Group-Chat-Backend/internal/domain"
)

// GroupRepository 定义了群组 (含成员集合与邀请列表) 的存储操作。
// 群组行与它的邀请列表视为一个文档，Save 需要原子地写入两者。
type GroupRepository interface {
	// FindByID 根据 ID 查找群组并加载邀请列表，不存在时返回 ErrGroupNotFound。
	FindByID(ctx context.Context, id uint) (*domain.Group, error)

	// FindByInviteToken 查找邀请列表中包含该 token 的群组，不存在时返回 ErrGroupNotFound。
	FindByInviteToken(ctx context.Context, token string) (*domain.Group, error)

	// Save 创建或更新群组，并用 group.Invitations 替换已持久化的邀请列表。
	Save(ctx context.Context, group *domain.Group) error

	// Rename 修改群组名称并返回更新后的群组，不存在时返回 ErrGroupNotFound。
	Rename(ctx context.Context, id uint, name string) (*domain.Group, error)

	// Delete 删除群组及其邀请列表。群组不存在时不返回错误。
	Delete(ctx context.Context, id uint) error

	// FindPublic 返回所有公开群组。
	FindPublic(ctx context.Context) ([]domain.Group, error)

	// FindByAdmin 返回指定用户作为管理员的所有群组。
	FindByAdmin(ctx context.Context, adminID uint) ([]domain.Group, error)

	// CountByAdmin 统计指定用户作为管理员的群组数量。
	CountByAdmin(ctx context.Context, adminID uint) (int64, error)

	// IsInviteTokenExists 检查邀请 token 是否已被任意群组使用。
	IsInviteTokenExists(ctx context.Context, token string) (bool, error)
}
