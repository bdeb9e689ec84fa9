package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Gursimran75-way/Group-Chat-Backend/internal/domain"
	"github.com/Gursimran75-way/Group-Chat-Backend/internal/repository"
)

// GormGroupRepository 是 GroupRepository 接口的 GORM 实现。
// 成员集合以 JSON 列存在 groups 表中，邀请列表存放在 group_invitations 表。
type GormGroupRepository struct {
	db *gorm.DB
}

// NewGormGroupRepository 创建 GormGroupRepository 实例
func NewGormGroupRepository(db *gorm.DB) *GormGroupRepository {
	if db == nil {
		panic("database connection cannot be nil for GormGroupRepository")
	}
	return &GormGroupRepository{db: db}
}

// FindByID 实现根据群组 ID 查找群组 (包含邀请列表)
func (r *GormGroupRepository) FindByID(ctx context.Context, id uint) (*domain.Group, error) {
	var group domain.Group
	err := r.db.WithContext(ctx).First(&group, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrGroupNotFound
		}
		return nil, fmt.Errorf("gorm: find group by id %d: %w", id, err)
	}
	if err := loadInvitations(ctx, r.db, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// FindByInviteToken 实现根据邀请 token 查找所属群组
func (r *GormGroupRepository) FindByInviteToken(ctx context.Context, token string) (*domain.Group, error) {
	var inv domain.Invitation
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrGroupNotFound
		}
		return nil, fmt.Errorf("gorm: find invitation by token: %w", err)
	}
	return r.FindByID(ctx, inv.GroupID)
}

// Save 在一个事务中写入群组行并整体替换它的邀请列表
func (r *GormGroupRepository) Save(ctx context.Context, group *domain.Group) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(group).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", group.ID).Delete(&domain.Invitation{}).Error; err != nil {
			return err
		}
		if len(group.Invitations) == 0 {
			group.Invitations = domain.InvitationLedger{}
			return nil
		}
		invitations := make([]domain.Invitation, len(group.Invitations))
		for i, inv := range group.Invitations {
			inv.ID = 0 // 旧行已删除，重新插入
			inv.GroupID = group.ID
			invitations[i] = inv
		}
		if err := tx.Create(&invitations).Error; err != nil {
			return err
		}
		group.Invitations = domain.InvitationLedger(invitations)
		return nil
	})
	if err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save group (id: %d, name: %s): %w", group.ID, group.Name, err)
	}
	return nil
}

// Rename 实现修改群组名称
func (r *GormGroupRepository) Rename(ctx context.Context, id uint, name string) (*domain.Group, error) {
	group, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	err = r.db.WithContext(ctx).Model(group).Update("name", name).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: rename group %d: %w", id, err)
	}
	group.Name = name
	return group, nil
}

// Delete 在一个事务中删除群组及其邀请列表
func (r *GormGroupRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&domain.Invitation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Group{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("gorm: delete group %d: %w", id, err)
	}
	return nil
}

// FindPublic 实现查询所有公开群组 (不加载邀请列表)
func (r *GormGroupRepository) FindPublic(ctx context.Context) ([]domain.Group, error) {
	groups := []domain.Group{}
	err := r.db.WithContext(ctx).Where("type = ?", domain.GroupTypePublic).Order("id ASC").Find(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: find public groups: %w", err)
	}
	return groups, nil
}

// FindByAdmin 实现查询用户管理的群组 (不加载邀请列表)
func (r *GormGroupRepository) FindByAdmin(ctx context.Context, adminID uint) ([]domain.Group, error) {
	groups := []domain.Group{}
	err := r.db.WithContext(ctx).Where("admin_id = ?", adminID).Order("id ASC").Find(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: find groups by admin %d: %w", adminID, err)
	}
	return groups, nil
}

// CountByAdmin 实现统计用户管理的群组数量
func (r *GormGroupRepository) CountByAdmin(ctx context.Context, adminID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Group{}).Where("admin_id = ?", adminID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("gorm: count groups by admin %d: %w", adminID, err)
	}
	return count, nil
}

// IsInviteTokenExists 实现检查邀请 token 是否已存在
func (r *GormGroupRepository) IsInviteTokenExists(ctx context.Context, token string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Invitation{}).Where("token = ?", token).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("gorm: count invitations by token: %w", err)
	}
	return count > 0, nil
}

// loadInvitations 按签发顺序加载群组的邀请列表
func loadInvitations(ctx context.Context, db *gorm.DB, group *domain.Group) error {
	var invitations []domain.Invitation
	err := db.WithContext(ctx).Where("group_id = ?", group.ID).Order("id ASC").Find(&invitations).Error
	if err != nil {
		return fmt.Errorf("gorm: load invitations for group %d: %w", group.ID, err)
	}
	group.Invitations = domain.InvitationLedger(invitations)
	return nil
}
