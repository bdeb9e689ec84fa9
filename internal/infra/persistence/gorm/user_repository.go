package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Gursimran75-way/Group-Chat-Backend/internal/domain"
	"github.com/Gursimran75-way/Group-Chat-Backend/internal/repository"
)

// GormUserRepository 是 UserRepository 接口的 GORM 实现
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository 创建 GormUserRepository 实例
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	if db == nil {
		panic("database connection cannot be nil for GormUserRepository")
	}
	return &GormUserRepository{db: db}
}

// FindByID 实现根据用户 ID 查找用户
func (r *GormUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("gorm: find user by id %d: %w", id, err)
	}
	return &user, nil
}

// FindByIDs 实现批量查找用户，结果保持 ids 的顺序
func (r *GormUserRepository) FindByIDs(ctx context.Context, ids []uint) ([]domain.User, error) {
	if len(ids) == 0 {
		return []domain.User{}, nil // 避免空的 IN 查询
	}
	var found []domain.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, fmt.Errorf("gorm: find users by ids: %w", err)
	}
	byID := make(map[uint]domain.User, len(found))
	for _, u := range found {
		byID[u.ID] = u
	}
	users := make([]domain.User, 0, len(found))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

// FindAll 实现按 ID 升序列出所有用户
func (r *GormUserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	users := []domain.User{}
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("gorm: find all users: %w", err)
	}
	return users, nil
}

// FindByEmail 实现根据邮箱查找用户
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("gorm: find user by email '%s': %w", email, err)
	}
	return &user, nil
}

// FindByUsername 实现根据用户名查找用户
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("gorm: find user by username '%s': %w", username, err)
	}
	return &user, nil
}

// Save 实现保存用户信息（创建或更新）
// GORM 的 Save 方法会根据主键是否为零值决定是 INSERT 还是 UPDATE。
func (r *GormUserRepository) Save(ctx context.Context, user *domain.User) error {
	err := r.db.WithContext(ctx).Save(user).Error
	if err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save user (id: %d, username: %s): %w", user.ID, user.Username, err)
	}
	return nil
}

// Delete 在一个事务内删除用户行及其 user_groups 反向引用
func (r *GormUserRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&domain.UserGroup{}).Error; err != nil {
			return fmt.Errorf("gorm: delete group references of user %d: %w", id, err)
		}
		result := tx.Delete(&domain.User{}, id)
		if result.Error != nil {
			return fmt.Errorf("gorm: delete user %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return repository.ErrUserNotFound
		}
		return nil
	})
}

// AddGroupReference 插入 (user, group) 反向引用，已存在时忽略
func (r *GormUserRepository) AddGroupReference(ctx context.Context, userID, groupID uint) error {
	ref := domain.UserGroup{UserID: userID, GroupID: groupID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&ref).Error
	if err != nil {
		return fmt.Errorf("gorm: add group %d reference to user %d: %w", groupID, userID, err)
	}
	return nil
}

// RemoveGroupReference 删除 (user, group) 反向引用，记录不存在时同样视为成功
func (r *GormUserRepository) RemoveGroupReference(ctx context.Context, userID, groupID uint) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND group_id = ?", userID, groupID).
		Delete(&domain.UserGroup{}).Error
	if err != nil {
		return fmt.Errorf("gorm: remove group %d reference from user %d: %w", groupID, userID, err)
	}
	return nil
}

// ListGroupIDs 按加入顺序返回用户所属的群组 ID
func (r *GormUserRepository) ListGroupIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids := []uint{}
	err := r.db.WithContext(ctx).
		Model(&domain.UserGroup{}).
		Where("user_id = ?", userID).
		Order("id ASC").
		Pluck("group_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list group ids for user %d: %w", userID, err)
	}
	return ids, nil
}
