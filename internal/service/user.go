package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Gursimran75-way/Group-Chat-Backend/internal/domain"
	"github.com/Gursimran75-way/Group-Chat-Backend/internal/repository"
)

// UserUpdate 描述对账号的修改，nil 字段保持不变。
type UserUpdate struct {
	Username *string
	Email    *string
	Password *string
}

// UserService 负责用户资料的查询、修改和删除。
// 删除用户时会同步维护群组成员集合和用户侧的反向引用。
type UserService struct {
	userRepo    repository.UserRepository
	groupRepo   repository.GroupRepository
	sessionRepo repository.SessionRepository
}

// NewUserService 创建 UserService 实例
func NewUserService(userRepo repository.UserRepository, groupRepo repository.GroupRepository, sessionRepo repository.SessionRepository) *UserService {
	if userRepo == nil || groupRepo == nil || sessionRepo == nil {
		panic("UserRepository, GroupRepository and SessionRepository cannot be nil for UserService")
	}
	return &UserService{userRepo: userRepo, groupRepo: groupRepo, sessionRepo: sessionRepo}
}

// ListUsers 返回所有用户的公开资料
func (s *UserService) ListUsers(ctx context.Context) ([]domain.PublicUser, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		logrus.WithError(err).Error("ListUsers: failed to load users")
		return nil, ErrInternalServer
	}
	result := make([]domain.PublicUser, 0, len(users))
	for i := range users {
		result = append(result, users[i].Public())
	}
	return result, nil
}

// GetUser 返回单个用户的公开资料
func (s *UserService) GetUser(ctx context.Context, userID uint) (*domain.PublicUser, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	pub := user.Public()
	return &pub, nil
}

// UpdateUser 修改调用者自己的账号。修改密码后已有的刷新令牌失效。
func (s *UserService) UpdateUser(ctx context.Context, callerID, userID uint, update UserUpdate) (*domain.PublicUser, error) {
	logCtx := logrus.WithFields(logrus.Fields{"caller_id": callerID, "user_id": userID})
	if err := checkAccountOwner(callerID, userID); err != nil {
		return nil, err
	}
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Username != nil {
		username := strings.TrimSpace(*update.Username)
		if username == "" {
			return nil, ErrInvalidInput
		}
		user.Username = username
	}
	if update.Email != nil {
		email := domain.NormalizeEmail(*update.Email)
		if !strings.Contains(email, "@") {
			return nil, ErrInvalidInput
		}
		user.Email = email
	}
	passwordChanged := false
	if update.Password != nil {
		if *update.Password == "" {
			return nil, ErrInvalidInput
		}
		hashed, err := hashPassword(*update.Password)
		if err != nil {
			logCtx.WithError(err).Error("UpdateUser: failed to hash password")
			return nil, ErrInternalServer
		}
		user.Password = hashed
		passwordChanged = true
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			logCtx.Warn("UpdateUser: username or email already in use")
			return nil, ErrUserConflict
		}
		logCtx.WithError(err).Error("UpdateUser: failed to save user")
		return nil, ErrInternalServer
	}
	if passwordChanged {
		s.revokeSession(ctx, userID)
	}

	logCtx.Info("User updated")
	pub := user.Public()
	return &pub, nil
}

// DeleteUser 删除调用者自己的账号。
// 仍是某个群组管理员的用户不能被删除；其余群组中的成员身份和反向引用会先被移除。
func (s *UserService) DeleteUser(ctx context.Context, callerID, userID uint) (err error) {
	defer observe("delete_user", &err)
	logCtx := logrus.WithFields(logrus.Fields{"caller_id": callerID, "user_id": userID})
	if err := checkAccountOwner(callerID, userID); err != nil {
		return err
	}
	if _, err := s.findUser(ctx, userID); err != nil {
		return err
	}

	administered, err := s.groupRepo.CountByAdmin(ctx, userID)
	if err != nil {
		logCtx.WithError(err).Error("DeleteUser: failed to count administered groups")
		return ErrInternalServer
	}
	if administered > 0 {
		logCtx.WithField("groups", administered).Warn("DeleteUser: user still administers groups")
		return ErrUserIsGroupAdmin
	}

	groupIDs, err := s.userRepo.ListGroupIDs(ctx, userID)
	if err != nil {
		logCtx.WithError(err).Error("DeleteUser: failed to list group references")
		return ErrInternalServer
	}
	for _, groupID := range groupIDs {
		if err := s.leaveGroup(ctx, userID, groupID); err != nil {
			logCtx.WithError(err).WithField("group_id", groupID).Error("DeleteUser: failed to leave group")
			return err
		}
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		logCtx.WithError(err).Error("DeleteUser: failed to delete user")
		return ErrInternalServer
	}
	s.revokeSession(ctx, userID)

	logCtx.WithField("groups_left", len(groupIDs)).Info("User deleted")
	return nil
}

// leaveGroup 将用户移出群组并删除对应的反向引用，群组已不存在时只删除引用
func (s *UserService) leaveGroup(ctx context.Context, userID, groupID uint) error {
	group, err := s.groupRepo.FindByID(ctx, groupID)
	switch {
	case errors.Is(err, repository.ErrGroupNotFound):
	case err != nil:
		return ErrInternalServer
	default:
		removed, err := group.RemoveMember(userID)
		if err != nil {
			return ErrUserIsGroupAdmin
		}
		if removed {
			if err := s.groupRepo.Save(ctx, group); err != nil {
				return ErrInternalServer
			}
		}
	}
	if err := s.userRepo.RemoveGroupReference(ctx, userID, groupID); err != nil {
		return ErrInternalServer
	}
	return nil
}

func (s *UserService) findUser(ctx context.Context, userID uint) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to load user")
		return nil, ErrInternalServer
	}
	return user, nil
}

func (s *UserService) revokeSession(ctx context.Context, userID uint) {
	if err := s.sessionRepo.DeleteRefreshToken(ctx, userID); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("Failed to revoke refresh token")
	}
}

func checkAccountOwner(callerID, userID uint) error {
	if callerID == 0 {
		return ErrUnauthenticated
	}
	if callerID != userID {
		return ErrNotAccountOwner
	}
	return nil
}
