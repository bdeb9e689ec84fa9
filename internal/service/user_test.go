package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Gursimran75-way/Group-Chat-Backend/internal/domain"
	"github.com/Gursimran75-way/Group-Chat-Backend/internal/repository"
	"github.com/Gursimran75-way/Group-Chat-Backend/internal/repository/mocks"
	"github.com/Gursimran75-way/Group-Chat-Backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type userFixture struct {
	userRepo    *mocks.UserRepository
	groupRepo   *mocks.GroupRepository
	sessionRepo *mocks.SessionRepository
	svc         *service.UserService
}

func newUserFixture() *userFixture {
	f := &userFixture{
		userRepo:    new(mocks.UserRepository),
		groupRepo:   new(mocks.GroupRepository),
		sessionRepo: new(mocks.SessionRepository),
	}
	f.svc = service.NewUserService(f.userRepo, f.groupRepo, f.sessionRepo)
	return f
}

func strPtr(s string) *string { return &s }

// --- 查询 ---

func TestUserService_ListAndGetUser(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	users := []domain.User{
		{ID: 1, Username: "alice", Email: "a@example.com", Password: "hash-a"},
		{ID: 2, Username: "bob", Email: "b@example.com", Password: "hash-b"},
	}
	f.userRepo.On("FindAll", ctx).Return(users, nil).Once()
	f.userRepo.On("FindByID", ctx, uint(2)).Return(&users[1], nil).Once()
	f.userRepo.On("FindByID", ctx, uint(9)).Return(nil, repository.ErrUserNotFound).Once()

	list, err := f.svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alice", list[0].Username)

	bob, err := f.svc.GetUser(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.PublicUser{ID: 2, Username: "bob", Email: "b@example.com"}, *bob)

	_, err = f.svc.GetUser(ctx, 9)
	assert.ErrorIs(t, err, service.ErrUserNotFound)
	f.userRepo.AssertExpectations(t)
}

// --- 修改 ---

func TestUserService_UpdateUser_PartialAndPassword(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	user := &domain.User{ID: 3, Username: "carol", Email: "carol@x.com", Password: "old-hash"}
	f.userRepo.On("FindByID", ctx, uint(3)).Return(user, nil).Once()
	f.userRepo.On("Save", ctx, user).Return(nil).Once()
	f.sessionRepo.On("DeleteRefreshToken", ctx, uint(3)).Return(nil).Once()

	updated, err := f.svc.UpdateUser(ctx, 3, 3, service.UserUpdate{
		Email:    strPtr(" Carol.New@X.com "),
		Password: strPtr("n3w-secret"),
	})

	require.NoError(t, err)
	assert.Equal(t, "carol", updated.Username, "未提供的字段保持不变")
	assert.Equal(t, "carol.new@x.com", updated.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("n3w-secret")))
	f.userRepo.AssertExpectations(t)
	f.sessionRepo.AssertExpectations(t)
}

func TestUserService_UpdateUser_Failures(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	f.userRepo.On("FindByID", ctx, uint(3)).Return(&domain.User{ID: 3, Username: "carol", Email: "carol@x.com"}, nil)
	f.userRepo.On("Save", ctx, mock.AnythingOfType("*domain.User")).Return(repository.ErrDuplicateEntry).Once()

	_, err := f.svc.UpdateUser(ctx, 4, 3, service.UserUpdate{Username: strPtr("mallory")})
	assert.ErrorIs(t, err, service.ErrNotAccountOwner)
	assert.Equal(t, service.KindForbidden, service.KindOf(err))

	_, err = f.svc.UpdateUser(ctx, 0, 3, service.UserUpdate{})
	assert.ErrorIs(t, err, service.ErrUnauthenticated)

	_, err = f.svc.UpdateUser(ctx, 3, 3, service.UserUpdate{Email: strPtr("not-an-email")})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = f.svc.UpdateUser(ctx, 3, 3, service.UserUpdate{Username: strPtr("bob")})
	assert.ErrorIs(t, err, service.ErrUserConflict)
	assert.Equal(t, service.KindConflict, service.KindOf(err))

	f.sessionRepo.AssertNotCalled(t, "DeleteRefreshToken", mock.Anything, mock.Anything)
}

// --- 删除 ---

func TestUserService_DeleteUser_LeavesGroups(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	g1 := newTestGroup(10, domain.GroupTypePublic, 1, 3)
	g2 := newTestGroup(11, domain.GroupTypePrivate, 2, 3, 4)

	f.userRepo.On("FindByID", ctx, uint(3)).Return(&domain.User{ID: 3}, nil).Once()
	f.groupRepo.On("CountByAdmin", ctx, uint(3)).Return(int64(0), nil).Once()
	f.userRepo.On("ListGroupIDs", ctx, uint(3)).Return([]uint{10, 11, 12}, nil).Once()
	f.groupRepo.On("FindByID", ctx, uint(10)).Return(g1, nil).Once()
	f.groupRepo.On("FindByID", ctx, uint(11)).Return(g2, nil).Once()
	f.groupRepo.On("FindByID", ctx, uint(12)).Return(nil, repository.ErrGroupNotFound).Once()
	f.groupRepo.On("Save", ctx, g1).Return(nil).Once()
	f.groupRepo.On("Save", ctx, g2).Return(nil).Once()
	f.userRepo.On("RemoveGroupReference", ctx, uint(3), uint(10)).Return(nil).Once()
	f.userRepo.On("RemoveGroupReference", ctx, uint(3), uint(11)).Return(nil).Once()
	f.userRepo.On("RemoveGroupReference", ctx, uint(3), uint(12)).Return(nil).Once()
	f.userRepo.On("Delete", ctx, uint(3)).Return(nil).Once()
	f.sessionRepo.On("DeleteRefreshToken", ctx, uint(3)).Return(errors.New("redis down")).Once()

	err := f.svc.DeleteUser(ctx, 3, 3)

	require.NoError(t, err, "撤销刷新令牌失败不影响删除")
	assert.Equal(t, []uint{1}, g1.Members.IDs())
	assert.Equal(t, []uint{2, 4}, g2.Members.IDs())
	assert.NoError(t, g1.CheckInvariants())
	assert.NoError(t, g2.CheckInvariants())
	f.userRepo.AssertExpectations(t)
	f.groupRepo.AssertExpectations(t)
}

func TestUserService_DeleteUser_GroupAdminRejected(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	f.userRepo.On("FindByID", ctx, uint(1)).Return(&domain.User{ID: 1}, nil).Once()
	f.groupRepo.On("CountByAdmin", ctx, uint(1)).Return(int64(2), nil).Once()

	err := f.svc.DeleteUser(ctx, 1, 1)

	require.ErrorIs(t, err, service.ErrUserIsGroupAdmin)
	assert.Equal(t, service.KindConflict, service.KindOf(err))
	f.userRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	f.userRepo.AssertNotCalled(t, "ListGroupIDs", mock.Anything, mock.Anything)
}

func TestUserService_DeleteUser_OtherAccountForbidden(t *testing.T) {
	f := newUserFixture()

	err := f.svc.DeleteUser(context.Background(), 2, 3)

	assert.ErrorIs(t, err, service.ErrNotAccountOwner)
	f.userRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}
