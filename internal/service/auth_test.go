package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Gursimran75-way/Group-Chat-Backend/internal/domain"
	"github.com/Gursimran75-way/Group-Chat-Backend/internal/repository"
	"github.com/Gursimran75-way/Group-Chat-Backend/internal/repository/mocks"
	"github.com/Gursimran75-way/Group-Chat-Backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "very-secret-key"

func newAuthService(t *testing.T) (*service.AuthService, *mocks.UserRepository, *mocks.SessionRepository) {
	t.Helper()
	userRepo := new(mocks.UserRepository)
	sessionRepo := new(mocks.SessionRepository)
	svc, err := service.NewAuthService(userRepo, sessionRepo, testJWTSecret, 1, 24)
	require.NoError(t, err, "创建 AuthService 不应失败")
	return svc, userRepo, sessionRepo
}

func hashedUser(t *testing.T, id uint, email, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{ID: id, Username: "user", Email: email, Password: string(hash)}
}

// --- 测试 Register 方法 ---

func TestAuthService_Register_Success(t *testing.T) {
	// Arrange
	authService, mockUserRepo, _ := newAuthService(t)
	ctx := context.Background()
	password := "StrongPass123"

	mockUserRepo.On("Save", ctx, mock.MatchedBy(func(user *domain.User) bool {
		assert.Equal(t, "newbie", user.Username)
		assert.Equal(t, "newbie@example.com", user.Email, "邮箱应被规范化为小写")
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)), "密码应被正确哈希")
		return true
	})).Run(func(args mock.Arguments) {
		userArg := args.Get(1).(*domain.User)
		userArg.ID = 5
		userArg.CreatedAt = time.Now()
	}).Return(nil).Once()

	// Act
	registeredUser, err := authService.Register(ctx, "newbie", password, " Newbie@Example.com ")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint(5), registeredUser.ID)
	assert.Empty(t, registeredUser.Password, "返回的用户密码应为空")

	// Verify
	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_Register_DuplicateEntry(t *testing.T) {
	authService, mockUserRepo, _ := newAuthService(t)
	ctx := context.Background()
	mockUserRepo.On("Save", ctx, mock.AnythingOfType("*domain.User")).Return(repository.ErrDuplicateEntry).Once()

	_, err := authService.Register(ctx, "taken", "password", "taken@example.com")

	require.ErrorIs(t, err, service.ErrRegistrationFailed)
	assert.Equal(t, service.KindConflict, service.KindOf(err))
	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_Register_InvalidInput(t *testing.T) {
	authService, mockUserRepo, _ := newAuthService(t)

	_, err := authService.Register(context.Background(), "", "password", "x@example.com")
	assert.ErrorIs(t, err, service.ErrInvalidInput)
	_, err = authService.Register(context.Background(), "name", "password", "not-an-email")
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	mockUserRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// --- 测试 Login / Refresh / Logout ---

func TestAuthService_Login_IssuesTokenPair(t *testing.T) {
	authService, mockUserRepo, mockSessionRepo := newAuthService(t)
	ctx := context.Background()
	user := hashedUser(t, 7, "a@example.com", "secret")

	mockUserRepo.On("FindByEmail", ctx, "a@example.com").Return(user, nil).Once()
	mockSessionRepo.On("SaveRefreshToken", ctx, uint(7), mock.AnythingOfType("string"), 24*time.Hour).Return(nil).Once()

	pair, err := authService.Login(ctx, "A@example.com", "secret")

	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	mockUserRepo.AssertExpectations(t)
	mockSessionRepo.AssertExpectations(t)
}

func TestAuthService_Login_Failures(t *testing.T) {
	authService, mockUserRepo, mockSessionRepo := newAuthService(t)
	ctx := context.Background()
	user := hashedUser(t, 7, "a@example.com", "secret")

	mockUserRepo.On("FindByEmail", ctx, "a@example.com").Return(user, nil).Once()
	mockUserRepo.On("FindByEmail", ctx, "nobody@example.com").Return(nil, repository.ErrUserNotFound).Once()

	_, err := authService.Login(ctx, "a@example.com", "wrong")
	assert.ErrorIs(t, err, service.ErrAuthenticationFailed)

	_, err = authService.Login(ctx, "nobody@example.com", "secret")
	assert.ErrorIs(t, err, service.ErrAuthenticationFailed)
	assert.Equal(t, service.KindUnauthenticated, service.KindOf(err))

	mockSessionRepo.AssertNotCalled(t, "SaveRefreshToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_Authenticate(t *testing.T) {
	authService, mockUserRepo, _ := newAuthService(t)
	ctx := context.Background()
	user := hashedUser(t, 3, "carol@x.com", "s3cret")
	mockUserRepo.On("FindByEmail", ctx, "carol@x.com").Return(user, nil)

	// 大小写不同的邮箱指向同一用户
	got, err := authService.Authenticate(ctx, " Carol@X.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, uint(3), got.ID)

	_, err = authService.Authenticate(ctx, "carol@x.com", "wrong")
	assert.ErrorIs(t, err, service.ErrAuthenticationFailed)

	// 缺少密码时不查询用户
	calls := len(mockUserRepo.Calls)
	_, err = authService.Authenticate(ctx, "carol@x.com", "")
	assert.ErrorIs(t, err, service.ErrAuthenticationFailed)
	assert.Equal(t, service.KindUnauthenticated, service.KindOf(err))
	assert.Len(t, mockUserRepo.Calls, calls)
}

func TestAuthService_Authenticate_RepositoryError(t *testing.T) {
	authService, mockUserRepo, _ := newAuthService(t)
	ctx := context.Background()
	mockUserRepo.On("FindByEmail", ctx, "a@example.com").Return(nil, errors.New("db down")).Once()

	_, err := authService.Authenticate(ctx, "a@example.com", "secret")

	assert.ErrorIs(t, err, service.ErrInternalServer)
}

func TestAuthService_ParseAccessToken(t *testing.T) {
	authService, mockUserRepo, mockSessionRepo := newAuthService(t)
	ctx := context.Background()
	user := hashedUser(t, 7, "a@example.com", "secret")
	mockUserRepo.On("FindByEmail", ctx, "a@example.com").Return(user, nil).Twice()
	mockSessionRepo.On("SaveRefreshToken", ctx, uint(7), mock.AnythingOfType("string"), 24*time.Hour).Return(nil).Twice()

	first, err := authService.Login(ctx, "a@example.com", "secret")
	require.NoError(t, err)
	second, err := authService.Login(ctx, "a@example.com", "secret")
	require.NoError(t, err)
	assert.NotEqual(t, first.AccessToken, second.AccessToken, "同一时刻签发的令牌也不相同")

	userID, err := authService.ParseAccessToken(first.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(7), userID)

	_, err = authService.ParseAccessToken(first.RefreshToken)
	assert.Error(t, err, "刷新令牌不能当作访问令牌")
	_, err = authService.ParseAccessToken("garbage")
	assert.Error(t, err)
}

func TestAuthService_Refresh_RotatesToken(t *testing.T) {
	authService, mockUserRepo, mockSessionRepo := newAuthService(t)
	ctx := context.Background()
	user := hashedUser(t, 7, "a@example.com", "secret")

	var stored string
	mockUserRepo.On("FindByEmail", ctx, "a@example.com").Return(user, nil).Once()
	mockSessionRepo.On("SaveRefreshToken", ctx, uint(7), mock.AnythingOfType("string"), 24*time.Hour).
		Run(func(args mock.Arguments) { stored = args.String(2) }).
		Return(nil).Twice()

	pair, err := authService.Login(ctx, "a@example.com", "secret")
	require.NoError(t, err)
	require.Equal(t, pair.RefreshToken, stored)

	mockSessionRepo.On("GetRefreshToken", ctx, uint(7)).Return(pair.RefreshToken, nil).Once()

	refreshed, err := authService.Refresh(ctx, pair.RefreshToken)

	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, refreshed.RefreshToken, "刷新令牌应被轮换")
	assert.Equal(t, refreshed.RefreshToken, stored)
	mockSessionRepo.AssertExpectations(t)
}

func TestAuthService_Refresh_RejectsAccessTokenAndStaleToken(t *testing.T) {
	authService, mockUserRepo, mockSessionRepo := newAuthService(t)
	ctx := context.Background()
	user := hashedUser(t, 7, "a@example.com", "secret")

	mockUserRepo.On("FindByEmail", ctx, "a@example.com").Return(user, nil).Once()
	mockSessionRepo.On("SaveRefreshToken", ctx, uint(7), mock.AnythingOfType("string"), 24*time.Hour).Return(nil).Once()
	pair, err := authService.Login(ctx, "a@example.com", "secret")
	require.NoError(t, err)

	// 访问令牌不能用来刷新
	_, err = authService.Refresh(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, service.ErrInvalidRefreshToken)

	// 会话中的令牌已被替换
	mockSessionRepo.On("GetRefreshToken", ctx, uint(7)).Return("some-newer-token", nil).Once()
	_, err = authService.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, service.ErrInvalidRefreshToken)

	// 已登出
	mockSessionRepo.On("GetRefreshToken", ctx, uint(7)).Return("", repository.ErrSessionNotFound).Once()
	_, err = authService.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, service.ErrInvalidRefreshToken)

	_, err = authService.Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, service.ErrInvalidRefreshToken)
	mockSessionRepo.AssertExpectations(t)
}

func TestAuthService_Logout(t *testing.T) {
	authService, _, mockSessionRepo := newAuthService(t)
	ctx := context.Background()
	mockSessionRepo.On("DeleteRefreshToken", ctx, uint(7)).Return(nil).Once()
	mockSessionRepo.On("DeleteRefreshToken", ctx, uint(8)).Return(errors.New("redis down")).Once()

	assert.NoError(t, authService.Logout(ctx, 7))
	assert.ErrorIs(t, authService.Logout(ctx, 8), service.ErrInternalServer)
	assert.ErrorIs(t, authService.Logout(ctx, 0), service.ErrUnauthenticated)
	mockSessionRepo.AssertExpectations(t)
}

// --- 测试 GetProfile ---

func TestAuthService_GetProfile(t *testing.T) {
	authService, mockUserRepo, _ := newAuthService(t)
	ctx := context.Background()
	user := &domain.User{ID: 7, Username: "alice", Email: "a@example.com", Password: "hash"}

	mockUserRepo.On("FindByID", ctx, uint(7)).Return(user, nil).Once()
	mockUserRepo.On("ListGroupIDs", ctx, uint(7)).Return([]uint{3, 9}, nil).Once()
	mockUserRepo.On("FindByID", ctx, uint(8)).Return(nil, repository.ErrUserNotFound).Once()

	profile, err := authService.GetProfile(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.User.Username)
	assert.Equal(t, []uint{3, 9}, profile.GroupIDs)

	_, err = authService.GetProfile(ctx, 8)
	assert.ErrorIs(t, err, service.ErrUserNotFound)
	mockUserRepo.AssertExpectations(t)
}

func TestNewAuthService_EmptySecret(t *testing.T) {
	_, err := service.NewAuthService(new(mocks.UserRepository), new(mocks.SessionRepository), "", 1, 1)
	assert.Error(t, err)
}
