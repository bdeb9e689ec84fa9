package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Gursimran75-way/Group-Chat-Backend/internal/domain"
	"github.com/Gursimran75-way/Group-Chat-Backend/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// JWT token_type claim 的取值
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// TokenPair 是登录或刷新后下发的令牌。
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Profile 是用户的公开资料及其所在群组。
type Profile struct {
	User     domain.PublicUser
	GroupIDs []uint
}

// AuthService 负责用户注册、登录以及会话令牌的管理。
type AuthService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	jwtSecret   []byte
	jwtExpiry   time.Duration
	refreshTTL  time.Duration
	now         func() time.Time
}

// NewAuthService 创建 AuthService 实例。
// jwtExpiryHours 和 refreshExpiryHours 小于等于 0 时分别使用 24 小时和 7 天。
func NewAuthService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, jwtSecretKey string, jwtExpiryHours, refreshExpiryHours int) (*AuthService, error) {
	if userRepo == nil || sessionRepo == nil {
		panic("UserRepository and SessionRepository cannot be nil for AuthService")
	}
	if jwtSecretKey == "" {
		return nil, fmt.Errorf("JWT secret key cannot be empty")
	}
	if jwtExpiryHours <= 0 {
		jwtExpiryHours = 24
	}
	if refreshExpiryHours <= 0 {
		refreshExpiryHours = 24 * 7
	}
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		jwtSecret:   []byte(jwtSecretKey),
		jwtExpiry:   time.Duration(jwtExpiryHours) * time.Hour,
		refreshTTL:  time.Duration(refreshExpiryHours) * time.Hour,
		now:         time.Now,
	}, nil
}

// Register 处理用户注册。
func (s *AuthService) Register(ctx context.Context, username, password, email string) (*domain.User, error) {
	logCtx := logrus.WithFields(logrus.Fields{"username": username, "email": email})

	username = strings.TrimSpace(username)
	email = domain.NormalizeEmail(email)
	if username == "" || password == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidInput
	}

	hashedPassword, err := hashPassword(password)
	if err != nil {
		logCtx.WithError(err).Error("Failed to hash password during registration")
		return nil, ErrInternalServer
	}

	user := &domain.User{
		Username: username,
		Password: hashedPassword,
		Email:    email,
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			logCtx.WithError(err).Warn("Registration failed: Username or email already exists")
			return nil, ErrRegistrationFailed
		}
		logCtx.WithError(err).Error("Database error during user creation")
		return nil, ErrInternalServer
	}

	logCtx.WithField("user_id", user.ID).Info("User registered successfully")
	user.Password = ""
	return user, nil
}

// Authenticate 用邮箱和密码核验用户身份，任何凭据问题都返回 ErrAuthenticationFailed。
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	logCtx := logrus.WithField("email", email)
	if email == "" || password == "" {
		logCtx.Warn("Authentication failed: missing credentials")
		return nil, ErrAuthenticationFailed
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			logCtx.Warn("Authentication failed: User not found")
			return nil, ErrAuthenticationFailed
		}
		logCtx.WithError(err).Error("Authentication failed: Error finding user")
		return nil, ErrInternalServer
	}
	if user == nil || !checkPassword(password, user.Password) {
		logCtx.Warn("Authentication failed: Invalid password")
		return nil, ErrAuthenticationFailed
	}
	return user, nil
}

// Login 通过邮箱和密码登录，返回访问令牌和刷新令牌。
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	logCtx := logrus.WithField("user_id", user.ID)

	pair, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to issue tokens during login")
		return nil, ErrInternalServer
	}
	logCtx.Info("User logged in successfully")
	return pair, nil
}

// ParseAccessToken 校验访问令牌并返回其中的 user_id，供 Auth 中间件使用。
func (s *AuthService) ParseAccessToken(tokenStr string) (uint, error) {
	return s.parseToken(tokenStr, TokenTypeAccess)
}

// Refresh 校验刷新令牌并轮换出一对新令牌。旧的刷新令牌随即失效。
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, err := s.parseToken(refreshToken, TokenTypeRefresh)
	if err != nil {
		logrus.WithError(err).Warn("Refresh failed: invalid refresh token")
		return nil, ErrInvalidRefreshToken
	}
	logCtx := logrus.WithField("user_id", userID)

	stored, err := s.sessionRepo.GetRefreshToken(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			logCtx.Warn("Refresh failed: no active session")
			return nil, ErrInvalidRefreshToken
		}
		logCtx.WithError(err).Error("Refresh failed: session lookup error")
		return nil, ErrInternalServer
	}
	if stored != refreshToken {
		logCtx.Warn("Refresh failed: refresh token does not match active session")
		return nil, ErrInvalidRefreshToken
	}

	pair, err := s.issueTokens(ctx, userID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to issue tokens during refresh")
		return nil, ErrInternalServer
	}
	return pair, nil
}

// Logout 删除用户的刷新令牌。
func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	if userID == 0 {
		return ErrUnauthenticated
	}
	if err := s.sessionRepo.DeleteRefreshToken(ctx, userID); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Logout: failed to delete refresh token")
		return ErrInternalServer
	}
	return nil
}

// GetProfile 返回用户公开资料及其所在群组 ID。
func (s *AuthService) GetProfile(ctx context.Context, userID uint) (*Profile, error) {
	logCtx := logrus.WithField("user_id", userID)
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		logCtx.WithError(err).Error("GetProfile: failed to load user")
		return nil, ErrInternalServer
	}
	groupIDs, err := s.userRepo.ListGroupIDs(ctx, userID)
	if err != nil {
		logCtx.WithError(err).Error("GetProfile: failed to list group references")
		return nil, ErrInternalServer
	}
	return &Profile{User: user.Public(), GroupIDs: groupIDs}, nil
}

// --- 私有辅助函数 ---

func (s *AuthService) issueTokens(ctx context.Context, userID uint) (*TokenPair, error) {
	access, err := s.generateJWT(userID, TokenTypeAccess, s.jwtExpiry)
	if err != nil {
		return nil, err
	}
	refresh, err := s.generateJWT(userID, TokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	if err := s.sessionRepo.SaveRefreshToken(ctx, userID, refresh, s.refreshTTL); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// hashPassword 使用 bcrypt 对密码进行哈希处理
func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to generate hash from password: %w", err)
	}
	return string(bytes), nil
}

// checkPassword 验证提供的密码是否与存储的哈希匹配
func checkPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// generateJWT 为指定用户生成指定类型的 JWT
func (s *AuthService) generateJWT(userID uint, tokenType string, ttl time.Duration) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":    userID,
		"token_type": tokenType,
		"exp":        now.Add(ttl).Unix(),
		"iat":        now.Unix(),
		"jti":        uuid.NewString(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// parseToken 校验签名、有效期和 token_type，返回 user_id
func (s *AuthService) parseToken(tokenStr, wantType string) (uint, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return 0, fmt.Errorf("token validation failed: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, errors.New("invalid token or claims type")
	}
	if typ, _ := claims["token_type"].(string); typ != wantType {
		return 0, fmt.Errorf("unexpected token type %q", typ)
	}
	idFloat, ok := claims["user_id"].(float64)
	if !ok || idFloat <= 0 || idFloat != float64(uint(idFloat)) {
		return 0, errors.New("invalid user_id claim")
	}
	return uint(idFloat), nil
}
