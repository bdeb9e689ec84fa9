package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ContextUserIDKey 是认证通过后 user_id 在 gin.Context 中的键
const ContextUserIDKey = "user_id"

// ErrMissingAuthHeader 表示请求没有携带 Authorization 头
var ErrMissingAuthHeader = errors.New("missing Authorization header")

// ErrMalformedAuthHeader 表示 Authorization 头不是 "Bearer <token>" 格式
var ErrMalformedAuthHeader = errors.New("malformed Authorization header")

// TokenParser 校验访问令牌并返回其中的用户 ID。service.AuthService 实现了该接口。
type TokenParser interface {
	ParseAccessToken(token string) (uint, error)
}

// Auth 返回校验 Bearer 访问令牌的 Gin 中间件，通过后把 user_id 写入 Context。
func Auth(parser TokenParser) gin.HandlerFunc {
	if parser == nil {
		panic("TokenParser cannot be nil for Auth middleware")
	}

	return func(c *gin.Context) {
		tokenStr, err := extractToken(c)
		if err != nil {
			logrus.WithError(err).Warn("Auth middleware: Rejecting request")
			msg := "Invalid token format"
			if errors.Is(err, ErrMissingAuthHeader) {
				msg = "Authorization header is required"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		userID, err := parser.ParseAccessToken(tokenStr)
		if err != nil {
			logrus.WithError(err).Warn("Auth middleware: Invalid token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(ContextUserIDKey, userID)
		logrus.WithField("user_id", userID).Debug("Auth middleware: User authenticated via JWT")
		c.Next()
	}
}

// extractToken 从 Authorization 头中取出 Bearer token，"Bearer" 不区分大小写
func extractToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrMalformedAuthHeader
	}
	return parts[1], nil
}
