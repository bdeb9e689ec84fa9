package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader 是请求 ID 的 HTTP 头
	RequestIDHeader = "X-Request-ID"
	// ContextRequestIDKey 是请求 ID 在 gin.Context 中的键
	ContextRequestIDKey = "request_id"
)

// RequestID 为每个请求分配 ID。客户端传入的合法 UUID 会被沿用。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(ContextRequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
