package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Gursimran75-way/Group-Chat-Backend/internal/service"
)

// statusForKind 将业务错误分类映射为 HTTP 状态码
func statusForKind(kind service.Kind) int {
	switch kind {
	case service.KindUnauthenticated:
		return http.StatusUnauthorized
	case service.KindForbidden, service.KindMembershipRequired:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindInvalidInput, service.KindInvalidState:
		return http.StatusBadRequest
	case service.KindConflict:
		return http.StatusConflict
	case service.KindExpired:
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

// HandleServiceError 根据 Service 返回的错误写入 JSON 错误响应
func HandleServiceError(c *gin.Context, err error) {
	kind := service.KindOf(err)
	status := statusForKind(kind)
	if status == http.StatusInternalServerError {
		logrus.WithError(err).WithField("path", c.FullPath()).Error("Unhandled internal server error")
		ErrorResponse(c, status, "An unexpected error occurred")
		return
	}
	ErrorResponse(c, status, err.Error())
}
