package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Gursimran75-way/Group-Chat-Backend/internal/service"
)

// UserHandler 处理用户资料的查询、修改和删除
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler 创建 UserHandler 实例
func NewUserHandler(userService *service.UserService) *UserHandler {
	if userService == nil {
		panic("UserService cannot be nil for UserHandler")
	}
	return &UserHandler{userService: userService}
}

// ReplaceUserRequest 是 PUT 请求体，所有字段都必须提供
type ReplaceUserRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// EditUserRequest 是 PATCH 请求体，只修改提供的字段
type EditUserRequest struct {
	Username *string `json:"username" binding:"omitempty,min=3,max=50"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=6"`
}

// ListUsers 返回所有用户的公开资料
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Users fetched successfully", users)
}

// GetUser 返回指定用户的公开资料
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	user, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "User fetched successfully", user)
}

// ReplaceUser 整体更新调用者自己的账号
func (h *UserHandler) ReplaceUser(c *gin.Context) {
	userID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req ReplaceUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.ReplaceUser: Invalid input format")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}
	h.update(c, userID, service.UserUpdate{
		Username: &req.Username,
		Email:    &req.Email,
		Password: &req.Password,
	})
}

// EditUser 部分更新调用者自己的账号
func (h *UserHandler) EditUser(c *gin.Context) {
	userID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req EditUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.EditUser: Invalid input format")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}
	h.update(c, userID, service.UserUpdate{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
}

func (h *UserHandler) update(c *gin.Context, userID uint, update service.UserUpdate) {
	user, err := h.userService.UpdateUser(c.Request.Context(), currentUserID(c), userID, update)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "User updated successfully", user)
}

// DeleteUser 删除调用者自己的账号
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.userService.DeleteUser(c.Request.Context(), currentUserID(c), userID); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "User deleted successfully", nil)
}
