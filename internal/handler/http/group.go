package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gursimran75-way/Group-Chat-Backend/internal/domain"
	"github.com/Gursimran75-way/Group-Chat-Backend/internal/service"
)

// GroupHandler 封装了群组生命周期相关的 HTTP 处理逻辑
type GroupHandler struct {
	groupService *service.GroupService
	authService  *service.AuthService
}

// NewGroupHandler 创建 GroupHandler 实例。
// authService 用于在接受邀请时核验邮箱和密码。
func NewGroupHandler(groupService *service.GroupService, authService *service.AuthService) *GroupHandler {
	if groupService == nil || authService == nil {
		panic("GroupService and AuthService cannot be nil for GroupHandler")
	}
	return &GroupHandler{groupService: groupService, authService: authService}
}

// CreateGroupRequest 定义创建群组请求
type CreateGroupRequest struct {
	Name string `json:"name" binding:"required,max=100"`
	Type string `json:"type" binding:"required,oneof=public private"`
}

// CreateGroup 创建群组
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}
	group, err := h.groupService.CreateGroup(c.Request.Context(), currentUserID(c), req.Name, domain.GroupType(req.Type))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Group created successfully", newGroupResponse(group))
}

// GetPublicGroups 列出所有公开群组
func (h *GroupHandler) GetPublicGroups(c *gin.Context) {
	groups, err := h.groupService.GetPublicGroups(c.Request.Context())
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	resp := make([]GroupResponse, 0, len(groups))
	for i := range groups {
		resp = append(resp, newGroupResponse(&groups[i]))
	}
	SuccessResponse(c, http.StatusOK, "Public groups fetched successfully", resp)
}

// JoinGroup 加入公开群组
func (h *GroupHandler) JoinGroup(c *gin.Context) {
	groupID, ok := uintParam(c, "groupId")
	if !ok {
		return
	}
	if err := h.groupService.JoinPublicGroup(c.Request.Context(), currentUserID(c), groupID); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Joined the group successfully", nil)
}

// CreateInvitation 管理员邀请用户加入群组
func (h *GroupHandler) CreateInvitation(c *gin.Context) {
	groupID, ok := uintParam(c, "groupId")
	if !ok {
		return
	}
	targetID, ok := uintParam(c, "userId")
	if !ok {
		return
	}
	links, err := h.groupService.CreateInvitation(c.Request.Context(), currentUserID(c), groupID, targetID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Invitation created successfully", gin.H{
		"invitationLink": links.InvitationLink,
		"frontendLink":   links.FrontendLink,
	})
}

// AcceptInvitationRequest 定义接受邀请请求
// 密码缺失与密码错误同样按认证失败处理
type AcceptInvitationRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password"`
}

// AcceptInvitation 核验邮箱和密码后，使用邀请 token 加入群组
func (h *GroupHandler) AcceptInvitation(c *gin.Context) {
	var req AcceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: email required"})
		return
	}
	user, err := h.authService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	if _, err := h.groupService.AcceptInvitation(c.Request.Context(), c.Param("token"), user.Email); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Joined the group successfully", nil)
}

// Analytics 返回调用者管理的群组统计
func (h *GroupHandler) Analytics(c *gin.Context) {
	result, err := h.groupService.Analytics(c.Request.Context(), currentUserID(c))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Analytics fetched successfully", newAnalyticsResponse(result))
}

// GroupAnalytics 返回群组详情
func (h *GroupHandler) GroupAnalytics(c *gin.Context) {
	groupID, ok := uintParam(c, "groupId")
	if !ok {
		return
	}
	detail, err := h.groupService.GroupAnalytics(c.Request.Context(), groupID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Group analytics fetched successfully", newGroupDetailResponse(detail))
}

// EditGroupRequest 定义修改群组请求
type EditGroupRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// EditGroup 修改群组名称
func (h *GroupHandler) EditGroup(c *gin.Context) {
	groupID, ok := uintParam(c, "groupId")
	if !ok {
		return
	}
	var req EditGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: name required"})
		return
	}
	group, err := h.groupService.EditGroup(c.Request.Context(), groupID, req.Name)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Group updated successfully", newGroupResponse(group))
}

// DeleteGroup 管理员删除群组
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	groupID, ok := uintParam(c, "groupId")
	if !ok {
		return
	}
	if _, err := h.groupService.DeleteGroup(c.Request.Context(), groupID, currentUserID(c)); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Group deleted successfully", nil)
}
