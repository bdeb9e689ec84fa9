package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gursimran75-way/Group-Chat-Backend/internal/domain"
	"github.com/Gursimran75-way/Group-Chat-Backend/internal/middleware"
	"github.com/Gursimran75-way/Group-Chat-Backend/internal/service"
)

func ErrorResponse(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}

func SuccessResponse(c *gin.Context, code int, message string, data interface{}) {
	body := gin.H{"message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(code, body)
}

// GroupResponse 是群组的对外视图，不包含邀请 token
type GroupResponse struct {
	ID        uint             `json:"id"`
	Name      string           `json:"name"`
	Type      domain.GroupType `json:"type"`
	Admin     uint             `json:"admin"`
	Members   []uint           `json:"members"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

func newGroupResponse(g *domain.Group) GroupResponse {
	return GroupResponse{
		ID:        g.ID,
		Name:      g.Name,
		Type:      g.Type,
		Admin:     g.AdminID,
		Members:   g.Members.IDs(),
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

// GroupDetailResponse 是 groupAnalytics 的响应，管理员和成员为公开资料
type GroupDetailResponse struct {
	ID        uint                `json:"id"`
	Name      string              `json:"name"`
	Type      domain.GroupType    `json:"type"`
	Admin     *domain.PublicUser  `json:"admin"`
	Members   []domain.PublicUser `json:"members"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

func newGroupDetailResponse(d *service.GroupDetail) GroupDetailResponse {
	return GroupDetailResponse{
		ID:        d.Group.ID,
		Name:      d.Group.Name,
		Type:      d.Group.Type,
		Admin:     d.Admin,
		Members:   d.Members,
		CreatedAt: d.Group.CreatedAt,
		UpdatedAt: d.Group.UpdatedAt,
	}
}

type groupCountResponse struct {
	GroupID      uint   `json:"groupId"`
	Name         string `json:"name"`
	TotalMembers int    `json:"totalMembers"`
}

// AnalyticsResponse 是调用者管理的群组统计
type AnalyticsResponse struct {
	TotalGroupsCreated int64                `json:"totalGroupsCreated"`
	GroupUserCounts    []groupCountResponse `json:"groupUserCounts"`
}

func newAnalyticsResponse(a *service.AdminAnalytics) AnalyticsResponse {
	counts := make([]groupCountResponse, 0, len(a.GroupUserCounts))
	for _, gc := range a.GroupUserCounts {
		counts = append(counts, groupCountResponse{GroupID: gc.GroupID, Name: gc.Name, TotalMembers: gc.TotalMembers})
	}
	return AnalyticsResponse{TotalGroupsCreated: a.TotalGroupsCreated, GroupUserCounts: counts}
}

// currentUserID 读取 Auth 中间件设置的用户 ID，未认证时返回 0
func currentUserID(c *gin.Context) uint {
	return c.GetUint(middleware.ContextUserIDKey)
}

// uintParam 解析路径参数中的正整数 ID
func uintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		ErrorResponse(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return uint(v), true
}
