package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gursimran75-way/Group-Chat-Backend/internal/domain"
	"github.com/Gursimran75-way/Group-Chat-Backend/internal/service"
)

// MessageHandler 封装了消息相关的 HTTP 处理逻辑
type MessageHandler struct {
	messageService *service.MessageService
}

// NewMessageHandler 创建 MessageHandler 实例
func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	if messageService == nil {
		panic("MessageService cannot be nil for MessageHandler")
	}
	return &MessageHandler{messageService: messageService}
}

// SendMessageRequest 定义发送消息请求
type SendMessageRequest struct {
	GroupID uint   `json:"groupId" binding:"required"`
	Content string `json:"content" binding:"required,max=4000"`
}

// GetMessagesRequest 定义拉取消息请求
type GetMessagesRequest struct {
	GroupID uint `json:"groupId" binding:"required"`
}

// SendMessage 向群组发送消息
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}
	msg, err := h.messageService.CreateMessage(c.Request.Context(), currentUserID(c), req.GroupID, req.Content)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Message sent successfully", msg)
}

// GetAllMessages 返回群组的全部消息
func (h *MessageHandler) GetAllMessages(c *gin.Context) {
	var req GetMessagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: groupId required"})
		return
	}
	messages, err := h.messageService.GetAllMessages(c.Request.Context(), currentUserID(c), req.GroupID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	SuccessResponse(c, http.StatusOK, "Messages fetched successfully", messages)
}
