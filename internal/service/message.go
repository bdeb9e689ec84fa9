package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Gursimran75-way/Group-Chat-Backend/internal/domain"
	"github.com/Gursimran75-way/Group-Chat-Backend/internal/repository"

	"github.com/sirupsen/logrus"
)

// MessageService 负责群组消息的写入和读取。
type MessageService struct {
	messageRepo repository.MessageRepository
	groupRepo   repository.GroupRepository
}

// NewMessageService 创建 MessageService 实例。
func NewMessageService(messageRepo repository.MessageRepository, groupRepo repository.GroupRepository) *MessageService {
	if messageRepo == nil || groupRepo == nil {
		panic("MessageRepository and GroupRepository cannot be nil for MessageService")
	}
	return &MessageService{messageRepo: messageRepo, groupRepo: groupRepo}
}

// CreateMessage 在发送者是群组成员时保存一条消息。群组不存在同样视为非成员。
func (s *MessageService) CreateMessage(ctx context.Context, callerID, groupID uint, content string) (msg *domain.Message, err error) {
	defer observe("create_message", &err)
	logCtx := logrus.WithFields(logrus.Fields{"caller_id": callerID, "group_id": groupID})

	if callerID == 0 {
		return nil, ErrUnauthenticated
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrInvalidInput
	}

	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			logCtx.Warn("CreateMessage: group not found")
			return nil, ErrNotGroupMember
		}
		logCtx.WithError(err).Error("CreateMessage: failed to load group")
		return nil, ErrInternalServer
	}
	if !group.IsMember(callerID) {
		logCtx.Warn("CreateMessage: sender is not a member")
		return nil, ErrNotGroupMember
	}

	msg = &domain.Message{GroupID: groupID, SenderID: callerID, Content: content}
	if err := s.messageRepo.Save(ctx, msg); err != nil {
		logCtx.WithError(err).Error("CreateMessage: failed to save message")
		return nil, ErrInternalServer
	}
	logCtx.WithField("message_id", msg.ID).Debug("Message created")
	return msg, nil
}

// GetAllMessages 按创建时间升序返回群组的全部消息。
func (s *MessageService) GetAllMessages(ctx context.Context, callerID, groupID uint) ([]domain.Message, error) {
	logCtx := logrus.WithFields(logrus.Fields{"caller_id": callerID, "group_id": groupID})
	if callerID == 0 {
		return nil, ErrUnauthenticated
	}

	if _, err := s.groupRepo.FindByID(ctx, groupID); err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		logCtx.WithError(err).Error("GetAllMessages: failed to load group")
		return nil, ErrInternalServer
	}

	messages, err := s.messageRepo.ListByGroup(ctx, groupID)
	if err != nil {
		logCtx.WithError(err).Error("GetAllMessages: failed to list messages")
		return nil, ErrInternalServer
	}
	return messages, nil
}
