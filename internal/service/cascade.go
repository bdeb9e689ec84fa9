package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Gursimran75-way/Group-Chat-Backend/internal/domain"
	"github.com/Gursimran75-way/Group-Chat-Backend/internal/metrics"
	"github.com/Gursimran75-way/Group-Chat-Backend/internal/repository"

	"github.com/sirupsen/logrus"
)

// 级联步骤名称，同时用作指标标签和任务类型后缀
const (
	StepDetachMember  = "detach_member"
	StepPurgeMessages = "purge_messages"
)

// CleanupScheduler 负责把失败的级联步骤交给后台重试。
type CleanupScheduler interface {
	ScheduleDetachMember(ctx context.Context, userID, groupID uint) error
	SchedulePurgeMessages(ctx context.Context, groupID uint) error
}

// CascadeReport 汇总一次级联清理的结果。
type CascadeReport struct {
	GroupID         uint
	DetachedMembers int
	FailedMembers   []uint
	MessagesPurged  int64
	PurgeFailed     bool
}

// Complete 判断所有级联步骤是否都已成功。
func (r CascadeReport) Complete() bool {
	return len(r.FailedMembers) == 0 && !r.PurgeFailed
}

// CascadeCoordinator 在群组删除时维护用户反向引用和消息的一致性。
// 每个步骤都是幂等的，可以被后台任务安全地重复执行。
type CascadeCoordinator struct {
	userRepo    repository.UserRepository
	messageRepo repository.MessageRepository
	scheduler   CleanupScheduler // 可为 nil，此时失败只记录日志
}

// NewCascadeCoordinator 创建 CascadeCoordinator 实例。
func NewCascadeCoordinator(userRepo repository.UserRepository, messageRepo repository.MessageRepository, scheduler CleanupScheduler) *CascadeCoordinator {
	if userRepo == nil || messageRepo == nil {
		panic("UserRepository and MessageRepository cannot be nil for CascadeCoordinator")
	}
	return &CascadeCoordinator{
		userRepo:    userRepo,
		messageRepo: messageRepo,
		scheduler:   scheduler,
	}
}

// DetachMember 从单个用户的反向引用中移除群组。用户不存在不算错误。
func (c *CascadeCoordinator) DetachMember(ctx context.Context, userID, groupID uint) error {
	err := c.userRepo.RemoveGroupReference(ctx, userID, groupID)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return fmt.Errorf("detach group %d from user %d: %w", groupID, userID, err)
	}
	return nil
}

// DetachGroupFromMembers 对包括管理员在内的每个成员执行 DetachMember。
// 单个成员失败不会中断其余成员的处理，返回成功数量和失败的成员 ID。
func (c *CascadeCoordinator) DetachGroupFromMembers(ctx context.Context, group *domain.Group) (int, []uint) {
	logCtx := logrus.WithField("group_id", group.ID)
	detached := 0
	var failed []uint
	for _, userID := range group.Members.IDs() {
		if err := c.DetachMember(ctx, userID, group.ID); err != nil {
			logCtx.WithError(err).WithField("user_id", userID).Error("Cascade: failed to detach group from member")
			metrics.ObserveCascadeFailure(StepDetachMember)
			failed = append(failed, userID)
			continue
		}
		detached++
	}
	return detached, failed
}

// PurgeMessages 删除群组的全部消息，返回删除数量。
func (c *CascadeCoordinator) PurgeMessages(ctx context.Context, groupID uint) (int64, error) {
	n, err := c.messageRepo.DeleteByGroup(ctx, groupID)
	if err != nil {
		return 0, fmt.Errorf("purge messages of group %d: %w", groupID, err)
	}
	return n, nil
}

// Run 依次执行成员解绑和消息清理，失败的步骤交给 scheduler 重试。
// Run 从不返回错误，调用方根据 CascadeReport 决定如何上报。
func (c *CascadeCoordinator) Run(ctx context.Context, group *domain.Group) CascadeReport {
	logCtx := logrus.WithField("group_id", group.ID)
	report := CascadeReport{GroupID: group.ID}

	report.DetachedMembers, report.FailedMembers = c.DetachGroupFromMembers(ctx, group)

	purged, err := c.PurgeMessages(ctx, group.ID)
	if err != nil {
		logCtx.WithError(err).Error("Cascade: failed to purge group messages")
		metrics.ObserveCascadeFailure(StepPurgeMessages)
		report.PurgeFailed = true
	}
	report.MessagesPurged = purged

	if !report.Complete() {
		c.scheduleRetries(ctx, report)
	}

	logCtx.WithFields(logrus.Fields{
		"detached_members": report.DetachedMembers,
		"failed_members":   len(report.FailedMembers),
		"messages_purged":  report.MessagesPurged,
		"purge_failed":     report.PurgeFailed,
	}).Info("Cascade cleanup finished")
	return report
}

func (c *CascadeCoordinator) scheduleRetries(ctx context.Context, report CascadeReport) {
	logCtx := logrus.WithField("group_id", report.GroupID)
	if c.scheduler == nil {
		logCtx.Warn("Cascade: no cleanup scheduler configured, failed steps will not be retried")
		return
	}
	for _, userID := range report.FailedMembers {
		if err := c.scheduler.ScheduleDetachMember(ctx, userID, report.GroupID); err != nil {
			logCtx.WithError(err).WithField("user_id", userID).Error("Cascade: failed to schedule detach retry")
		}
	}
	if report.PurgeFailed {
		if err := c.scheduler.SchedulePurgeMessages(ctx, report.GroupID); err != nil {
			logCtx.WithError(err).Error("Cascade: failed to schedule purge retry")
		}
	}
}
