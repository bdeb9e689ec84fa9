// Package tasks 定义后台任务的类型、负载以及投递任务的 Enqueuer。
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

// 任务类型常量
const (
	TypeCascadeDetachMember  = "cascade:detach_member"
	TypeCascadePurgeMessages = "cascade:purge_messages"
)

// 级联重试任务使用的队列和重试策略
const (
	QueueCascade   = "critical"
	cascadeRetries = 10
	cascadeTimeout = 30 * time.Second
)

// DetachMemberPayload 是重新解绑单个成员的任务负载
type DetachMemberPayload struct {
	UserID  uint `json:"user_id"`
	GroupID uint `json:"group_id"`
}

// PurgeMessagesPayload 是重新清理群组消息的任务负载
type PurgeMessagesPayload struct {
	GroupID uint `json:"group_id"`
}

// NewDetachMemberTask 创建成员解绑重试任务
func NewDetachMemberTask(userID, groupID uint) (*asynq.Task, error) {
	payload, err := json.Marshal(DetachMemberPayload{UserID: userID, GroupID: groupID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeCascadeDetachMember, payload), nil
}

// NewPurgeMessagesTask 创建消息清理重试任务
func NewPurgeMessagesTask(groupID uint) (*asynq.Task, error) {
	payload, err := json.Marshal(PurgeMessagesPayload{GroupID: groupID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeCascadePurgeMessages, payload), nil
}

// TaskEnqueuer 是 *asynq.Client 中 Enqueuer 用到的方法
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Enqueuer 把失败的级联步骤投递到 asynq 队列，实现 service.CleanupScheduler。
type Enqueuer struct {
	client TaskEnqueuer
}

// NewEnqueuer 创建 Enqueuer 实例
func NewEnqueuer(client TaskEnqueuer) *Enqueuer {
	if client == nil {
		panic("asynq client cannot be nil for Enqueuer")
	}
	return &Enqueuer{client: client}
}

// ScheduleDetachMember 投递成员解绑重试任务。同一 (user, group) 的任务在队列中只保留一个。
func (e *Enqueuer) ScheduleDetachMember(ctx context.Context, userID, groupID uint) error {
	task, err := NewDetachMemberTask(userID, groupID)
	if err != nil {
		return fmt.Errorf("create detach member task: %w", err)
	}
	return e.enqueue(ctx, task, fmt.Sprintf("detach:%d:%d", groupID, userID))
}

// SchedulePurgeMessages 投递消息清理重试任务。
func (e *Enqueuer) SchedulePurgeMessages(ctx context.Context, groupID uint) error {
	task, err := NewPurgeMessagesTask(groupID)
	if err != nil {
		return fmt.Errorf("create purge messages task: %w", err)
	}
	return e.enqueue(ctx, task, fmt.Sprintf("purge:%d", groupID))
}

func (e *Enqueuer) enqueue(ctx context.Context, task *asynq.Task, taskID string) error {
	logCtx := logrus.WithFields(logrus.Fields{"task_type": task.Type(), "task_id": taskID})
	info, err := e.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueCascade),
		asynq.MaxRetry(cascadeRetries),
		asynq.Timeout(cascadeTimeout),
		asynq.TaskID(taskID),
	)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			logCtx.Debug("Cascade retry task already queued")
			return nil
		}
		return fmt.Errorf("enqueue %s: %w", task.Type(), err)
	}
	logCtx.WithField("queue", info.Queue).Info("Cascade retry task enqueued")
	return nil
}
