package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/Gursimran75-way/Group-Chat-Backend/internal/metrics"
	"github.com/Gursimran75-way/Group-Chat-Backend/internal/tasks"
)

// CascadeSteps 是可以被安全重复执行的级联清理步骤，由 service.CascadeCoordinator 实现
type CascadeSteps interface {
	DetachMember(ctx context.Context, userID, groupID uint) error
	PurgeMessages(ctx context.Context, groupID uint) (int64, error)
}

// CascadeRetryHandler 处理群组删除后失败的级联步骤
type CascadeRetryHandler struct {
	steps CascadeSteps
}

// NewCascadeRetryHandler 创建 Handler 实例
func NewCascadeRetryHandler(steps CascadeSteps) *CascadeRetryHandler {
	if steps == nil {
		panic("CascadeSteps cannot be nil for CascadeRetryHandler")
	}
	return &CascadeRetryHandler{steps: steps}
}

// ProcessDetachMember 处理 cascade:detach_member 任务
func (h *CascadeRetryHandler) ProcessDetachMember(ctx context.Context, t *asynq.Task) error {
	logCtx := taskLogger(ctx, t)

	var payload tasks.DetachMemberPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logCtx.WithError(err).Error("Failed to unmarshal task payload")
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	logCtx = logCtx.WithFields(logrus.Fields{"user_id": payload.UserID, "group_id": payload.GroupID})

	if err := h.steps.DetachMember(ctx, payload.UserID, payload.GroupID); err != nil {
		metrics.ObserveCascadeRetry(tasksStep(t), false)
		logCtx.WithError(err).Warn("Retry of member detach failed")
		return err
	}
	metrics.ObserveCascadeRetry(tasksStep(t), true)
	logCtx.Info("Member detach retry succeeded")
	return nil
}

// ProcessPurgeMessages 处理 cascade:purge_messages 任务
func (h *CascadeRetryHandler) ProcessPurgeMessages(ctx context.Context, t *asynq.Task) error {
	logCtx := taskLogger(ctx, t)

	var payload tasks.PurgeMessagesPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logCtx.WithError(err).Error("Failed to unmarshal task payload")
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	logCtx = logCtx.WithField("group_id", payload.GroupID)

	n, err := h.steps.PurgeMessages(ctx, payload.GroupID)
	if err != nil {
		metrics.ObserveCascadeRetry(tasksStep(t), false)
		logCtx.WithError(err).Warn("Retry of message purge failed")
		return err
	}
	metrics.ObserveCascadeRetry(tasksStep(t), true)
	logCtx.WithField("messages_purged", n).Info("Message purge retry succeeded")
	return nil
}

// Register 把处理函数注册到 mux
func (h *CascadeRetryHandler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(tasks.TypeCascadeDetachMember, h.ProcessDetachMember)
	mux.HandleFunc(tasks.TypeCascadePurgeMessages, h.ProcessPurgeMessages)
}

func taskLogger(ctx context.Context, t *asynq.Task) *logrus.Entry {
	taskID, _ := asynq.GetTaskID(ctx)
	retry, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	return logrus.WithFields(logrus.Fields{
		"task_id":   taskID,
		"task_type": t.Type(),
		"retry":     retry,
		"max_retry": maxRetry,
	})
}

// tasksStep 从任务类型 "cascade:<step>" 中取出步骤名
func tasksStep(t *asynq.Task) string {
	switch t.Type() {
	case tasks.TypeCascadeDetachMember:
		return "detach_member"
	case tasks.TypeCascadePurgeMessages:
		return "purge_messages"
	default:
		return t.Type()
	}
}
