package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEnqueuer 记录投递的任务
type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{Type: task.Type(), Queue: QueueCascade}, nil
}

func TestEnqueuer_ScheduleDetachMember(t *testing.T) {
	client := &fakeEnqueuer{}
	e := NewEnqueuer(client)

	require.NoError(t, e.ScheduleDetachMember(context.Background(), 3, 9))

	require.Len(t, client.tasks, 1)
	assert.Equal(t, TypeCascadeDetachMember, client.tasks[0].Type())
	var payload DetachMemberPayload
	require.NoError(t, json.Unmarshal(client.tasks[0].Payload(), &payload))
	assert.Equal(t, DetachMemberPayload{UserID: 3, GroupID: 9}, payload)
}

func TestEnqueuer_SchedulePurgeMessages(t *testing.T) {
	client := &fakeEnqueuer{}
	e := NewEnqueuer(client)

	require.NoError(t, e.SchedulePurgeMessages(context.Background(), 9))

	require.Len(t, client.tasks, 1)
	assert.Equal(t, TypeCascadePurgeMessages, client.tasks[0].Type())
	var payload PurgeMessagesPayload
	require.NoError(t, json.Unmarshal(client.tasks[0].Payload(), &payload))
	assert.Equal(t, uint(9), payload.GroupID)
}

func TestEnqueuer_DuplicateTaskIsNotAnError(t *testing.T) {
	e := NewEnqueuer(&fakeEnqueuer{err: asynq.ErrTaskIDConflict})
	assert.NoError(t, e.SchedulePurgeMessages(context.Background(), 9))
}

func TestEnqueuer_PropagatesEnqueueError(t *testing.T) {
	e := NewEnqueuer(&fakeEnqueuer{err: errors.New("redis down")})
	assert.Error(t, e.ScheduleDetachMember(context.Background(), 1, 2))
}
