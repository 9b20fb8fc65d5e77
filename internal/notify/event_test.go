package notify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mtlprog/planner/internal/domain"
	"github.com/mtlprog/planner/internal/notify"
)

func strPtr(s string) *string { return &s }

func TestNewTasksChanged(t *testing.T) {
	primary := &domain.Task{ID: "t1", UserID: strPtr("u1")}
	sibling1 := &domain.Task{ID: "t2", UserID: strPtr("u2")}
	sibling2 := &domain.Task{ID: "t3", UserID: strPtr("u1")}
	unassigned := &domain.Task{ID: "t4"}

	event := notify.NewTasksChanged("tenant-1", notify.MessageStatusChanged, primary, sibling1, sibling2, unassigned)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "tenant-1", event.TenantID)
	assert.Equal(t, []string{"t1", "t2", "t3", "t4"}, event.TaskIDs)
	assert.Equal(t, []string{"u1", "u2"}, event.UserIDs)
	assert.Equal(t, "Your task status changed", event.Message)
	assert.False(t, event.OccurredAt.IsZero())
}

func TestNewTasksChanged_NoAssignees(t *testing.T) {
	event := notify.NewTasksChanged("tenant-1", notify.MessageTaskCancelled, &domain.Task{ID: "t1"})

	assert.Equal(t, []string{"t1"}, event.TaskIDs)
	assert.NotNil(t, event.UserIDs)
	assert.Empty(t, event.UserIDs)
}

func TestTasksChanged_Concerns(t *testing.T) {
	event := notify.TasksChanged{UserIDs: []string{"u1", "u2"}}

	assert.True(t, event.Concerns("u2"))
	assert.False(t, event.Concerns("u3"))
}

func TestRoutingAndChannelNames(t *testing.T) {
	assert.Equal(t, "tasks.changed.tenant-1", notify.RoutingKey("tenant-1"))
	assert.Equal(t, "planner:tenant:tenant-1:tasks", notify.NewRedisPublisher(nil, "").Channel("tenant-1"))
	assert.Equal(t, "ops:tenant:t:tasks", notify.NewRedisPublisher(nil, "ops").Channel("t"))
}
