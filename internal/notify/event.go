// Package notify delivers "tasks changed" events to interested clients.
//
// Delivery is best effort. Publishers report errors, but the Dispatcher only
// logs them: a committed status change is never undone by a failed notification.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mtlprog/planner/internal/domain"
)

// Messages shown to the affected users.
const (
	MessageStatusChanged = "Your task status changed"
	MessageTaskCancelled = "Your task has been cancelled"
)

// TasksChanged tells a tenant's clients that tasks changed.
type TasksChanged struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"hotelGroupId"`
	UserIDs    []string  `json:"userIds"`
	TaskIDs    []string  `json:"taskIds"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewTasksChanged builds the event for the given tasks. Task ids keep their
// order; assignee ids are deduplicated and unassigned tasks contribute none.
func NewTasksChanged(tenantID, message string, tasks ...*domain.Task) TasksChanged {
	event := TasksChanged{
		ID:         uuid.NewString(),
		TenantID:   tenantID,
		UserIDs:    []string{},
		TaskIDs:    make([]string, 0, len(tasks)),
		Message:    message,
		OccurredAt: time.Now().UTC(),
	}

	seen := make(map[string]struct{})
	for _, task := range tasks {
		event.TaskIDs = append(event.TaskIDs, task.ID)
		if task.UserID == nil {
			continue
		}
		if _, ok := seen[*task.UserID]; ok {
			continue
		}
		seen[*task.UserID] = struct{}{}
		event.UserIDs = append(event.UserIDs, *task.UserID)
	}

	return event
}

// Concerns reports whether the event is addressed to the user.
func (e TasksChanged) Concerns(userID string) bool {
	for _, id := range e.UserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Publisher sends tasks-changed events to a transport.
type Publisher interface {
	PublishTasksChanged(ctx context.Context, event TasksChanged) error
}
