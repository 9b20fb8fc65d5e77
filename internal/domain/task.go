package domain

import (
	"strings"
	"time"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusUnknown              TaskStatus = "UNKNOWN"
	TaskStatusWaiting              TaskStatus = "WAITING"
	TaskStatusStarted              TaskStatus = "STARTED"
	TaskStatusPaused               TaskStatus = "PAUSED"
	TaskStatusFinished             TaskStatus = "FINISHED"
	TaskStatusRejected             TaskStatus = "REJECTED"
	TaskStatusCancelled            TaskStatus = "CANCELLED"
	TaskStatusClaimedBySomeoneElse TaskStatus = "CLAIMED_BY_SOMEONE_ELSE"
)

// IsValid checks if the status is one of the canonical lifecycle states.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusUnknown, TaskStatusWaiting, TaskStatusStarted, TaskStatusPaused,
		TaskStatusFinished, TaskStatusRejected, TaskStatusCancelled, TaskStatusClaimedBySomeoneElse:
		return true
	default:
		return false
	}
}

// IsClosed returns true for statuses a bulk cancellation leaves untouched.
func (s TaskStatus) IsClosed() bool {
	return s == TaskStatusFinished || s == TaskStatusCancelled || s == TaskStatusRejected
}

// ParseStatusToken maps a status token sent by a mobile client to a lifecycle state.
// Matching is case-insensitive. Unrecognized tokens map to TaskStatusUnknown.
func ParseStatusToken(token string) TaskStatus {
	switch strings.ToLower(token) {
	case "resume", "resumed", "started":
		return TaskStatusStarted
	case "claimed":
		return TaskStatusWaiting
	case "rejected":
		return TaskStatusRejected
	case "paused":
		return TaskStatusPaused
	case "completed":
		return TaskStatusFinished
	case "cancelled":
		return TaskStatusCancelled
	default:
		return TaskStatusUnknown
	}
}

// TaskAction is a single step of a task, e.g. "Replace" "Towel" x2.
type TaskAction struct {
	ID            string
	TaskID        string
	ActionName    string
	AssetID       *string
	AssetName     string
	AssetQuantity int
	SortOrder     int
}

// Task is one schedulable unit of housekeeping work generated from a configuration.
type Task struct {
	ID                        string
	HotelGroupID              string
	SystemTaskConfigurationID string
	ToHotelID                 string
	ToWarehouseID             *string
	ToRoomID                  *string
	ToReservationID           *string
	UserID                    *string
	StatusKey                 TaskStatus
	MustBeFinishedByAllWhos   bool
	CreatedAt                 time.Time
	ModifiedAt                time.Time
	ModifiedByID              *string
	Actions                   []TaskAction
}

// IsAssignedTo checks if the task is assigned to the given user.
func (t *Task) IsAssignedTo(userID string) bool {
	return t.UserID != nil && *t.UserID == userID
}

// ApplyStatus sets the status together with the last-writer audit fields.
func (t *Task) ApplyStatus(status TaskStatus, at time.Time, actorID string) {
	t.StatusKey = status
	t.ModifiedAt = at
	t.ModifiedByID = &actorID
}
