package dto

import (
	"encoding/json"
	"time"

	"github.com/mtlprog/planner/internal/domain"
)

// Messages returned by the administrative command endpoints.
const (
	MessageTaskNotFound          = "Unable to find task."
	MessageTaskCancelled         = "Task cancelled."
	MessageConfigurationNotFound = "Unable to find task configuration."
	MessageTasksCancelled        = "Tasks cancelled."
)

// SimpleProcessResponse is the result of a mobile command.
type SimpleProcessResponse struct {
	Success bool `json:"success"`
}

// ProcessResponse is the result of an administrative command.
type ProcessResponse struct {
	HasError  bool   `json:"hasError"`
	IsSuccess bool   `json:"isSuccess"`
	Message   string `json:"message"`
	Affected  int    `json:"affected"`
}

// NewProcessSuccess builds a successful ProcessResponse.
func NewProcessSuccess(message string, affected int) ProcessResponse {
	return ProcessResponse{IsSuccess: true, Message: message, Affected: affected}
}

// NewProcessFailure builds an unsuccessful ProcessResponse.
func NewProcessFailure(message string) ProcessResponse {
	return ProcessResponse{HasError: true, Message: message}
}

// TaskActionInfo represents one step of a task.
type TaskActionInfo struct {
	ID            string  `json:"id"`
	ActionName    string  `json:"actionName"`
	AssetID       *string `json:"assetId"`
	AssetName     string  `json:"assetName"`
	AssetQuantity int     `json:"assetQuantity"`
}

// TaskDetail represents the full task object.
type TaskDetail struct {
	ID                      string           `json:"id"`
	ConfigurationID         string           `json:"configurationId"`
	HotelID                 string           `json:"hotelId"`
	WarehouseID             *string          `json:"warehouseId"`
	RoomID                  *string          `json:"roomId"`
	ReservationID           *string          `json:"reservationId"`
	UserID                  *string          `json:"userId"`
	Status                  string           `json:"status"`
	MustBeFinishedByAllWhos bool             `json:"mustBeFinishedByAllWhos"`
	Actions                 []TaskActionInfo `json:"actions"`
	CreatedAt               time.Time        `json:"createdAt"`
	ModifiedAt              time.Time        `json:"modifiedAt"`
	ModifiedByID            *string          `json:"modifiedById"`
}

// TaskHistoryInfo represents one audit record.
type TaskHistoryInfo struct {
	ID          string          `json:"id"`
	Source      string          `json:"source"`
	Note        string          `json:"note"`
	OldValue    json.RawMessage `json:"oldValue" swaggertype:"object"`
	NewValue    json.RawMessage `json:"newValue" swaggertype:"object"`
	CreatedByID *string         `json:"createdById"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// TaskDetailResponse represents a task with its audit trail.
type TaskDetailResponse struct {
	Task    TaskDetail        `json:"task"`
	History []TaskHistoryInfo `json:"history"`
}

// TasksListResponse represents the response for task listings.
type TasksListResponse struct {
	Tasks  []TaskDetail `json:"tasks"`
	Total  int          `json:"total"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}

// ConfigurationSummaryResponse counts a configuration's tasks by status.
type ConfigurationSummaryResponse struct {
	ConfigurationID string         `json:"configurationId"`
	Total           int            `json:"total"`
	Open            int            `json:"open"`
	TasksByStatus   map[string]int `json:"tasksByStatus"`
}

// ToTaskDetail converts domain.Task to TaskDetail.
func ToTaskDetail(task *domain.Task) TaskDetail {
	actions := make([]TaskActionInfo, len(task.Actions))
	for i, action := range task.Actions {
		actions[i] = TaskActionInfo{
			ID:            action.ID,
			ActionName:    action.ActionName,
			AssetID:       action.AssetID,
			AssetName:     action.AssetName,
			AssetQuantity: action.AssetQuantity,
		}
	}

	return TaskDetail{
		ID:                      task.ID,
		ConfigurationID:         task.SystemTaskConfigurationID,
		HotelID:                 task.ToHotelID,
		WarehouseID:             task.ToWarehouseID,
		RoomID:                  task.ToRoomID,
		ReservationID:           task.ToReservationID,
		UserID:                  task.UserID,
		Status:                  string(task.StatusKey),
		MustBeFinishedByAllWhos: task.MustBeFinishedByAllWhos,
		Actions:                 actions,
		CreatedAt:               task.CreatedAt,
		ModifiedAt:              task.ModifiedAt,
		ModifiedByID:            task.ModifiedByID,
	}
}

// ToTaskHistoryInfo converts domain.TaskHistory to TaskHistoryInfo.
func ToTaskHistoryInfo(history *domain.TaskHistory) TaskHistoryInfo {
	return TaskHistoryInfo{
		ID:          history.ID,
		Source:      string(history.Source),
		Note:        history.Note,
		OldValue:    history.OldValue,
		NewValue:    history.NewValue,
		CreatedByID: history.CreatedByID,
		CreatedAt:   history.CreatedAt,
	}
}

// ToConfigurationSummary totals status counts; closed statuses do not count as open.
func ToConfigurationSummary(configurationID string, counts map[string]int) ConfigurationSummaryResponse {
	summary := ConfigurationSummaryResponse{
		ConfigurationID: configurationID,
		TasksByStatus:   counts,
	}
	for status, count := range counts {
		summary.Total += count
		if !domain.TaskStatus(status).IsClosed() {
			summary.Open += count
		}
	}
	return summary
}
