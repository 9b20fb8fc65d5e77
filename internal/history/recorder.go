// Package history turns task state into audit snapshots and history records.
package history

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mtlprog/planner/internal/domain"
)

// Snapshot is the serialised state of a task written to the audit trail.
type Snapshot struct {
	StatusKey               string           `json:"statusKey"`
	UserID                  *string          `json:"userId"`
	ToHotelID               string           `json:"toHotelId"`
	ToWarehouseID           *string          `json:"toWarehouseId"`
	ToRoomID                *string          `json:"toRoomId"`
	ToReservationID         *string          `json:"toReservationId"`
	MustBeFinishedByAllWhos bool             `json:"mustBeFinishedByAllWhos"`
	ModifiedAt              string           `json:"modifiedAt"`
	ModifiedByID            *string          `json:"modifiedById"`
	Actions                 []SnapshotAction `json:"actions"`
}

// SnapshotAction is a task action as it appears in a snapshot.
type SnapshotAction struct {
	ActionName    string  `json:"actionName"`
	AssetID       *string `json:"assetId"`
	AssetName     string  `json:"assetName"`
	AssetQuantity int     `json:"assetQuantity"`
}

// modifiedAtLayout keeps the wall clock as stored, without a zone suffix.
const modifiedAtLayout = "2006-01-02T15:04:05.999999"

// Recorder builds history records for task mutations.
type Recorder struct{}

// NewRecorder creates a new Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Snapshot captures the mutable state of a task.
func (r *Recorder) Snapshot(task *domain.Task) (json.RawMessage, error) {
	snapshot := Snapshot{
		StatusKey:               string(task.StatusKey),
		UserID:                  task.UserID,
		ToHotelID:               task.ToHotelID,
		ToWarehouseID:           task.ToWarehouseID,
		ToRoomID:                task.ToRoomID,
		ToReservationID:         task.ToReservationID,
		MustBeFinishedByAllWhos: task.MustBeFinishedByAllWhos,
		ModifiedByID:            task.ModifiedByID,
		Actions:                 make([]SnapshotAction, len(task.Actions)),
	}
	if !task.ModifiedAt.IsZero() {
		snapshot.ModifiedAt = task.ModifiedAt.Format(modifiedAtLayout)
	}
	for i, action := range task.Actions {
		snapshot.Actions[i] = SnapshotAction{
			ActionName:    action.ActionName,
			AssetID:       action.AssetID,
			AssetName:     action.AssetName,
			AssetQuantity: action.AssetQuantity,
		}
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot of task %s: %w", task.ID, err)
	}
	return data, nil
}

// Entry builds a history record for a task change.
func (r *Recorder) Entry(
	source domain.HistorySource,
	note string,
	task *domain.Task,
	oldValue, newValue json.RawMessage,
	actorID string,
) *domain.TaskHistory {
	return &domain.TaskHistory{
		TaskID:      task.ID,
		Source:      source,
		Note:        note,
		OldValue:    oldValue,
		NewValue:    newValue,
		CreatedByID: &actorID,
	}
}

// Change is a single before/after mutation of a task.
type Change struct {
	Task     *domain.Task
	OldValue json.RawMessage
}

// Begin snapshots the task before it is mutated.
func (r *Recorder) Begin(task *domain.Task) (*Change, error) {
	old, err := r.Snapshot(task)
	if err != nil {
		return nil, err
	}
	return &Change{Task: task, OldValue: old}, nil
}

// Apply sets the new status on the task of a started change and returns the
// resulting history record.
func (r *Recorder) Apply(
	c *Change,
	status domain.TaskStatus,
	at time.Time,
	actorID string,
	source domain.HistorySource,
	note string,
) (*domain.TaskHistory, error) {
	c.Task.ApplyStatus(status, at, actorID)

	newValue, err := r.Snapshot(c.Task)
	if err != nil {
		return nil, err
	}
	return r.Entry(source, note, c.Task, c.OldValue, newValue, actorID), nil
}
