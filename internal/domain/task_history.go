package domain

import (
	"encoding/json"
	"time"
)

// HistorySource identifies the class of actor behind a task change.
type HistorySource string

const (
	HistorySourceMobileUser HistorySource = "MOBILE_USER"
	HistorySourceAdmin      HistorySource = "ADMIN"
)

// Notes written to the audit trail.
const (
	NoteStatusChanged        = "Status changed."
	NoteClaimedBySomeoneElse = "Status changed. Claimed by someone else."
	NoteTaskCancelled        = "Task cancelled."
)

// TaskHistory is an append-only audit record of one task mutation.
type TaskHistory struct {
	ID          string
	TaskID      string
	Source      HistorySource
	Note        string
	OldValue    json.RawMessage
	NewValue    json.RawMessage
	CreatedByID *string
	CreatedAt   time.Time
}
