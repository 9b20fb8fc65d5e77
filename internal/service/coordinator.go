package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mtlprog/planner/internal/database"
	"github.com/mtlprog/planner/internal/domain"
	"github.com/mtlprog/planner/internal/history"
	"github.com/mtlprog/planner/internal/metrics"
	"github.com/mtlprog/planner/internal/notify"
	"github.com/mtlprog/planner/internal/repository"
)

// TxBeginner starts database transactions. *pgxpool.Pool satisfies it.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TaskStore is the persistence boundary for tasks.
type TaskStore interface {
	GetWithActions(ctx context.Context, q repository.Querier, taskID string) (*domain.Task, error)
	GetWithActionsForUpdate(ctx context.Context, tx pgx.Tx, taskID string) (*domain.Task, error)
	ListByConfigurationForUpdate(ctx context.Context, tx pgx.Tx, configurationID string) ([]*domain.Task, error)
	LockConfiguration(ctx context.Context, tx pgx.Tx, configurationID string) error
	Save(ctx context.Context, tx pgx.Tx, task *domain.Task) error
	ConfigurationExists(ctx context.Context, q repository.Querier, hotelGroupID, configurationID string) (bool, error)
}

// HistoryStore appends and reads task history records.
type HistoryStore interface {
	CreateBatch(ctx context.Context, tx pgx.Tx, histories []*domain.TaskHistory) error
	ListByTaskID(ctx context.Context, taskID string) ([]*domain.TaskHistory, error)
}

// HotelStore reads hotels.
type HotelStore interface {
	GetByID(ctx context.Context, q repository.Querier, hotelID string) (*domain.Hotel, error)
}

// Notifier hands committed changes to the notification pipeline.
type Notifier interface {
	Dispatch(ctx context.Context, event notify.TasksChanged)
}

var (
	_ TaskStore    = (*repository.TaskRepository)(nil)
	_ HistoryStore = (*repository.TaskHistoryRepository)(nil)
	_ HotelStore   = (*repository.HotelRepository)(nil)
	_ Notifier     = (*notify.Dispatcher)(nil)
)

// UpdateStatusParams is a status change requested by a mobile user.
type UpdateStatusParams struct {
	TaskID       string
	Status       string // client token, e.g. "claimed" or "completed"
	ActingUserID string
	TenantID     string
}

// CancelTaskParams is a cancellation requested by an administrator.
type CancelTaskParams struct {
	TaskID       string
	ActingUserID string
	TenantID     string
}

// CancelConfigurationParams cancels every open task of a configuration.
type CancelConfigurationParams struct {
	ConfigurationID string
	ActingUserID    string
	TenantID        string
}

// StatusChange describes a committed change.
type StatusChange struct {
	// Task is the task the request was about; nil for bulk cancellation.
	Task *domain.Task

	// Siblings changed along with Task: the claim losers, or every task a
	// bulk cancellation closed.
	Siblings []*domain.Task

	// Histories holds one record per changed task, Task first.
	Histories []*domain.TaskHistory
}

// Tasks returns every changed task, the requested one first.
func (c *StatusChange) Tasks() []*domain.Task {
	tasks := make([]*domain.Task, 0, len(c.Siblings)+1)
	if c.Task != nil {
		tasks = append(tasks, c.Task)
	}
	return append(tasks, c.Siblings...)
}

// Coordinator applies task status changes. Each call is one transaction that
// updates the tasks and appends their history; the notification is sent only
// after commit.
type Coordinator struct {
	pool      TxBeginner
	tasks     TaskStore
	histories HistoryStore
	recorder  *history.Recorder
	clock     *HotelClock
	notifier  Notifier
}

// NewCoordinator creates a new Coordinator.
func NewCoordinator(
	pool TxBeginner,
	tasks TaskStore,
	histories HistoryStore,
	hotels HotelStore,
	notifier Notifier,
	now func() time.Time,
) *Coordinator {
	return &Coordinator{
		pool:      pool,
		tasks:     tasks,
		histories: histories,
		recorder:  history.NewRecorder(),
		clock:     NewHotelClock(hotels, now),
		notifier:  notifier,
	}
}

// UpdateStatus moves a task to the status named by a client token. Claiming
// an exclusive task marks every sibling of the same configuration working on
// the same target as claimed by someone else.
func (s *Coordinator) UpdateStatus(ctx context.Context, params UpdateStatusParams) (*StatusChange, error) {
	status := domain.ParseStatusToken(params.Status)
	if status == domain.TaskStatusUnknown {
		slog.Warn("unmapped status token stored as UNKNOWN",
			"task_id", params.TaskID,
			"token", params.Status,
		)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer database.Rollback(ctx, tx)

	task, conflicts, err := s.loadForStatusChange(ctx, tx, params.TaskID, params.TenantID, status)
	if err != nil {
		return nil, err
	}

	at, err := s.clock.Now(ctx, tx, task.ToHotelID)
	if err != nil {
		return nil, err
	}

	change := &StatusChange{Task: task, Siblings: conflicts}

	entry, err := s.transition(task, status, at, params.ActingUserID, domain.HistorySourceMobileUser, domain.NoteStatusChanged)
	if err != nil {
		return nil, err
	}
	change.Histories = append(change.Histories, entry)

	for _, sibling := range conflicts {
		entry, err := s.transition(sibling, domain.TaskStatusClaimedBySomeoneElse, at, params.ActingUserID,
			domain.HistorySourceMobileUser, domain.NoteClaimedBySomeoneElse)
		if err != nil {
			return nil, err
		}
		change.Histories = append(change.Histories, entry)
	}

	if err := s.persistAndCommit(ctx, tx, change); err != nil {
		return nil, err
	}

	metrics.StatusChanges.WithLabelValues(string(status), string(domain.HistorySourceMobileUser)).Inc()
	metrics.ClaimConflicts.Add(float64(len(conflicts)))

	slog.Info("task status changed",
		"task_id", task.ID,
		"tenant_id", params.TenantID,
		"user_id", params.ActingUserID,
		"status", status,
		"claimed_by_someone_else", len(conflicts),
	)

	s.notifier.Dispatch(ctx, notify.NewTasksChanged(params.TenantID, notify.MessageStatusChanged, change.Tasks()...))

	return change, nil
}

// loadForStatusChange locks the task and, when the change is a claim, the
// siblings that lose it.
func (s *Coordinator) loadForStatusChange(
	ctx context.Context,
	tx pgx.Tx,
	taskID, tenantID string,
	status domain.TaskStatus,
) (*domain.Task, []*domain.Task, error) {
	// Configuration and target are immutable, so an unlocked read is enough
	// to decide which locks to take.
	peek, err := s.tasks.GetWithActions(ctx, tx, taskID)
	if err != nil {
		return nil, nil, err
	}
	if peek.HotelGroupID != tenantID {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, taskID)
	}

	if !peek.RequiresConflictScan(status) {
		task, err := s.tasks.GetWithActionsForUpdate(ctx, tx, taskID)
		if err != nil {
			return nil, nil, err
		}
		return task, nil, nil
	}

	if err := s.tasks.LockConfiguration(ctx, tx, peek.SystemTaskConfigurationID); err != nil {
		return nil, nil, err
	}

	siblings, err := s.tasks.ListByConfigurationForUpdate(ctx, tx, peek.SystemTaskConfigurationID)
	if err != nil {
		return nil, nil, err
	}

	var task *domain.Task
	for _, sibling := range siblings {
		if sibling.ID == taskID {
			task = sibling
			break
		}
	}
	if task == nil {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, taskID)
	}

	return task, domain.ConflictingSiblings(task, siblings), nil
}

// CancelTask cancels a single task whatever its current status.
func (s *Coordinator) CancelTask(ctx context.Context, params CancelTaskParams) (*StatusChange, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer database.Rollback(ctx, tx)

	task, err := s.tasks.GetWithActionsForUpdate(ctx, tx, params.TaskID)
	if err != nil {
		return nil, err
	}
	if task.HotelGroupID != params.TenantID {
		return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, params.TaskID)
	}

	oldStatus := task.StatusKey
	entry, err := s.transition(task, domain.TaskStatusCancelled, s.clock.UTCNow(), params.ActingUserID,
		domain.HistorySourceAdmin, domain.NoteTaskCancelled)
	if err != nil {
		return nil, err
	}

	change := &StatusChange{Task: task, Histories: []*domain.TaskHistory{entry}}
	if err := s.persistAndCommit(ctx, tx, change); err != nil {
		return nil, err
	}

	metrics.StatusChanges.WithLabelValues(string(domain.TaskStatusCancelled), string(domain.HistorySourceAdmin)).Inc()

	slog.Info("task cancelled",
		"task_id", task.ID,
		"tenant_id", params.TenantID,
		"user_id", params.ActingUserID,
		"old_status", oldStatus,
	)

	s.notifier.Dispatch(ctx, notify.NewTasksChanged(params.TenantID, notify.MessageTaskCancelled, task))

	return change, nil
}

// CancelTasksByConfiguration cancels every task of a configuration that is not
// already finished, cancelled or rejected.
func (s *Coordinator) CancelTasksByConfiguration(ctx context.Context, params CancelConfigurationParams) (*StatusChange, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer database.Rollback(ctx, tx)

	exists, err := s.tasks.ConfigurationExists(ctx, tx, params.TenantID, params.ConfigurationID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrConfigurationNotFound, params.ConfigurationID)
	}

	if err := s.tasks.LockConfiguration(ctx, tx, params.ConfigurationID); err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListByConfigurationForUpdate(ctx, tx, params.ConfigurationID)
	if err != nil {
		return nil, err
	}

	at := s.clock.UTCNow()
	change := &StatusChange{}
	for _, task := range tasks {
		if task.StatusKey.IsClosed() {
			continue
		}
		entry, err := s.transition(task, domain.TaskStatusCancelled, at, params.ActingUserID,
			domain.HistorySourceAdmin, domain.NoteTaskCancelled)
		if err != nil {
			return nil, err
		}
		change.Siblings = append(change.Siblings, task)
		change.Histories = append(change.Histories, entry)
	}

	if err := s.persistAndCommit(ctx, tx, change); err != nil {
		return nil, err
	}

	metrics.StatusChanges.WithLabelValues(string(domain.TaskStatusCancelled), string(domain.HistorySourceAdmin)).
		Add(float64(len(change.Siblings)))

	slog.Info("configuration tasks cancelled",
		"configuration_id", params.ConfigurationID,
		"tenant_id", params.TenantID,
		"user_id", params.ActingUserID,
		"cancelled", len(change.Siblings),
	)

	if len(change.Siblings) > 0 {
		s.notifier.Dispatch(ctx, notify.NewTasksChanged(params.TenantID, notify.MessageTaskCancelled, change.Siblings...))
	}

	return change, nil
}

// History returns a task of the tenant together with its audit trail, oldest first.
func (s *Coordinator) History(ctx context.Context, tenantID, taskID string) (*domain.Task, []*domain.TaskHistory, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer database.Rollback(ctx, tx)

	task, err := s.tasks.GetWithActions(ctx, tx, taskID)
	if err != nil {
		return nil, nil, err
	}
	if task.HotelGroupID != tenantID {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, taskID)
	}

	histories, err := s.histories.ListByTaskID(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}

	return task, histories, nil
}

// transition snapshots the task, applies the status and returns its history record.
func (s *Coordinator) transition(
	task *domain.Task,
	status domain.TaskStatus,
	at time.Time,
	actorID string,
	source domain.HistorySource,
	note string,
) (*domain.TaskHistory, error) {
	c, err := s.recorder.Begin(task)
	if err != nil {
		return nil, err
	}
	return s.recorder.Apply(c, status, at, actorID, source, note)
}

// persistAndCommit writes the changed tasks, then their history, then commits.
func (s *Coordinator) persistAndCommit(ctx context.Context, tx pgx.Tx, change *StatusChange) error {
	for _, task := range change.Tasks() {
		if err := s.tasks.Save(ctx, tx, task); err != nil {
			return fmt.Errorf("save task: %w", err)
		}
	}
	if err := s.histories.CreateBatch(ctx, tx, change.Histories); err != nil {
		return fmt.Errorf("create history: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
