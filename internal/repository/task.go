package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mtlprog/planner/internal/domain"
)

// taskColumns is the shared list of columns for task queries.
var taskColumns = []string{
	"id", "hotel_group_id", "system_task_configuration_id", "to_hotel_id",
	"to_warehouse_id", "to_room_id", "to_reservation_id", "user_id", "status_key",
	"must_be_finished_by_all_whos", "created_at", "modified_at", "modified_by_id",
}

// TaskRepository handles database operations for system tasks.
type TaskRepository struct {
	pool    *pgxpool.Pool
	actions *TaskActionRepository
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{
		pool:    pool,
		actions: NewTaskActionRepository(),
	}
}

// scanTask scans a single row into a Task struct.
func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	err := row.Scan(
		&task.ID,
		&task.HotelGroupID,
		&task.SystemTaskConfigurationID,
		&task.ToHotelID,
		&task.ToWarehouseID,
		&task.ToRoomID,
		&task.ToReservationID,
		&task.UserID,
		&task.StatusKey,
		&task.MustBeFinishedByAllWhos,
		&task.CreatedAt,
		&task.ModifiedAt,
		&task.ModifiedByID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	return &task, nil
}

// scanTasks scans multiple rows into a slice of Task structs.
func scanTasks(rows pgx.Rows) ([]*domain.Task, error) {
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return tasks, nil
}

// GetByID retrieves a task by ID without its actions.
func (r *TaskRepository) GetByID(ctx context.Context, taskID string) (*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("system_tasks").
		Where(sq.Eq{"id": taskID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for task: %w", err)
	}

	return scanTask(r.pool.QueryRow(ctx, query, args...))
}

// GetWithActions retrieves a task with its actions.
func (r *TaskRepository) GetWithActions(ctx context.Context, q Querier, taskID string) (*domain.Task, error) {
	return r.getWithActions(ctx, q, taskID, "")
}

// GetWithActionsForUpdate retrieves a task with its actions and locks the task row.
func (r *TaskRepository) GetWithActionsForUpdate(ctx context.Context, tx pgx.Tx, taskID string) (*domain.Task, error) {
	return r.getWithActions(ctx, tx, taskID, "FOR UPDATE")
}

func (r *TaskRepository) getWithActions(ctx context.Context, q Querier, taskID, suffix string) (*domain.Task, error) {
	qb := psql.
		Select(taskColumns...).
		From("system_tasks").
		Where(sq.Eq{"id": taskID})
	if suffix != "" {
		qb = qb.Suffix(suffix)
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get query for task %s: %w", taskID, err)
	}

	task, err := scanTask(q.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}

	if err := r.actions.Attach(ctx, q, []*domain.Task{task}); err != nil {
		return nil, err
	}

	return task, nil
}

// ListByConfigurationForUpdate retrieves and locks all tasks generated from a
// configuration, with their actions. Rows are locked in id order.
func (r *TaskRepository) ListByConfigurationForUpdate(ctx context.Context, tx pgx.Tx, configurationID string) ([]*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("system_tasks").
		Where(sq.Eq{"system_task_configuration_id": configurationID}).
		OrderBy("id ASC").
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListByConfigurationForUpdate query for configuration %s: %w", configurationID, err)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query configuration tasks: %w", err)
	}

	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, err
	}

	if err := r.actions.Attach(ctx, tx, tasks); err != nil {
		return nil, err
	}

	return tasks, nil
}

// LockConfiguration takes a transaction-scoped advisory lock on a configuration,
// serialising claim scans over the same group of sibling tasks.
func (r *TaskRepository) LockConfiguration(ctx context.Context, tx pgx.Tx, configurationID string) error {
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))", configurationID); err != nil {
		return fmt.Errorf("lock configuration %s: %w", configurationID, err)
	}
	return nil
}

// Save persists the mutable status fields of a task.
func (r *TaskRepository) Save(ctx context.Context, tx pgx.Tx, task *domain.Task) error {
	query, args, err := psql.
		Update("system_tasks").
		Set("status_key", task.StatusKey).
		Set("modified_at", task.ModifiedAt).
		Set("modified_by_id", task.ModifiedByID).
		Where(sq.Eq{"id": task.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Save query for task %s: %w", task.ID, err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update task %s: %w", task.ID, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, task.ID)
	}

	return nil
}

// ConfigurationExists checks that a configuration belongs to the hotel group.
func (r *TaskRepository) ConfigurationExists(ctx context.Context, q Querier, hotelGroupID, configurationID string) (bool, error) {
	query, args, err := psql.
		Select("1").
		Prefix("SELECT EXISTS (").
		From("system_task_configurations").
		Where(sq.Eq{"id": configurationID, "hotel_group_id": hotelGroupID}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build ConfigurationExists query: %w", err)
	}

	var exists bool
	if err := q.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("query configuration: %w", err)
	}
	return exists, nil
}
