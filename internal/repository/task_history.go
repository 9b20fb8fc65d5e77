package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mtlprog/planner/internal/domain"
)

// TaskHistoryRepository handles database operations for task history records.
type TaskHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewTaskHistoryRepository creates a new TaskHistoryRepository.
func NewTaskHistoryRepository(pool *pgxpool.Pool) *TaskHistoryRepository {
	return &TaskHistoryRepository{pool: pool}
}

// Create appends a history record.
func (r *TaskHistoryRepository) Create(ctx context.Context, tx pgx.Tx, history *domain.TaskHistory) error {
	query, args, err := psql.
		Insert("system_task_histories").
		Columns("system_task_id", "source", "note", "old_value", "new_value", "created_by_id").
		Values(history.TaskID, history.Source, history.Note, history.OldValue, history.NewValue, history.CreatedByID).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	err = tx.QueryRow(ctx, query, args...).Scan(&history.ID, &history.CreatedAt)
	if err != nil {
		return fmt.Errorf("create task history: %w", err)
	}

	return nil
}

// CreateBatch appends history records in the given order.
func (r *TaskHistoryRepository) CreateBatch(ctx context.Context, tx pgx.Tx, histories []*domain.TaskHistory) error {
	for _, history := range histories {
		if err := r.Create(ctx, tx, history); err != nil {
			return fmt.Errorf("task %s: %w", history.TaskID, err)
		}
	}
	return nil
}

// ListByTaskID retrieves the audit trail of a task, oldest first.
func (r *TaskHistoryRepository) ListByTaskID(ctx context.Context, taskID string) ([]*domain.TaskHistory, error) {
	query, args, err := psql.
		Select("id", "system_task_id", "source", "note", "old_value", "new_value", "created_by_id", "created_at").
		From("system_task_histories").
		Where(sq.Eq{"system_task_id": taskID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query task histories: %w", err)
	}
	defer rows.Close()

	var histories []*domain.TaskHistory
	for rows.Next() {
		var history domain.TaskHistory
		err := rows.Scan(
			&history.ID,
			&history.TaskID,
			&history.Source,
			&history.Note,
			&history.OldValue,
			&history.NewValue,
			&history.CreatedByID,
			&history.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan task history: %w", err)
		}
		histories = append(histories, &history)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return histories, nil
}
