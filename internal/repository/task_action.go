package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/mtlprog/planner/internal/domain"
)

// TaskActionRepository loads the actions belonging to tasks.
type TaskActionRepository struct{}

// NewTaskActionRepository creates a new TaskActionRepository.
func NewTaskActionRepository() *TaskActionRepository {
	return &TaskActionRepository{}
}

// ListByTaskIDs returns actions grouped by task id, each group ordered by sort order.
func (r *TaskActionRepository) ListByTaskIDs(ctx context.Context, q Querier, taskIDs []string) (map[string][]domain.TaskAction, error) {
	result := make(map[string][]domain.TaskAction, len(taskIDs))
	if len(taskIDs) == 0 {
		return result, nil
	}

	query, args, err := psql.
		Select("id", "system_task_id", "action_name", "asset_id", "asset_name", "asset_quantity", "sort_order").
		From("system_task_actions").
		Where(sq.Eq{"system_task_id": taskIDs}).
		OrderBy("system_task_id", "sort_order ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListByTaskIDs query: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query task actions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var action domain.TaskAction
		err := rows.Scan(
			&action.ID,
			&action.TaskID,
			&action.ActionName,
			&action.AssetID,
			&action.AssetName,
			&action.AssetQuantity,
			&action.SortOrder,
		)
		if err != nil {
			return nil, fmt.Errorf("scan task action: %w", err)
		}
		result[action.TaskID] = append(result[action.TaskID], action)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return result, nil
}

// Attach loads and sets Actions on every task. Tasks without actions get an empty slice.
func (r *TaskActionRepository) Attach(ctx context.Context, q Querier, tasks []*domain.Task) error {
	ids := make([]string, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID
	}

	actions, err := r.ListByTaskIDs(ctx, q, ids)
	if err != nil {
		return err
	}

	for _, task := range tasks {
		task.Actions = actions[task.ID]
		if task.Actions == nil {
			task.Actions = []domain.TaskAction{}
		}
	}
	return nil
}
