package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// StatusCounts maps a status key to the number of tasks in it.
type StatusCounts map[string]int

// CountByStatus groups a configuration's tasks by status.
func (r *TaskRepository) CountByStatus(ctx context.Context, hotelGroupID, configurationID string) (StatusCounts, error) {
	query, args, err := psql.
		Select("status_key", "COUNT(*)").
		From("system_tasks").
		Where(sq.Eq{
			"hotel_group_id":               hotelGroupID,
			"system_task_configuration_id": configurationID,
		}).
		GroupBy("status_key").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build CountByStatus query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query status counts: %w", err)
	}
	defer rows.Close()

	counts := make(StatusCounts)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return counts, nil
}
