package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/mtlprog/planner/internal/domain"
)

// TaskListFilters holds all supported filters for task listing.
type TaskListFilters struct {
	HotelGroupID    string   // Required: tenant
	Statuses        []string // Optional: filter by status
	UserID          *string  // Optional: filter by assignee
	ConfigurationID *string  // Optional: filter by configuration
	HotelID         *string  // Optional: filter by hotel
	Limit           int      // Required: page size
	Offset          int      // Required: page offset
}

// apply adds the filter conditions shared by the page and count queries.
func (f TaskListFilters) apply(qb sq.SelectBuilder) sq.SelectBuilder {
	qb = qb.Where(sq.Eq{"hotel_group_id": f.HotelGroupID})
	if len(f.Statuses) > 0 {
		qb = qb.Where(sq.Eq{"status_key": f.Statuses})
	}
	if f.UserID != nil {
		qb = qb.Where(sq.Eq{"user_id": *f.UserID})
	}
	if f.ConfigurationID != nil {
		qb = qb.Where(sq.Eq{"system_task_configuration_id": *f.ConfigurationID})
	}
	if f.HotelID != nil {
		qb = qb.Where(sq.Eq{"to_hotel_id": *f.HotelID})
	}
	return qb
}

// List retrieves a page of tasks with their actions, most recently modified first.
func (r *TaskRepository) List(ctx context.Context, filters TaskListFilters) ([]*domain.Task, int, error) {
	query, args, err := filters.apply(psql.Select(taskColumns...).From("system_tasks")).
		OrderBy("modified_at DESC", "id ASC").
		Limit(uint64(filters.Limit)).
		Offset(uint64(filters.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build List query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query tasks: %w", err)
	}

	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, 0, err
	}

	if err := r.actions.Attach(ctx, r.pool, tasks); err != nil {
		return nil, 0, err
	}

	countQuery, countArgs, err := filters.apply(psql.Select("COUNT(*)").From("system_tasks")).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	return tasks, total, nil
}
