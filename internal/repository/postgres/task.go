package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/example/taskman/internal/apperrors"
	"github.com/example/taskman/internal/models"
	"github.com/example/taskman/internal/repository"
)

type TaskRepo struct {
	DB DBTX
}

const taskColumns = "id, created_at, updated_at, title, description, status, priority, due_date, assigned_by, assigned_to, tags"

const createTask = `-- name: CreateTask
INSERT INTO tasks (id, title, description, status, priority, due_date, assigned_by, assigned_to, tags)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + taskColumns

func (r *TaskRepo) CreateTask(ctx context.Context, task models.Task) (models.Task, error) {
	rows, _ := r.DB.Query(ctx, createTask,
		uuid.New(), task.Title, task.Description, task.Status, task.Priority,
		task.DueDate, task.AssignedBy, task.AssignedTo, task.Tags,
	)
	created, err := pgx.CollectOneRow(rows, rowToTask)
	if err != nil {
		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

const getTask = `-- name: GetTask
SELECT ` + taskColumns + `
FROM tasks
WHERE id = $1 AND (assigned_to = $2 OR assigned_by = $2)
`

func (r *TaskRepo) GetTask(ctx context.Context, id uuid.UUID, userID uuid.UUID) (models.Task, error) {
	rows, _ := r.DB.Query(ctx, getTask, id, userID)
	return collectTask(rows)
}

const updateTask = `-- name: UpdateTask
UPDATE tasks
SET title = $3, description = $4, status = $5, priority = $6, due_date = $7, assigned_to = $8, tags = $9, updated_at = now()
WHERE id = $1 AND (assigned_to = $2 OR assigned_by = $2)
RETURNING ` + taskColumns

func (r *TaskRepo) UpdateTask(ctx context.Context, task models.Task, userID uuid.UUID) (models.Task, error) {
	rows, _ := r.DB.Query(ctx, updateTask,
		task.ID, userID, task.Title, task.Description, task.Status,
		task.Priority, task.DueDate, task.AssignedTo, task.Tags,
	)
	return collectTask(rows)
}

const deleteTask = `-- name: DeleteTask
DELETE FROM tasks
WHERE id = $1 AND (assigned_to = $2 OR assigned_by = $2)
`

func (r *TaskRepo) DeleteTask(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteTask, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrTaskNotFound
	}

	return nil
}

// Sortable columns exposed to the API mapped on real column names
var taskSortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"dueDate":   "due_date",
	"title":     "title",
	"status":    "status",
	"priority":  "priority",
}

func (r *TaskRepo) ListTasks(ctx context.Context, arg repository.ListTasksParams) ([]models.Task, int64, error) {
	scopeColumn := "assigned_to"
	if arg.Scope == repository.ScopeAssignedByMe {
		scopeColumn = "assigned_by"
	}

	where := []string{scopeColumn + " = $1"}
	args := []any{arg.UserID}

	if arg.Status != "" {
		args = append(args, arg.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if arg.Search != "" {
		args = append(args, "%"+arg.Search+"%")
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	whereClause := strings.Join(where, " AND ")

	var total int64
	err := r.DB.QueryRow(ctx, "SELECT count(*) FROM tasks WHERE "+whereClause, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	sortColumn, ok := taskSortColumns[arg.SortBy]
	if !ok {
		sortColumn = "created_at"
	}
	direction := "DESC"
	if arg.Order == "asc" {
		direction = "ASC"
	}

	args = append(args, arg.Limit, arg.Offset)
	query := fmt.Sprintf(
		"SELECT %s FROM tasks WHERE %s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		taskColumns, whereClause, sortColumn, direction, len(args)-1, len(args),
	)

	rows, _ := r.DB.Query(ctx, query, args...)
	tasks, err := pgx.CollectRows(rows, rowToTask)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	return tasks, total, nil
}

const taskStats = `-- name: TaskStats
SELECT count(*), count(*) FILTER (WHERE status = 'completed')
FROM tasks
WHERE assigned_to = $1
`

func (r *TaskRepo) TaskStats(ctx context.Context, userID uuid.UUID) (models.TaskStats, error) {
	var stats models.TaskStats
	err := r.DB.QueryRow(ctx, taskStats, userID).Scan(&stats.Total, &stats.Completed)
	if err != nil {
		return stats, fmt.Errorf("db error: %w", err)
	}
	stats.Pending = stats.Total - stats.Completed

	return stats, nil
}

func collectTask(rows pgx.Rows) (models.Task, error) {
	task, err := pgx.CollectOneRow(rows, rowToTask)

	switch {
	case err == nil:
		return task, nil
	case errors.Is(err, pgx.ErrNoRows):
		return task, apperrors.ErrTaskNotFound
	default:
		return task, fmt.Errorf("db error: %w", err)
	}
}

func rowToTask(row pgx.CollectableRow) (models.Task, error) {
	var t models.Task
	err := row.Scan(
		&t.ID, &t.CreatedAt, &t.UpdatedAt, &t.Title, &t.Description,
		&t.Status, &t.Priority, &t.DueDate, &t.AssignedBy, &t.AssignedTo, &t.Tags,
	)
	return t, err
}
