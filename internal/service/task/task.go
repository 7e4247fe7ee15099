package task

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/taskman/internal/models"
	"github.com/example/taskman/internal/repository"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

type TaskService struct {
	tasks repository.TaskRepo
}

func NewService(tasks repository.TaskRepo) *TaskService {
	return &TaskService{tasks: tasks}
}

type CreateParams struct {
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     *time.Time
	AssignedTo  uuid.UUID // zero value assigns to the creator
	Tags        []string
}

// Create stores a task authored by userID. Unset fields get their
// defaults, an unset assignee means self-assignment.
func (s *TaskService) Create(ctx context.Context, userID uuid.UUID, arg CreateParams) (models.Task, error) {
	if arg.Status == "" {
		arg.Status = models.TaskStatusPending
	}
	if arg.Priority == "" {
		arg.Priority = models.TaskPriorityLow
	}
	if arg.AssignedTo == uuid.Nil {
		arg.AssignedTo = userID
	}
	if arg.Tags == nil {
		arg.Tags = []string{}
	}

	task, err := s.tasks.CreateTask(ctx, models.Task{
		Title:       arg.Title,
		Description: arg.Description,
		Status:      arg.Status,
		Priority:    arg.Priority,
		DueDate:     arg.DueDate,
		AssignedBy:  userID,
		AssignedTo:  arg.AssignedTo,
		Tags:        arg.Tags,
	})
	if err != nil {
		return task, fmt.Errorf("can't create task. Err: %w", err)
	}

	return task, nil
}

func (s *TaskService) Get(ctx context.Context, id uuid.UUID, userID uuid.UUID) (models.Task, error) {
	return s.tasks.GetTask(ctx, id, userID)
}

type UpdateParams struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *time.Time
	AssignedTo  uuid.UUID
	Tags        []string
}

// Update applies the provided fields on top of the stored task.
// Visibility rules apply: only the author or the assignee may update.
func (s *TaskService) Update(ctx context.Context, id uuid.UUID, userID uuid.UUID, arg UpdateParams) (models.Task, error) {
	task, err := s.tasks.GetTask(ctx, id, userID)
	if err != nil {
		return task, err
	}

	if arg.Title != nil {
		task.Title = *arg.Title
	}
	if arg.Description != nil {
		task.Description = *arg.Description
	}
	if arg.Status != nil {
		task.Status = *arg.Status
	}
	if arg.Priority != nil {
		task.Priority = *arg.Priority
	}
	if arg.DueDate != nil {
		task.DueDate = arg.DueDate
	}
	if arg.AssignedTo != uuid.Nil {
		task.AssignedTo = arg.AssignedTo
	}
	if arg.Tags != nil {
		task.Tags = arg.Tags
	}

	return s.tasks.UpdateTask(ctx, task, userID)
}

func (s *TaskService) Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	return s.tasks.DeleteTask(ctx, id, userID)
}

type ListParams struct {
	Scope  string
	Status string
	Search string
	SortBy string
	Order  string
	Page   int
	Limit  int
}

type TaskPage struct {
	Tasks []models.Task `json:"tasks"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

func (s *TaskService) List(ctx context.Context, userID uuid.UUID, arg ListParams) (TaskPage, error) {
	if arg.Page < 1 {
		arg.Page = defaultPage
	}
	if arg.Limit < 1 {
		arg.Limit = defaultLimit
	}
	if arg.Limit > maxLimit {
		arg.Limit = maxLimit
	}

	tasks, total, err := s.tasks.ListTasks(ctx, repository.ListTasksParams{
		UserID: userID,
		Scope:  arg.Scope,
		Status: arg.Status,
		Search: arg.Search,
		SortBy: arg.SortBy,
		Order:  arg.Order,
		Limit:  arg.Limit,
		Offset: (arg.Page - 1) * arg.Limit,
	})
	if err != nil {
		return TaskPage{}, err
	}

	return TaskPage{
		Tasks: tasks,
		Total: total,
		Page:  arg.Page,
		Limit: arg.Limit,
	}, nil
}

func (s *TaskService) Stats(ctx context.Context, userID uuid.UUID) (models.TaskStats, error) {
	return s.tasks.TaskStats(ctx, userID)
}
