package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/example/taskman/internal/models"
)

type CreateUserParams struct {
	Email        string
	Name         string
	PasswordHash string
}

// User repository interface
type UserRepo interface {
	// Create user
	// If user with email exists already has to return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, arg CreateUserParams) (models.User, error)

	// Get user by id or email (exact match)
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, id uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	// Unconditionally replace the stored refresh token hash.
	// nil clears it (logout). Used on login and register.
	SetRefreshTokenHash(ctx context.Context, userID uuid.UUID, hash *string) error

	// Compare-and-swap the stored refresh token hash: the update applies
	// only while the stored value still equals oldHash. A concurrent
	// rotation that got there first must surface as
	// apperrors.ErrRefreshRequestDenied.
	RotateRefreshTokenHash(ctx context.Context, userID uuid.UUID, oldHash string, newHash string) error
}

// Task repository interface
// All reads and writes are scoped to a user: a task is visible only to
// the user it is assigned to or the user who assigned it
type TaskRepo interface {
	CreateTask(ctx context.Context, task models.Task) (models.Task, error)

	// Must return apperrors.ErrTaskNotFound when the task does not exist
	// or is not visible to userID
	GetTask(ctx context.Context, id uuid.UUID, userID uuid.UUID) (models.Task, error)
	UpdateTask(ctx context.Context, task models.Task, userID uuid.UUID) (models.Task, error)
	DeleteTask(ctx context.Context, id uuid.UUID, userID uuid.UUID) error

	ListTasks(ctx context.Context, arg ListTasksParams) ([]models.Task, int64, error)
	TaskStats(ctx context.Context, userID uuid.UUID) (models.TaskStats, error)
}

// Scope of a task list query
const (
	ScopeAssignedToMe = "toMe"
	ScopeAssignedByMe = "byMe"
)

type ListTasksParams struct {
	UserID uuid.UUID
	Scope  string // ScopeAssignedToMe (default) or ScopeAssignedByMe
	Status string // empty matches all
	Search string // case-insensitive substring over title and description
	SortBy string // whitelisted column, createdAt by default
	Order  string // asc or desc (default)
	Limit  int
	Offset int
}
