package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/example/taskman/internal/handlers/middleware"
	"github.com/example/taskman/internal/logger"
	"github.com/example/taskman/internal/models"
	"github.com/example/taskman/internal/service/task"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	auth authService,
	tasks taskService,
	l logger.Logger,
) http.Handler {
	authMiddleware := middleware.AuthMiddleware(auth, l)
	withAuth := func(h http.Handler) http.Handler {
		return authMiddleware(h)
	}

	root := http.NewServeMux()

	root.Handle("POST /auth/register", handleRegister(auth, l))
	root.Handle("POST /auth/login", handleLogin(auth, l))
	root.Handle("POST /auth/refresh", handleRefresh(auth, l))
	root.Handle("POST /auth/logout", withAuth(handleLogout(auth, l)))
	root.Handle("GET /auth/me", withAuth(handleMe()))

	root.Handle("POST /tasks", withAuth(handleCreateTask(tasks, l)))
	root.Handle("GET /tasks", withAuth(handleListTasks(tasks, l)))
	root.Handle("GET /tasks/stats", withAuth(handleTaskStats(tasks, l)))
	root.Handle("GET /tasks/{id}", withAuth(handleGetTask(tasks, l)))
	root.Handle("PUT /tasks/{id}", withAuth(handleUpdateTask(tasks, l)))
	root.Handle("DELETE /tasks/{id}", withAuth(handleDeleteTask(tasks, l)))

	handler := chain(root,
		middleware.LoggerMiddleware(l),
	)

	return handler
}

type authService interface {
	// Register user and immediately start a session
	// Has to return apperrors.ErrUserAlreadyExists if email is taken
	Register(ctx context.Context, email string, password string, name string) (models.User, models.TokenPair, error)

	// Login with email and password
	// Unknown email and wrong password both return apperrors.ErrInvalidCredentials
	Login(ctx context.Context, email string, password string) (models.User, models.TokenPair, error)

	// Rotate the refresh token, the presented one is single-use
	Refresh(ctx context.Context, refresh string) (models.User, models.TokenPair, error)

	// Drop the stored refresh session, idempotent
	Logout(ctx context.Context, userID uuid.UUID) error

	// Refresh cookie transport
	SetRefreshCookie(w http.ResponseWriter, refresh models.IssuedToken)
	ClearRefreshCookie(w http.ResponseWriter)
	ReadRefreshToken(r *http.Request) (string, error)

	// Validate the bearer access token on the request
	Authenticate(r *http.Request) (models.Claims, error)
}

type taskService interface {
	Create(ctx context.Context, userID uuid.UUID, arg task.CreateParams) (models.Task, error)
	Get(ctx context.Context, id uuid.UUID, userID uuid.UUID) (models.Task, error)
	Update(ctx context.Context, id uuid.UUID, userID uuid.UUID, arg task.UpdateParams) (models.Task, error)
	Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, arg task.ListParams) (task.TaskPage, error)
	Stats(ctx context.Context, userID uuid.UUID) (models.TaskStats, error)
}
