package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/example/taskman/internal/apperrors"
	"github.com/example/taskman/internal/handlers/render"
	"github.com/example/taskman/internal/handlers/userctx"
	"github.com/example/taskman/internal/logger"
	"github.com/example/taskman/internal/service/task"
)

var errInvalidTaskID = apperrors.New(apperrors.KindValidation, "invalid task id")

func handleCreateTask(tasks taskService, l logger.Logger) http.Handler {
	type request struct {
		Title       string     `json:"title" validate:"required,max=200"`
		Description string     `json:"description" validate:"omitempty,max=2000"`
		Status      string     `json:"status" validate:"omitempty,oneof=pending in-progress completed"`
		Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high"`
		DueDate     *time.Time `json:"dueDate"`
		AssignedTo  uuid.UUID  `json:"assignedTo"`
		Tags        []string   `json:"tags"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := userctx.FromContext(r.Context())
		if !ok {
			render.Error(w, apperrors.ErrAccessTokenInvalid)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		created, err := tasks.Create(r.Context(), claims.UserID, task.CreateParams{
			Title:       data.Title,
			Description: data.Description,
			Status:      data.Status,
			Priority:    data.Priority,
			DueDate:     data.DueDate,
			AssignedTo:  data.AssignedTo,
			Tags:        data.Tags,
		})
		if err != nil {
			l.Error("task create failed", "error", err)
			render.Error(w, err)
			return
		}

		render.JSONWithStatus(w, created, http.StatusCreated)
	})
}

func handleGetTask(tasks taskService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := userctx.FromContext(r.Context())
		if !ok {
			render.Error(w, apperrors.ErrAccessTokenInvalid)
			return
		}

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.Error(w, errInvalidTaskID)
			return
		}

		found, err := tasks.Get(r.Context(), id, claims.UserID)
		if err != nil {
			if apperrors.KindOf(err) == apperrors.KindInternal {
				l.Error("task get failed", "error", err)
			}
			render.Error(w, err)
			return
		}

		render.JSON(w, found)
	})
}

func handleUpdateTask(tasks taskService, l logger.Logger) http.Handler {
	type request struct {
		Title       *string    `json:"title" validate:"omitempty,max=200"`
		Description *string    `json:"description" validate:"omitempty,max=2000"`
		Status      *string    `json:"status" validate:"omitempty,oneof=pending in-progress completed"`
		Priority    *string    `json:"priority" validate:"omitempty,oneof=low medium high"`
		DueDate     *time.Time `json:"dueDate"`
		AssignedTo  uuid.UUID  `json:"assignedTo"`
		Tags        []string   `json:"tags"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := userctx.FromContext(r.Context())
		if !ok {
			render.Error(w, apperrors.ErrAccessTokenInvalid)
			return
		}

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.Error(w, errInvalidTaskID)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		updated, err := tasks.Update(r.Context(), id, claims.UserID, task.UpdateParams{
			Title:       data.Title,
			Description: data.Description,
			Status:      data.Status,
			Priority:    data.Priority,
			DueDate:     data.DueDate,
			AssignedTo:  data.AssignedTo,
			Tags:        data.Tags,
		})
		if err != nil {
			if apperrors.KindOf(err) == apperrors.KindInternal {
				l.Error("task update failed", "error", err)
			}
			render.Error(w, err)
			return
		}

		render.JSON(w, updated)
	})
}

func handleDeleteTask(tasks taskService, l logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := userctx.FromContext(r.Context())
		if !ok {
			render.Error(w, apperrors.ErrAccessTokenInvalid)
			return
		}

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.Error(w, errInvalidTaskID)
			return
		}

		if err := tasks.Delete(r.Context(), id, claims.UserID); err != nil {
			if apperrors.KindOf(err) == apperrors.KindInternal {
				l.Error("task delete failed", "error", err)
			}
			render.Error(w, err)
			return
		}

		render.JSON(w, response{Message: "Task deleted successfully"})
	})
}

func handleListTasks(tasks taskService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := userctx.FromContext(r.Context())
		if !ok {
			render.Error(w, apperrors.ErrAccessTokenInvalid)
			return
		}

		q := r.URL.Query()
		page, _ := strconv.Atoi(q.Get("page"))
		limit, _ := strconv.Atoi(q.Get("limit"))

		listed, err := tasks.List(r.Context(), claims.UserID, task.ListParams{
			Scope:  q.Get("scope"),
			Status: q.Get("status"),
			Search: q.Get("search"),
			SortBy: q.Get("sortBy"),
			Order:  q.Get("order"),
			Page:   page,
			Limit:  limit,
		})
		if err != nil {
			l.Error("task list failed", "error", err)
			render.Error(w, err)
			return
		}

		render.JSON(w, listed)
	})
}

func handleTaskStats(tasks taskService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := userctx.FromContext(r.Context())
		if !ok {
			render.Error(w, apperrors.ErrAccessTokenInvalid)
			return
		}

		stats, err := tasks.Stats(r.Context(), claims.UserID)
		if err != nil {
			l.Error("task stats failed", "error", err)
			render.Error(w, err)
			return
		}

		render.JSON(w, stats)
	})
}
