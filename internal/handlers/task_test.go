package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/taskman/internal/service/auth"
	"github.com/example/taskman/internal/testutil"
)

func Test_TaskEndpoints(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	// Authenticated request helper
	do := func(t *testing.T, method, url, token, body string) (*http.Response, string) {
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		req, err := http.NewRequest(method, url, reader)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		respBody, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		_ = resp.Body.Close()

		return resp, string(respBody)
	}

	t.Run("tasks require auth", func(t *testing.T) {
		serveTx(pg.Pool, t, func(url string, _ *auth.AuthService) {
			resp, err := http.Get(url + "/tasks")
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	})

	t.Run("create applies defaults", func(t *testing.T) {
		serveTx(pg.Pool, t, func(url string, authService *auth.AuthService) {
			user, pair, err := authService.Register(t.Context(), "nk@example.com", "StrongEnoughPassword", "")
			require.NoError(t, err)

			resp, body := do(t, "POST", url+"/tasks", pair.Access.Value, `{"title": "write report"}`)
			require.Equalf(t, http.StatusCreated, resp.StatusCode, "not expected code. Body: %s", body)

			var task struct {
				ID         string   `json:"id"`
				Title      string   `json:"title"`
				Status     string   `json:"status"`
				Priority   string   `json:"priority"`
				AssignedBy string   `json:"assignedBy"`
				AssignedTo string   `json:"assignedTo"`
				Tags       []string `json:"tags"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &task))
			require.NotEmpty(t, task.ID)
			require.Equal(t, "write report", task.Title)
			require.Equal(t, "pending", task.Status)
			require.Equal(t, "low", task.Priority)
			require.Equal(t, user.ID.String(), task.AssignedBy)
			require.Equal(t, user.ID.String(), task.AssignedTo, "unset assignee defaults to the creator")
			require.NotNil(t, task.Tags)
		})
	})

	t.Run("create rejects unknown status", func(t *testing.T) {
		serveTx(pg.Pool, t, func(url string, authService *auth.AuthService) {
			_, pair, err := authService.Register(t.Context(), "nk@example.com", "StrongEnoughPassword", "")
			require.NoError(t, err)

			resp, body := do(t, "POST", url+"/tasks", pair.Access.Value, `{"title": "x", "status": "done"}`)
			require.Equalf(t, http.StatusBadRequest, resp.StatusCode, "not expected code. Body: %s", body)
			require.Contains(t, body, `"error":"ValidationError"`)
			require.Contains(t, body, `"status"`)
		})
	})

	t.Run("get update delete lifecycle", func(t *testing.T) {
		serveTx(pg.Pool, t, func(url string, authService *auth.AuthService) {
			_, pair, err := authService.Register(t.Context(), "nk@example.com", "StrongEnoughPassword", "")
			require.NoError(t, err)

			resp, body := do(t, "POST", url+"/tasks", pair.Access.Value, `{"title": "review PR", "priority": "high"}`)
			require.Equal(t, http.StatusCreated, resp.StatusCode)

			var created struct {
				ID string `json:"id"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &created))

			resp, body = do(t, "GET", url+"/tasks/"+created.ID, pair.Access.Value, "")
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
			require.Contains(t, body, "review PR")

			resp, body = do(t, "PUT", url+"/tasks/"+created.ID, pair.Access.Value, `{"status": "completed"}`)
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
			require.Contains(t, body, `"status":"completed"`)
			require.Contains(t, body, "review PR", "update should keep fields it does not touch")

			resp, body = do(t, "DELETE", url+"/tasks/"+created.ID, pair.Access.Value, "")
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)

			resp, body = do(t, "GET", url+"/tasks/"+created.ID, pair.Access.Value, "")
			require.Equalf(t, http.StatusNotFound, resp.StatusCode, "deleted task should be gone. Body: %s", body)
			require.Contains(t, body, `"error":"NotFoundError"`)
		})
	})

	t.Run("tasks are invisible to strangers", func(t *testing.T) {
		serveTx(pg.Pool, t, func(url string, authService *auth.AuthService) {
			_, owner, err := authService.Register(t.Context(), "owner@example.com", "StrongEnoughPassword", "")
			require.NoError(t, err)
			_, stranger, err := authService.Register(t.Context(), "stranger@example.com", "StrongEnoughPassword", "")
			require.NoError(t, err)

			resp, body := do(t, "POST", url+"/tasks", owner.Access.Value, `{"title": "private task"}`)
			require.Equal(t, http.StatusCreated, resp.StatusCode)

			var created struct {
				ID string `json:"id"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &created))

			resp, body = do(t, "GET", url+"/tasks/"+created.ID, stranger.Access.Value, "")
			require.Equalf(t, http.StatusNotFound, resp.StatusCode, "stranger must not see the task. Body: %s", body)

			resp, _ = do(t, "GET", url+"/tasks", stranger.Access.Value, "")
			require.Equal(t, http.StatusOK, resp.StatusCode)
		})
	})

	t.Run("list scopes and pagination", func(t *testing.T) {
		serveTx(pg.Pool, t, func(url string, authService *auth.AuthService) {
			assignee, assigneePair, err := authService.Register(t.Context(), "assignee@example.com", "StrongEnoughPassword", "")
			require.NoError(t, err)
			_, authorPair, err := authService.Register(t.Context(), "author@example.com", "StrongEnoughPassword", "")
			require.NoError(t, err)

			// Author assigns one task to assignee and keeps one for self
			resp, _ := do(t, "POST", url+"/tasks", authorPair.Access.Value,
				`{"title": "delegated", "assignedTo": "`+assignee.ID.String()+`"}`)
			require.Equal(t, http.StatusCreated, resp.StatusCode)
			resp, _ = do(t, "POST", url+"/tasks", authorPair.Access.Value, `{"title": "own task"}`)
			require.Equal(t, http.StatusCreated, resp.StatusCode)

			var page struct {
				Tasks []struct {
					Title string `json:"title"`
				} `json:"tasks"`
				Total int64 `json:"total"`
				Page  int   `json:"page"`
				Limit int   `json:"limit"`
			}

			// Default scope is assigned-to-me
			_, body := do(t, "GET", url+"/tasks", assigneePair.Access.Value, "")
			require.NoError(t, json.Unmarshal([]byte(body), &page))
			require.Equal(t, int64(1), page.Total)
			require.Equal(t, "delegated", page.Tasks[0].Title)
			require.Equal(t, 1, page.Page)
			require.Equal(t, 10, page.Limit)

			// Author sees both tasks they created
			_, body = do(t, "GET", url+"/tasks?scope=byMe", authorPair.Access.Value, "")
			require.NoError(t, json.Unmarshal([]byte(body), &page))
			require.Equal(t, int64(2), page.Total)

			// Search narrows the list
			_, body = do(t, "GET", url+"/tasks?scope=byMe&search=delegated", authorPair.Access.Value, "")
			require.NoError(t, json.Unmarshal([]byte(body), &page))
			require.Equal(t, int64(1), page.Total)

			// Pagination caps the page while total stays
			_, body = do(t, "GET", url+"/tasks?scope=byMe&limit=1&page=2", authorPair.Access.Value, "")
			require.NoError(t, json.Unmarshal([]byte(body), &page))
			require.Equal(t, int64(2), page.Total)
			require.Len(t, page.Tasks, 1)
			require.Equal(t, 2, page.Page)
		})
	})

	t.Run("stats count assigned tasks", func(t *testing.T) {
		serveTx(pg.Pool, t, func(url string, authService *auth.AuthService) {
			_, pair, err := authService.Register(t.Context(), "nk@example.com", "StrongEnoughPassword", "")
			require.NoError(t, err)

			resp, _ := do(t, "POST", url+"/tasks", pair.Access.Value, `{"title": "a", "status": "completed"}`)
			require.Equal(t, http.StatusCreated, resp.StatusCode)
			resp, _ = do(t, "POST", url+"/tasks", pair.Access.Value, `{"title": "b"}`)
			require.Equal(t, http.StatusCreated, resp.StatusCode)

			_, body := do(t, "GET", url+"/tasks/stats", pair.Access.Value, "")
			require.JSONEq(t, `{"total": 2, "completed": 1, "pending": 1}`, body)
		})
	})

	t.Run("malformed task id", func(t *testing.T) {
		serveTx(pg.Pool, t, func(url string, authService *auth.AuthService) {
			_, pair, err := authService.Register(t.Context(), "nk@example.com", "StrongEnoughPassword", "")
			require.NoError(t, err)

			resp, body := do(t, "GET", url+"/tasks/not-a-uuid", pair.Access.Value, "")
			require.Equalf(t, http.StatusBadRequest, resp.StatusCode, "not expected code. Body: %s", body)
			require.Contains(t, body, `"message":"invalid task id"`)
		})
	})
}
