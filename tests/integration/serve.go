package integration

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/example/taskman/internal/handlers"
	"github.com/example/taskman/internal/logger"
	"github.com/example/taskman/internal/repository/postgres"
	"github.com/example/taskman/internal/service/auth"
	"github.com/example/taskman/internal/service/auth/tokenmanager"
	"github.com/example/taskman/internal/service/task"
	"github.com/example/taskman/internal/testutil"
)

type Services struct {
	AuthService *auth.AuthService
	TaskService *task.TaskService
}

// Token TTL overrides for tests that need expired or short lived tokens.
// Zero values mean the production defaults.
type TokenTTL struct {
	Access  time.Duration
	Refresh time.Duration
}

// Create db transaction and run the full server with that connection
// (one connection cause one transaction). Rolled back afterwards.
func RunTx(dbpool *pgxpool.Pool, t *testing.T, fn func(srvURL string, s Services)) {
	RunTxTTL(dbpool, t, TokenTTL{}, fn)
}

func RunTxTTL(dbpool *pgxpool.Pool, t *testing.T, ttl TokenTTL, fn func(srvURL string, s Services)) {
	testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
		// Initialize repositories
		userRepo := &postgres.UserRepo{DB: tx}
		taskRepo := &postgres.TaskRepo{DB: tx}

		// Initialize services
		tokenManager, err := tokenmanager.New(tokenmanager.Config{
			AccessSecret:  "test-access-secret",
			RefreshSecret: "test-refresh-secret",
			AccessTTL:     ttl.Access,
			RefreshTTL:    ttl.Refresh,
		})
		require.NoError(t, err, "token manager should be created without errors")

		as, err := auth.NewService(auth.Config{}, tokenManager, userRepo)
		require.NoError(t, err, "auth service starting error")

		ts := task.NewService(taskRepo)

		// Complete all together as router
		router := handlers.NewRouter(as, ts, logger.NewNoOp())

		// Run http server with the router in transaction
		srv := httptest.NewServer(router)
		defer srv.Close()

		fn(srv.URL, Services{
			AuthService: as,
			TaskService: ts,
		})
	})
}
