package middleware

import (
	"net/http"

	"github.com/example/taskman/internal/handlers/render"
	"github.com/example/taskman/internal/handlers/userctx"
	"github.com/example/taskman/internal/models"
)

type authService interface {
	Authenticate(r *http.Request) (models.Claims, error)
}

type logger interface {
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
}

// AuthMiddleware guards handlers behind a valid bearer access token.
// On success the user claims are stored in the request context.
func AuthMiddleware(as authService, l logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := as.Authenticate(r)
			if err != nil {
				// Root cause goes to logs only, the client always
				// sees the same unauthorized envelope
				l.Debug("request not authenticated", "uri", r.RequestURI, "error", err)
				render.Error(w, err)
				return
			}

			ctx := userctx.New(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
