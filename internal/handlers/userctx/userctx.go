package userctx

import (
	"context"

	"github.com/example/taskman/internal/models"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// Create a new context with the authenticated user claims
func New(ctx context.Context, c models.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// Extract the claims from the context
func FromContext(ctx context.Context) (models.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(models.Claims)
	return c, ok
}
