package services

import (
	"context"

	"tasksphere/internal/domain/user"
)

type contextKey string

const currentUserKey contextKey = "current_user"

// WithUser attaches the authenticated user to the request context.
func WithUser(ctx context.Context, u user.User) context.Context {
	return context.WithValue(ctx, currentUserKey, u)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (user.User, bool) {
	u, ok := ctx.Value(currentUserKey).(user.User)
	return u, ok
}
