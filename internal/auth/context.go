package auth

import (
	"context"

	"roomtime.org/internal/model"
)

type userContextKey struct{}

// ContextWithUser attaches the authenticated user to the request context.
func ContextWithUser(ctx context.Context, user model.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, &user)
}

// UserFromContext extracts the authenticated user from the context.
func UserFromContext(ctx context.Context) (model.User, bool) {
	if ctx == nil {
		return model.User{}, false
	}
	v, ok := ctx.Value(userContextKey{}).(*model.User)
	if !ok || v == nil {
		return model.User{}, false
	}
	return *v, true
}
