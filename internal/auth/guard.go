package auth

import (
	"context"
	"strings"

	"roomtime.org/internal/model"
)

const bearerPrefix = "Bearer "

// Guard is the single choke point for authorization. Every protected route
// passes its Authorization header and declared group set through Authorize
// before its handler touches the persistence layer.
type Guard struct {
	users UserSource
	codec *TokenCodec
}

// NewGuard wires the guard against a user source and codec.
func NewGuard(users UserSource, codec *TokenCodec) *Guard {
	return &Guard{users: users, codec: codec}
}

// Authorize resolves the caller behind a raw Authorization header value and
// checks it against the required groups. An empty group set admits any
// authenticated user; GroupAdmin always passes. The subject is re-fetched
// from the store, so deleted or disabled accounts are rejected even while
// their tokens are still cryptographically valid.
func (g *Guard) Authorize(ctx context.Context, header string, groups ...model.Group) (model.User, error) {
	token, err := extractBearerToken(header)
	if err != nil {
		return model.User{}, err
	}
	claims, err := g.codec.Decode(token)
	if err != nil {
		return model.User{}, ErrUnauthenticated
	}
	user, ok, err := g.users.UserByID(ctx, claims.Subject)
	if err != nil {
		return model.User{}, err
	}
	if !ok || user.Disabled {
		return model.User{}, ErrUnauthenticated
	}
	if len(groups) == 0 || user.Group == model.GroupAdmin {
		return user, nil
	}
	for _, group := range groups {
		if user.Group == group {
			return user, nil
		}
	}
	return model.User{}, ErrForbidden
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrMissingCredentials
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearerPrefix)) {
		return "", ErrMissingCredentials
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", ErrMissingCredentials
	}
	return token, nil
}
