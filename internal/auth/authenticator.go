package auth

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"roomtime.org/internal/model"
)

// UserSource is the read interface into the persistence layer the security
// core depends on. Satisfied by *jsonfile.DB.
type UserSource interface {
	UserByID(ctx context.Context, id string) (model.User, bool, error)
	UserByUsername(ctx context.Context, username string) (model.User, bool, error)
}

// Authenticator verifies username/password pairs and issues bearer tokens.
type Authenticator struct {
	users UserSource
	codec *TokenCodec
	log   *logrus.Logger
}

// NewAuthenticator wires the authenticator against a user source and codec.
func NewAuthenticator(users UserSource, codec *TokenCodec, log *logrus.Logger) *Authenticator {
	return &Authenticator{users: users, codec: codec, log: log}
}

// Login checks the credentials and returns a signed token with its expiry.
// An unknown username, a wrong password and a disabled account all fail
// with the same ErrInvalidCredentials so responses cannot be used to
// enumerate usernames.
func (a *Authenticator) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	if username == "" || password == "" {
		return "", time.Time{}, ErrInvalidCredentials
	}
	user, ok, err := a.users.UserByUsername(ctx, username)
	if err != nil {
		return "", time.Time{}, err
	}
	if !ok || user.Disabled {
		return "", time.Time{}, ErrInvalidCredentials
	}
	if !VerifyPassword(password, user.HashedPassword) {
		return "", time.Time{}, ErrInvalidCredentials
	}
	token, expiresAt, err := a.codec.Issue(user.ID)
	if err != nil {
		return "", time.Time{}, err
	}
	a.log.WithFields(logrus.Fields{"user_id": user.ID, "group": user.Group}).Info("login succeeded")
	return token, expiresAt, nil
}
