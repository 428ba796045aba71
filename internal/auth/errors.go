package auth

import "errors"

// Failure taxonomy surfaced to callers. Messages are deliberately generic:
// a failed login never reveals whether the username exists, and a rejected
// token never reveals why it was rejected.
var (
	ErrInvalidCredentials = errors.New("auth: incorrect username or password")
	ErrMissingCredentials = errors.New("auth: not authenticated")
	ErrUnauthenticated    = errors.New("auth: invalid authentication credentials")
	ErrForbidden          = errors.New("auth: insufficient privileges")
)

// Token decode failures. The access guard collapses all of these into
// ErrUnauthenticated before they reach a response body.
var (
	ErrTokenExpired   = errors.New("auth: token expired")
	ErrTokenSignature = errors.New("auth: invalid token signature")
	ErrTokenMalformed = errors.New("auth: malformed token")
)
