// Package scheduling implements the CRUD operations over users,
// universities, rooms and scheduled times, including the ownership
// scoping, uniqueness and overlap rules. Authorization happens before any
// of these methods run; they only receive the already-resolved actor for
// business-rule scoping.
package scheduling

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"roomtime.org/internal/auth"
	"roomtime.org/internal/store/jsonfile"
)

// ErrInvalidInput marks request-level failures: malformed payloads,
// uniqueness conflicts, ownership violations and references to records
// that do not exist (or that the actor may not see). All map to HTTP 400,
// matching the behavior callers of this API already depend on.
var ErrInvalidInput = errors.New("invalid input")

// Service carries the store handle shared by all CRUD operations.
type Service struct {
	db       *jsonfile.DB
	log      *logrus.Logger
	validate *validator.Validate
}

// NewService wires the scheduling service.
func NewService(db *jsonfile.DB, log *logrus.Logger) (*Service, error) {
	if db == nil {
		return nil, errors.New("scheduling: store is required")
	}
	return &Service{
		db:       db,
		log:      log,
		validate: validator.New(),
	}, nil
}

// HashPassword exposes credential hashing for the bootstrap endpoint.
func (s *Service) HashPassword(password string) (string, error) {
	hashed, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return hashed, nil
}

// checkPayload runs struct-tag validation and folds failures into
// ErrInvalidInput.
func (s *Service) checkPayload(v any) error {
	if err := s.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}
