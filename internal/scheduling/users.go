package scheduling

import (
	"context"
	"fmt"

	"roomtime.org/internal/auth"
	"roomtime.org/internal/ids"
	"roomtime.org/internal/model"
	"roomtime.org/internal/store/jsonfile"
)

// NewUser is the payload for creating or replacing a user account.
// Profile updates and password changes are the same operation.
type NewUser struct {
	Username             string      `json:"username" validate:"required"`
	Group                model.Group `json:"group" validate:"required"`
	University           string      `json:"university,omitempty"`
	Password             string      `json:"password" validate:"required"`
	PasswordConfirmation string      `json:"password_confirmation" validate:"required"`
}

// CreateUser validates and stores a new account with a freshly hashed
// password.
func (s *Service) CreateUser(ctx context.Context, data NewUser) (model.PublicUser, error) {
	user, err := s.newUserRecord(ids.New(), data)
	if err != nil {
		return model.PublicUser{}, err
	}
	err = s.db.Mutate(ctx, func(tx *jsonfile.Tx) error {
		if err := validateUser(tx, user); err != nil {
			return err
		}
		return tx.Put(jsonfile.CollectionUsers, user.ID, user)
	})
	if err != nil {
		return model.PublicUser{}, err
	}
	s.log.WithField("user_id", user.ID).Info("user created")
	return user.Public(), nil
}

// ListUsers returns every account without credential fields.
func (s *Service) ListUsers(ctx context.Context) ([]model.PublicUser, error) {
	users, err := s.db.Users(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}

// UpdateUser replaces an existing account's profile and password.
func (s *Service) UpdateUser(ctx context.Context, id string, data NewUser) (model.PublicUser, error) {
	user, err := s.newUserRecord(id, data)
	if err != nil {
		return model.PublicUser{}, err
	}
	err = s.db.Mutate(ctx, func(tx *jsonfile.Tx) error {
		existing, ok, err := tx.UserByID(id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: no user with the id %q found", ErrInvalidInput, id)
		}
		user.Disabled = existing.Disabled
		if err := validateUser(tx, user); err != nil {
			return err
		}
		return tx.Put(jsonfile.CollectionUsers, id, user)
	})
	if err != nil {
		return model.PublicUser{}, err
	}
	s.log.WithField("user_id", id).Info("user updated")
	return user.Public(), nil
}

// DisableUser logically deletes an account. The record stays in place with
// the disabled flag set, so the id remains resolvable for audit purposes
// while login and the access guard reject it. Actors cannot disable their
// own account.
func (s *Service) DisableUser(ctx context.Context, actor model.User, id string) error {
	if actor.ID == id {
		return fmt.Errorf("%w: cannot delete your own user account", ErrInvalidInput)
	}
	err := s.db.Mutate(ctx, func(tx *jsonfile.Tx) error {
		user, ok, err := tx.UserByID(id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: no user with the id %q found", ErrInvalidInput, id)
		}
		user.Disabled = true
		return tx.Put(jsonfile.CollectionUsers, id, user)
	})
	if err != nil {
		return err
	}
	s.log.WithField("user_id", id).Info("user disabled")
	return nil
}

// newUserRecord runs the payload-only checks and hashes the password.
// Hashing happens here, outside the store lock, because bcrypt at cost 12
// is far too slow to hold a global write lock across.
func (s *Service) newUserRecord(id string, data NewUser) (model.User, error) {
	if err := s.checkPayload(data); err != nil {
		return model.User{}, err
	}
	if data.Password != data.PasswordConfirmation {
		return model.User{}, fmt.Errorf("%w: passwords do not match", ErrInvalidInput)
	}
	if !data.Group.Valid() {
		return model.User{}, fmt.Errorf("%w: unknown group %q", ErrInvalidInput, data.Group)
	}
	hashed, err := auth.HashPassword(data.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return model.User{
		ID:             id,
		Username:       data.Username,
		Group:          data.Group,
		University:     data.University,
		HashedPassword: hashed,
	}, nil
}

// validateUser checks the store-dependent account rules: username
// uniqueness and the group/university pairing. Runs inside the write lock
// so a concurrent create cannot slip a duplicate in between check and
// commit.
func validateUser(tx *jsonfile.Tx, user model.User) error {
	duplicate, ok, err := tx.UserByUsername(user.Username)
	if err != nil {
		return err
	}
	if ok && duplicate.ID != user.ID {
		return fmt.Errorf("%w: user with name %q already exists", ErrInvalidInput, user.Username)
	}
	if user.Group == model.GroupAdmin {
		if user.University != "" {
			return fmt.Errorf("%w: admin users cannot be associated with a university", ErrInvalidInput)
		}
		return nil
	}
	_, ok, err = tx.UniversityByID(user.University)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: users of group %q must be associated with an existing university", ErrInvalidInput, user.Group)
	}
	return nil
}
