package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"roomtime.org/internal/obs"
)

// bcryptCost matches the work factor the stored hashes were created with.
// Raising it only affects newly hashed passwords; verification reads the
// cost embedded in each stored hash.
const bcryptCost = 12

// HashPassword derives a salted bcrypt hash from a plaintext password.
// Each call salts freshly, so hashing the same input twice yields two
// different strings that both verify.
func HashPassword(password string) (string, error) {
	if len(password) == 0 {
		return "", errors.New("auth: password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether the plaintext password matches the stored
// hash. It fails closed: a malformed stored hash verifies as false rather
// than surfacing an error, with a debug log line for diagnosability.
func VerifyPassword(password, storedHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password))
	if err == nil {
		return true
	}
	if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		obs.Logger().WithError(err).Debug("stored password hash did not parse")
	}
	return false
}
