package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// hashCost is fixed at build time; the security policy is uniform across
// callers.
const hashCost = 12

// dummyHash is a well-formed bcrypt hash at the production cost. Comparing a
// submitted password against it burns the same work as a real mismatch, so
// code paths that have no stored hash stay timing-equivalent to a wrong
// password.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// HashPassword hashes a plaintext password using bcrypt.
func HashPassword(password string) (string, error) {
	if len(password) == 0 {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether plaintext matches the stored hash. A
// malformed hash counts as a mismatch, never a crash.
func VerifyPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
