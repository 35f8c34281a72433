package auth

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordMismatch is returned when a password does not match.
var ErrPasswordMismatch = errors.New("password mismatch")

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// PasswordHasher stores and checks passwords either as bcrypt hashes or as
// the opaque strings supplied by the caller.
type PasswordHasher struct {
	hash bool
	cost int
}

// NewPasswordHasher builds a hasher. When hash is false passwords are stored
// and compared verbatim.
func NewPasswordHasher(hash bool, cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{hash: hash, cost: cost}
}

// Prepare returns the value to persist for a plaintext password.
func (h *PasswordHasher) Prepare(plain string) (string, error) {
	if !h.hash {
		return plain, nil
	}
	return HashPassword(plain, h.cost)
}

// Verify compares the stored value with the supplied password.
func (h *PasswordHasher) Verify(stored, plain string) error {
	if h.hash {
		if err := ComparePassword(stored, plain); err != nil {
			return ErrPasswordMismatch
		}
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(plain)) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}
