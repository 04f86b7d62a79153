package cryptox

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// HashCost is the bcrypt cost factor used for both passwords and one-time
// passwords. Raising it slows every login; change with care.
const HashCost = 10

// ErrMismatch is returned when a password or code does not match its hash.
var ErrMismatch = errors.New("cryptox: value does not match hash")

// HashPassword generates a salted bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password against a bcrypt hash.
// bcrypt's comparison is constant-time over the derived key, so this is
// safe against timing probes.
func VerifyPassword(password, encodedHash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatch
		}
		return err
	}
	return nil
}
