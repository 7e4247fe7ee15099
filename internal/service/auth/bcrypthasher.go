package auth

import (
	"crypto/sha256"

	"golang.org/x/crypto/bcrypt"
)

// Bcrypt hasher used for passwords and refresh tokens alike.
// Input is pre-hashed with sha256 so values longer than bcrypt's 72 byte
// limit (signed refresh tokens are) hash safely.
// bcrypt.CompareHashAndPassword gives the constant-time comparison.
type BcryptHasher struct{}

// DefaultHasher used when caller not provide it's own
var DefaultHasher = BcryptHasher{}

func (h BcryptHasher) Hash(raw string) (string, error) {
	sum := sha256.Sum256([]byte(raw))
	hash, err := bcrypt.GenerateFromPassword(sum[:], bcrypt.DefaultCost)
	return string(hash), err
}

func (h BcryptHasher) Compare(hashed string, raw string) error {
	sum := sha256.Sum256([]byte(raw))
	return bcrypt.CompareHashAndPassword([]byte(hashed), sum[:])
}
