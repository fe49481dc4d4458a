package login

import (
	"fmt"
	"strings"
)

// PasswordHasher defines the interface for password hashing implementations
type PasswordHasher interface {
	// Hash hashes a password
	Hash(password string) (string, error)

	// Verify checks if the provided password matches the stored hash
	Verify(password, hashedPassword string) (bool, error)
}

const (
	AlgorithmBcrypt = "bcrypt"
	AlgorithmArgon2 = "argon2"
)

// NewPasswordHasher returns a hasher that hashes new passwords with
// algorithm and verifies hashes of either supported format.
func NewPasswordHasher(algorithm string) (PasswordHasher, error) {
	bc := NewBcryptHasher(0)
	a2 := NewArgon2Hasher()

	switch algorithm {
	case "", AlgorithmBcrypt:
		return &multiHasher{preferred: bc, bcrypt: bc, argon2: a2}, nil
	case AlgorithmArgon2:
		return &multiHasher{preferred: a2, bcrypt: bc, argon2: a2}, nil
	default:
		return nil, fmt.Errorf("unsupported password hash algorithm: %s", algorithm)
	}
}

// multiHasher picks the verifier from the stored hash's prefix, so existing
// hashes keep working after the preferred algorithm changes.
type multiHasher struct {
	preferred PasswordHasher
	bcrypt    PasswordHasher
	argon2    PasswordHasher
}

func (m *multiHasher) Hash(password string) (string, error) {
	return m.preferred.Hash(password)
}

func (m *multiHasher) Verify(password, hashedPassword string) (bool, error) {
	if strings.HasPrefix(hashedPassword, argon2Prefix) {
		return m.argon2.Verify(password, hashedPassword)
	}
	return m.bcrypt.Verify(password, hashedPassword)
}
