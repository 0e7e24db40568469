package krypto

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// DefaultIterations is the PBKDF2-HMAC-SHA256 work factor.
	DefaultIterations = 100_000
	// SaltSize is the length of every salt generated by this package.
	SaltSize = 16
)

// DeriveKeyPBKDF2 derives keyLen bytes from secret and salt with PBKDF2-HMAC-SHA256.
// An empty secret is accepted: the MEK and user passwords are validated by callers.
func DeriveKeyPBKDF2(secret, salt []byte, iterations, keyLen int) ([]byte, error) {
	if len(salt) == 0 {
		return nil, errors.New("salt is required")
	}
	if iterations <= 0 {
		return nil, errors.New("iteration count must be positive")
	}
	if keyLen <= 0 {
		return nil, errors.New("key length must be positive")
	}
	key := pbkdf2.Key(secret, salt, iterations, keyLen, sha256.New)
	if len(key) != keyLen {
		return nil, fmt.Errorf("derived key has unexpected length %d", len(key))
	}
	return key, nil
}

// RandomBytes returns n bytes read from the operating system CSPRNG.
func RandomBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, errors.New("length must be positive")
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return nil, fmt.Errorf("read random: %w", err)
	}
	return buf, nil
}

// NewRandomSalt returns a fresh SaltSize-byte salt.
func NewRandomSalt() ([]byte, error) {
	salt, err := RandomBytes(SaltSize)
	if err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}
