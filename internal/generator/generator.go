// Package generator builds random passwords from the vault's settings.
package generator

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/Hussein-Mazeh/PasswordVault/internal/vault"
)

const (
	numbers = "0123456789"
	symbols = "!@#$%^&*"
	lower   = "abcdefghijklmnopqrstuvwxyz"
	upper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

var (
	// ErrEmptyPool indicates every character class is disabled.
	ErrEmptyPool = errors.New("no character classes enabled")

	// ErrLengthTooShort indicates the required characters do not fit the length.
	ErrLengthTooShort = errors.New("password length is shorter than the required characters")
)

// Generate returns a password following s. Required characters of each enabled
// class are placed first, the rest is drawn from the combined pool, and the
// result is shuffled.
func Generate(s vault.Settings) (string, error) {
	var pool []byte
	var required int
	if s.UseNumbers {
		pool = append(pool, numbers...)
		required += int(s.MinNumbers)
	}
	if s.UseSymbols {
		pool = append(pool, symbols...)
		required += int(s.MinSymbols)
	}
	if s.UseLower {
		pool = append(pool, lower...)
		required++
	}
	if s.UseUpper {
		pool = append(pool, upper...)
		required++
	}
	if len(pool) == 0 {
		return "", ErrEmptyPool
	}

	length := int(s.PasswordLength)
	if length < int(s.MinPasswordLength) {
		length = int(s.MinPasswordLength)
	}
	if required > length {
		return "", fmt.Errorf("%w: need %d, length %d", ErrLengthTooShort, required, length)
	}

	out := make([]byte, 0, length)
	var err error
	if s.UseNumbers {
		if out, err = appendRandom(out, numbers, int(s.MinNumbers)); err != nil {
			return "", err
		}
	}
	if s.UseSymbols {
		if out, err = appendRandom(out, symbols, int(s.MinSymbols)); err != nil {
			return "", err
		}
	}
	if s.UseLower {
		if out, err = appendRandom(out, lower, 1); err != nil {
			return "", err
		}
	}
	if s.UseUpper {
		if out, err = appendRandom(out, upper, 1); err != nil {
			return "", err
		}
	}
	if out, err = appendRandom(out, string(pool), length-len(out)); err != nil {
		return "", err
	}

	if err := shuffle(out); err != nil {
		return "", err
	}
	return string(out), nil
}

func appendRandom(dst []byte, charset string, n int) ([]byte, error) {
	for i := 0; i < n; i++ {
		idx, err := randIndex(len(charset))
		if err != nil {
			return nil, err
		}
		dst = append(dst, charset[idx])
	}
	return dst, nil
}

// shuffle is a Fisher-Yates shuffle over crypto/rand.
func shuffle(b []byte) error {
	for i := len(b) - 1; i > 0; i-- {
		j, err := randIndex(i + 1)
		if err != nil {
			return err
		}
		b[i], b[j] = b[j], b[i]
	}
	return nil
}

func randIndex(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("read random: %w", err)
	}
	return int(v.Int64()), nil
}
