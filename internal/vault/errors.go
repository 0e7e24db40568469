package vault

import (
	"errors"
	"fmt"
)

// Authentication and cryptographic failures.
var (
	// ErrAuthenticationFailed indicates the master secret did not match.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrKeyDerivationFailed indicates the MEK could not be unwrapped with an
	// authenticated secret, which points at a corrupted key-wrap record.
	ErrKeyDerivationFailed = errors.New("key derivation failed")

	// ErrCryptoOperationFailed indicates a primitive (RNG, cipher) failed.
	ErrCryptoOperationFailed = errors.New("cryptographic operation failed")

	// ErrDecryptionFailed indicates a secret field could not be revealed.
	ErrDecryptionFailed = errors.New("decryption failed")
)

// Store state errors.
var (
	// ErrAlreadyExists indicates the vault or an entry id already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotFound indicates the requested entry does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates a malformed argument, such as an entry without an id.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotInitialized indicates no master secret has been set yet.
	ErrNotInitialized = fmt.Errorf("vault not initialized: %w", ErrNotFound)
)

// Persistence errors.
var (
	// ErrSerializationFailed indicates a document could not be encoded or decoded.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrIOFailure indicates the persistence boundary could not be read or written.
	ErrIOFailure = errors.New("i/o failure")
)
