package krypto

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
)

const (
	// NonceSize is the AES-GCM nonce length used by every envelope.
	NonceSize = 12
	// KeySize is the AES-256 key length.
	KeySize = 32
)

var (
	// ErrDecrypt is returned when a ciphertext cannot be opened. A wrong key and a
	// corrupted ciphertext produce the same error.
	ErrDecrypt = errors.New("decryption failed")

	errKeySize = errors.New("aes-gcm requires a 32-byte key")
)

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, errKeySize
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return gcm, nil
}

// EncryptAESGCM encrypts plaintext using AES-256-GCM under a fresh random nonce,
// returning the nonce and the ciphertext with the tag appended.
func EncryptAESGCM(key, plaintext, aad []byte) (nonce, ciphertext []byte, err error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	nonce, err = RandomBytes(NonceSize)
	if err != nil {
		return nil, nil, fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext = gcm.Seal(nil, nonce, plaintext, aad)
	return nonce, ciphertext, nil
}

// DecryptAESGCM opens a ciphertext produced by EncryptAESGCM.
func DecryptAESGCM(key, nonce, ciphertext, aad []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("%w: invalid nonce size", ErrDecrypt)
	}
	if len(ciphertext) < gcm.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrDecrypt)
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}
