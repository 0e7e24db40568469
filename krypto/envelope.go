package krypto

import (
	"fmt"
)

// SecureData is a self-contained AEAD envelope: ciphertext with the GCM tag
// appended, the nonce it was sealed under, and the PBKDF2 salt of its key.
type SecureData struct {
	Ciphertext []byte `json:"encryptedData"`
	Nonce      []byte `json:"nonce"`
	Salt       []byte `json:"salt"`
}

// Clone returns a deep copy of the envelope.
func (sd SecureData) Clone() SecureData {
	return SecureData{
		Ciphertext: append([]byte(nil), sd.Ciphertext...),
		Nonce:      append([]byte(nil), sd.Nonce...),
		Salt:       append([]byte(nil), sd.Salt...),
	}
}

// Cryptographer seals and opens envelopes, treating its key material input as a
// password run through PBKDF2 with a fresh salt per envelope.
type Cryptographer struct {
	Iterations int
}

// NewCryptographer returns a Cryptographer using the given PBKDF2 iteration
// count, or DefaultIterations when iterations is not positive.
func NewCryptographer(iterations int) Cryptographer {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return Cryptographer{Iterations: iterations}
}

// IterationCount returns the effective PBKDF2 iteration count.
func (c Cryptographer) IterationCount() int {
	if c.Iterations <= 0 {
		return DefaultIterations
	}
	return c.Iterations
}

// Encrypt seals plaintext under a key derived from keyMaterial. Every call uses
// a new random salt and nonce, so two envelopes never share a key/nonce pair.
func (c Cryptographer) Encrypt(plaintext, keyMaterial []byte) (SecureData, error) {
	salt, err := NewRandomSalt()
	if err != nil {
		return SecureData{}, err
	}

	key, err := DeriveKeyPBKDF2(keyMaterial, salt, c.IterationCount(), KeySize)
	if err != nil {
		return SecureData{}, fmt.Errorf("derive envelope key: %w", err)
	}
	defer Wipe(key)

	nonce, ciphertext, err := EncryptAESGCM(key, plaintext, nil)
	if err != nil {
		return SecureData{}, fmt.Errorf("seal envelope: %w", err)
	}

	return SecureData{Ciphertext: ciphertext, Nonce: nonce, Salt: salt}, nil
}

// Decrypt opens an envelope produced by Encrypt. Any failure, including a
// malformed envelope, is reported as ErrDecrypt.
func (c Cryptographer) Decrypt(sd SecureData, keyMaterial []byte) ([]byte, error) {
	if len(sd.Salt) != SaltSize {
		return nil, fmt.Errorf("%w: invalid salt size", ErrDecrypt)
	}
	if len(sd.Nonce) != NonceSize {
		return nil, fmt.Errorf("%w: invalid nonce size", ErrDecrypt)
	}

	key, err := DeriveKeyPBKDF2(keyMaterial, sd.Salt, c.IterationCount(), KeySize)
	if err != nil {
		return nil, fmt.Errorf("%w: derive envelope key: %v", ErrDecrypt, err)
	}
	defer Wipe(key)

	return DecryptAESGCM(key, sd.Nonce, sd.Ciphertext, nil)
}
