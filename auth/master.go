package auth

import (
	"crypto/subtle"
	"fmt"

	"github.com/Hussein-Mazeh/PasswordVault/krypto"
)

// HashSize is the length of the stored master password hash.
const HashSize = 32

// MasterRecord is the salted PBKDF2 hash used only to check a master password
// attempt. It is never an input to any encryption key derivation.
type MasterRecord struct {
	Salt         []byte `json:"salt"`
	PasswordHash []byte `json:"passwordHash"`
}

// NewMasterRecord hashes secret under a fresh random salt.
func NewMasterRecord(secret []byte, iterations int) (*MasterRecord, error) {
	salt, err := krypto.NewRandomSalt()
	if err != nil {
		return nil, err
	}

	hash, err := krypto.DeriveKeyPBKDF2(secret, salt, iterations, HashSize)
	if err != nil {
		return nil, fmt.Errorf("hash master password: %w", err)
	}

	return &MasterRecord{Salt: salt, PasswordHash: hash}, nil
}

// Verify reports whether attempt matches the stored hash. The final comparison
// runs in constant time.
func (r *MasterRecord) Verify(attempt []byte, iterations int) bool {
	if r == nil || len(r.Salt) == 0 || len(r.PasswordHash) != HashSize {
		return false
	}

	candidate, err := krypto.DeriveKeyPBKDF2(attempt, r.Salt, iterations, HashSize)
	if err != nil {
		return false
	}
	defer krypto.Wipe(candidate)

	return subtle.ConstantTimeCompare(candidate, r.PasswordHash) == 1
}

// Clone returns a deep copy of the record, or nil for a nil record.
func (r *MasterRecord) Clone() *MasterRecord {
	if r == nil {
		return nil
	}
	return &MasterRecord{
		Salt:         append([]byte(nil), r.Salt...),
		PasswordHash: append([]byte(nil), r.PasswordHash...),
	}
}
