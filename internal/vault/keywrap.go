package vault

import (
	"fmt"

	"github.com/Hussein-Mazeh/PasswordVault/krypto"
)

// MEKSize is the length of the master encryption key.
const MEKSize = 32

// KeyWrap holds the vault's MEK encrypted under a key derived from the master
// secret. WrapSalt is fixed for the lifetime of the vault; only the wrapped
// envelope changes when the master secret rotates.
type KeyWrap struct {
	WrappedMEK krypto.SecureData `json:"encryptedMek"`
	WrapSalt   []byte            `json:"mekSalt"`
}

// NewKeyWrap generates a fresh MEK and wraps it under masterSecret. The caller
// owns the returned plaintext MEK and must wipe it.
func NewKeyWrap(c krypto.Cryptographer, masterSecret []byte) (*KeyWrap, []byte, error) {
	wrapSalt, err := krypto.NewRandomSalt()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrCryptoOperationFailed, err)
	}

	mek, err := krypto.RandomBytes(MEKSize)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: generate mek: %w", ErrCryptoOperationFailed, err)
	}

	wrapped, err := wrapMEK(c, masterSecret, wrapSalt, mek)
	if err != nil {
		krypto.Wipe(mek)
		return nil, nil, err
	}

	return &KeyWrap{WrappedMEK: wrapped, WrapSalt: wrapSalt}, mek, nil
}

// Unwrap recovers the plaintext MEK. Callers must authenticate masterSecret
// against the master record first; a failure here for an authenticated secret
// means the record is corrupted.
func (k *KeyWrap) Unwrap(c krypto.Cryptographer, masterSecret []byte) ([]byte, error) {
	wrapKey, err := deriveWrapKey(c, masterSecret, k.WrapSalt)
	if err != nil {
		return nil, err
	}
	defer krypto.Wipe(wrapKey)

	mek, err := c.Decrypt(k.WrappedMEK, wrapKey)
	if err != nil {
		return nil, fmt.Errorf("%w: unwrap mek: %w", ErrKeyDerivationFailed, err)
	}
	if len(mek) != MEKSize {
		krypto.Wipe(mek)
		return nil, fmt.Errorf("%w: unwrapped mek has length %d", ErrKeyDerivationFailed, len(mek))
	}
	return mek, nil
}

// Rotate re-wraps the same MEK under newSecret, reusing WrapSalt. The receiver
// is left unchanged. Entries stay readable because they are keyed on the MEK,
// not on the wrap key.
func (k *KeyWrap) Rotate(c krypto.Cryptographer, oldSecret, newSecret []byte) (*KeyWrap, error) {
	mek, err := k.Unwrap(c, oldSecret)
	if err != nil {
		return nil, err
	}
	defer krypto.Wipe(mek)

	wrapped, err := wrapMEK(c, newSecret, k.WrapSalt, mek)
	if err != nil {
		return nil, err
	}

	return &KeyWrap{WrappedMEK: wrapped, WrapSalt: append([]byte(nil), k.WrapSalt...)}, nil
}

// Clone returns a deep copy of the record, or nil for a nil record.
func (k *KeyWrap) Clone() *KeyWrap {
	if k == nil {
		return nil
	}
	return &KeyWrap{
		WrappedMEK: k.WrappedMEK.Clone(),
		WrapSalt:   append([]byte(nil), k.WrapSalt...),
	}
}

func wrapMEK(c krypto.Cryptographer, secret, wrapSalt, mek []byte) (krypto.SecureData, error) {
	wrapKey, err := deriveWrapKey(c, secret, wrapSalt)
	if err != nil {
		return krypto.SecureData{}, err
	}
	defer krypto.Wipe(wrapKey)

	wrapped, err := c.Encrypt(mek, wrapKey)
	if err != nil {
		return krypto.SecureData{}, fmt.Errorf("%w: wrap mek: %w", ErrCryptoOperationFailed, err)
	}
	return wrapped, nil
}

func deriveWrapKey(c krypto.Cryptographer, secret, wrapSalt []byte) ([]byte, error) {
	key, err := krypto.DeriveKeyPBKDF2(secret, wrapSalt, c.IterationCount(), krypto.KeySize)
	if err != nil {
		return nil, fmt.Errorf("%w: derive wrap key: %w", ErrKeyDerivationFailed, err)
	}
	return key, nil
}
