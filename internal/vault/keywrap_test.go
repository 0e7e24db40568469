package vault_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Hussein-Mazeh/PasswordVault/internal/vault"
	"github.com/Hussein-Mazeh/PasswordVault/krypto"
)

const testIterations = 1000

var testCrypto = krypto.NewCryptographer(testIterations)

func TestNewKeyWrapUnwrapsToSameMEK(t *testing.T) {
	kw, mek, err := vault.NewKeyWrap(testCrypto, []byte("correct horse"))
	if err != nil {
		t.Fatalf("NewKeyWrap: %v", err)
	}
	if len(mek) != vault.MEKSize {
		t.Fatalf("mek length = %d", len(mek))
	}
	if len(kw.WrapSalt) != krypto.SaltSize {
		t.Fatalf("wrap salt length = %d", len(kw.WrapSalt))
	}

	got, err := kw.Unwrap(testCrypto, []byte("correct horse"))
	if err != nil {
		t.Fatalf("Unwrap: %v", err)
	}
	if !bytes.Equal(got, mek) {
		t.Fatal("unwrapped MEK differs from generated MEK")
	}
}

func TestUnwrapWithWrongSecretFails(t *testing.T) {
	kw, _, err := vault.NewKeyWrap(testCrypto, []byte("right"))
	if err != nil {
		t.Fatalf("NewKeyWrap: %v", err)
	}
	_, err = kw.Unwrap(testCrypto, []byte("wrong"))
	if !errors.Is(err, vault.ErrKeyDerivationFailed) {
		t.Fatalf("expected ErrKeyDerivationFailed, got %v", err)
	}
	if !errors.Is(err, krypto.ErrDecrypt) {
		t.Fatalf("expected the envelope error to be wrapped, got %v", err)
	}
}

func TestRotatePreservesMEKAndWrapSalt(t *testing.T) {
	kw, _, err := vault.NewKeyWrap(testCrypto, []byte("old"))
	if err != nil {
		t.Fatalf("NewKeyWrap: %v", err)
	}
	before, err := kw.Unwrap(testCrypto, []byte("old"))
	if err != nil {
		t.Fatalf("Unwrap old: %v", err)
	}

	rotated, err := kw.Rotate(testCrypto, []byte("old"), []byte("new"))
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}

	after, err := rotated.Unwrap(testCrypto, []byte("new"))
	if err != nil {
		t.Fatalf("Unwrap new: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Fatal("rotation changed the MEK")
	}
	if !bytes.Equal(kw.WrapSalt, rotated.WrapSalt) {
		t.Fatal("rotation changed the wrap salt")
	}
	if bytes.Equal(kw.WrappedMEK.Nonce, rotated.WrappedMEK.Nonce) || bytes.Equal(kw.WrappedMEK.Salt, rotated.WrappedMEK.Salt) {
		t.Fatal("rotation reused the envelope nonce or salt")
	}

	if _, err := rotated.Unwrap(testCrypto, []byte("old")); !errors.Is(err, vault.ErrKeyDerivationFailed) {
		t.Fatalf("old secret should no longer unwrap, got %v", err)
	}
	if _, err := kw.Unwrap(testCrypto, []byte("old")); err != nil {
		t.Fatalf("Rotate must not mutate the receiver: %v", err)
	}
}

func TestRotateWithWrongOldSecretFails(t *testing.T) {
	kw, _, err := vault.NewKeyWrap(testCrypto, []byte("old"))
	if err != nil {
		t.Fatalf("NewKeyWrap: %v", err)
	}
	if _, err := kw.Rotate(testCrypto, []byte("nope"), []byte("new")); !errors.Is(err, vault.ErrKeyDerivationFailed) {
		t.Fatalf("expected ErrKeyDerivationFailed, got %v", err)
	}
}
