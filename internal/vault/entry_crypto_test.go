package vault_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Hussein-Mazeh/PasswordVault/internal/vault"
	"github.com/Hussein-Mazeh/PasswordVault/krypto"
)

func testMEK(t *testing.T) []byte {
	t.Helper()
	mek, err := krypto.RandomBytes(vault.MEKSize)
	if err != nil {
		t.Fatalf("RandomBytes: %v", err)
	}
	return mek
}

func TestProtectRevealRoundTrip(t *testing.T) {
	mek := testMEK(t)
	sd, err := vault.Protect(testCrypto, []byte("p@ss1"), mek)
	if err != nil {
		t.Fatalf("Protect: %v", err)
	}
	got, err := vault.Reveal(testCrypto, sd, mek)
	if err != nil {
		t.Fatalf("Reveal: %v", err)
	}
	if string(got) != "p@ss1" {
		t.Fatalf("got %q", got)
	}
}

func TestProtectGivesEachFieldItsOwnSaltAndNonce(t *testing.T) {
	mek := testMEK(t)
	a, err := vault.Protect(testCrypto, []byte("same"), mek)
	if err != nil {
		t.Fatalf("Protect: %v", err)
	}
	b, err := vault.Protect(testCrypto, []byte("same"), mek)
	if err != nil {
		t.Fatalf("Protect: %v", err)
	}
	if bytes.Equal(a.Salt, b.Salt) || bytes.Equal(a.Nonce, b.Nonce) {
		t.Fatal("fields share derivation salt or nonce")
	}
}

func TestRevealWithOtherMEKFails(t *testing.T) {
	sd, err := vault.Protect(testCrypto, []byte("secret"), testMEK(t))
	if err != nil {
		t.Fatalf("Protect: %v", err)
	}
	if _, err := vault.Reveal(testCrypto, sd, testMEK(t)); !errors.Is(err, vault.ErrDecryptionFailed) {
		t.Fatalf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestProtectRejectsBadMEKLength(t *testing.T) {
	if _, err := vault.Protect(testCrypto, []byte("x"), []byte("short")); !errors.Is(err, vault.ErrCryptoOperationFailed) {
		t.Fatalf("expected ErrCryptoOperationFailed, got %v", err)
	}
}

func TestEntryConversionRoundTrip(t *testing.T) {
	mek := testMEK(t)
	d := vault.NewDecryptedEntry("email")
	d.Username = vault.StringPtr("alice")
	d.Password = vault.StringPtr("p@ss1")
	d.URL = vault.StringPtr("https://mail.example.com")
	d.Notes = vault.StringPtr("work account")
	d.Category = vault.StringPtr("work")
	d.Favorite = true

	enc, err := d.Encrypt(testCrypto, mek)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if enc.Password == nil {
		t.Fatal("password envelope missing")
	}
	if enc.Title != "email" || *enc.Username != "alice" || *enc.URL != *d.URL {
		t.Fatalf("metadata not carried over: %+v", enc)
	}
	if bytes.Contains(enc.Password.Ciphertext, []byte("p@ss1")) {
		t.Fatal("ciphertext contains the plaintext")
	}

	back, err := enc.Decrypt(testCrypto, mek)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if back.ID != d.ID || back.CreationDate != d.CreationDate || !back.Favorite {
		t.Fatalf("identity fields changed: %+v", back)
	}
	if back.Password == nil || *back.Password != "p@ss1" {
		t.Fatalf("password = %v", back.Password)
	}
	if *back.Category != "work" || *back.Notes != "work account" {
		t.Fatalf("metadata changed: %+v", back)
	}
}

func TestEntryWithoutPasswordStaysWithout(t *testing.T) {
	mek := testMEK(t)
	d := vault.NewDecryptedEntry("note only")

	enc, err := d.Encrypt(testCrypto, mek)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if enc.Password != nil {
		t.Fatal("absent password produced an envelope")
	}
	back, err := enc.Decrypt(testCrypto, mek)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if back.Password != nil {
		t.Fatal("absent password revealed as present")
	}
}

func TestDecryptedEntryWipe(t *testing.T) {
	d := vault.NewDecryptedEntry("x")
	d.Password = vault.StringPtr("secret")
	d.Wipe()
	if d.Password != nil {
		t.Fatal("password still referenced after Wipe")
	}
}

func TestNewDecryptedEntryIDsAreUnique(t *testing.T) {
	a := vault.NewDecryptedEntry("a")
	b := vault.NewDecryptedEntry("a")
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("ids not unique: %q %q", a.ID, b.ID)
	}
	if got := a.DisplayName(); got != [3]string{"a", "", ""} {
		t.Fatalf("DisplayName = %v", got)
	}
}
