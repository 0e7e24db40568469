package vault_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/Hussein-Mazeh/PasswordVault/internal/vault"
	"github.com/Hussein-Mazeh/PasswordVault/krypto"
)

func TestDocumentRoundTripKeepsIntegrity(t *testing.T) {
	s := newInitializedStore(t, "correct horse")
	addSecret(t, s, "email", "p@ss1")

	data, err := json.Marshal(s.Document())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{"masterPasswordData", "mekData", "passwordEntries", "userSettings",
		"masterPasswordDataHash", "mekDataHash", "passwordEntriesHash", "kdfIterations"} {
		if !strings.Contains(string(data), `"`+key+`"`) {
			t.Fatalf("document is missing key %q", key)
		}
	}

	var doc vault.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	loaded, err := vault.FromDocument(doc)
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	if loaded.Cryptographer().IterationCount() != testIterations {
		t.Fatalf("iterations = %d", loaded.Cryptographer().IterationCount())
	}
	if !loaded.VerifyIntegrity() {
		t.Fatal("round-tripped store failed integrity check")
	}
	if !loaded.Authenticate([]byte("correct horse")) {
		t.Fatal("round-tripped store rejects the master secret")
	}
}

func TestReloadIgnoresWithIterations(t *testing.T) {
	s := newInitializedStore(t, "correct horse")

	data, err := json.Marshal(s.Document())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc vault.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	loaded, err := vault.FromDocument(doc, vault.WithIterations(200_000))
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	if got := loaded.Cryptographer().IterationCount(); got != testIterations {
		t.Fatalf("iterations = %d, want %d", got, testIterations)
	}
	if !loaded.Authenticate([]byte("correct horse")) {
		t.Fatal("correct master secret rejected after reload")
	}
}

func TestMissingIterationCountMeansDefault(t *testing.T) {
	doc := vault.NewStore().Document()
	if doc.KDFIterations != krypto.DefaultIterations {
		t.Fatalf("KDFIterations = %d, want %d", doc.KDFIterations, krypto.DefaultIterations)
	}

	doc.KDFIterations = 0
	loaded, err := vault.FromDocument(doc, vault.WithIterations(200_000))
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	if got := loaded.Cryptographer().IterationCount(); got != krypto.DefaultIterations {
		t.Fatalf("iterations = %d, want %d", got, krypto.DefaultIterations)
	}
}

func TestDefaultIterationVaultSurvivesReload(t *testing.T) {
	if testing.Short() {
		t.Skip("default PBKDF2 work factor is slow")
	}
	s := vault.NewStore()
	if err := s.Initialize([]byte("correct horse")); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	data, err := json.Marshal(s.Document())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc vault.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	loaded, err := vault.FromDocument(doc, vault.WithIterations(200_000))
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	if !loaded.Authenticate([]byte("correct horse")) {
		t.Fatal("correct master secret rejected after reload")
	}
}

func TestFromDocumentRejectsInconsistentShape(t *testing.T) {
	s := newInitializedStore(t, "correct horse")

	half := s.Document()
	half.MekData = nil
	if _, err := vault.FromDocument(half); !errors.Is(err, vault.ErrSerializationFailed) {
		t.Fatalf("expected ErrSerializationFailed for unpaired records, got %v", err)
	}

	dup := s.Document()
	dup.PasswordEntries = []vault.Entry{{ID: "a"}, {ID: "a"}}
	if _, err := vault.FromDocument(dup); !errors.Is(err, vault.ErrSerializationFailed) {
		t.Fatalf("expected ErrSerializationFailed for duplicate ids, got %v", err)
	}

	future := s.Document()
	future.Version = vault.DocumentVersion + 1
	if _, err := vault.FromDocument(future); !errors.Is(err, vault.ErrSerializationFailed) {
		t.Fatalf("expected ErrSerializationFailed for future version, got %v", err)
	}
}

func TestVerifyIntegrityDetectsCorruption(t *testing.T) {
	s := newInitializedStore(t, "correct horse")
	e := addSecret(t, s, "email", "p@ss1")

	doc := s.Document()
	doc.PasswordEntries[0].Password.Ciphertext[0] ^= 0x01
	corrupted, err := vault.FromDocument(doc)
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	if corrupted.VerifyIntegrity() {
		t.Fatal("corrupted ciphertext passed the integrity check")
	}

	mek, err := corrupted.UnwrapMEK([]byte("correct horse"))
	if err != nil {
		t.Fatalf("UnwrapMEK: %v", err)
	}
	got, err := corrupted.FindEntry(e.ID)
	if err != nil {
		t.Fatalf("FindEntry: %v", err)
	}
	if _, err := vault.Reveal(corrupted.Cryptographer(), *got.Password, mek); !errors.Is(err, vault.ErrDecryptionFailed) {
		t.Fatalf("expected ErrDecryptionFailed, got %v", err)
	}

	missing := s.Document()
	missing.PasswordEntriesHash = nil
	noDigest, err := vault.FromDocument(missing)
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	if noDigest.VerifyIntegrity() {
		t.Fatal("missing digest passed the integrity check")
	}
}
