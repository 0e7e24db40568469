package auth_test

import (
	"bytes"
	"testing"

	"github.com/Hussein-Mazeh/PasswordVault/auth"
	"github.com/Hussein-Mazeh/PasswordVault/krypto"
)

const testIterations = 1000

func TestMasterRecordVerifiesOwnSecret(t *testing.T) {
	rec, err := auth.NewMasterRecord([]byte("correct horse"), testIterations)
	if err != nil {
		t.Fatalf("NewMasterRecord: %v", err)
	}
	if len(rec.Salt) != krypto.SaltSize {
		t.Fatalf("salt length = %d", len(rec.Salt))
	}
	if len(rec.PasswordHash) != auth.HashSize {
		t.Fatalf("hash length = %d", len(rec.PasswordHash))
	}
	if !rec.Verify([]byte("correct horse"), testIterations) {
		t.Fatal("expected the original secret to verify")
	}
}

func TestMasterRecordRejectsOtherSecrets(t *testing.T) {
	rec, err := auth.NewMasterRecord([]byte("correct horse"), testIterations)
	if err != nil {
		t.Fatalf("NewMasterRecord: %v", err)
	}
	for _, attempt := range []string{"wrong", "", "correct horse ", "Correct horse"} {
		if rec.Verify([]byte(attempt), testIterations) {
			t.Fatalf("attempt %q unexpectedly verified", attempt)
		}
	}
	if rec.Verify([]byte("correct horse"), testIterations*2) {
		t.Fatal("verify must use the iteration count the record was created with")
	}
}

func TestMasterRecordSaltsDiffer(t *testing.T) {
	a, err := auth.NewMasterRecord([]byte("same"), testIterations)
	if err != nil {
		t.Fatalf("NewMasterRecord: %v", err)
	}
	b, err := auth.NewMasterRecord([]byte("same"), testIterations)
	if err != nil {
		t.Fatalf("NewMasterRecord: %v", err)
	}
	if bytes.Equal(a.Salt, b.Salt) || bytes.Equal(a.PasswordHash, b.PasswordHash) {
		t.Fatal("two records for the same secret must not share salt or hash")
	}
}

func TestMalformedMasterRecordNeverVerifies(t *testing.T) {
	var nilRec *auth.MasterRecord
	if nilRec.Verify([]byte("x"), testIterations) {
		t.Fatal("nil record verified")
	}

	rec, err := auth.NewMasterRecord([]byte("x"), testIterations)
	if err != nil {
		t.Fatalf("NewMasterRecord: %v", err)
	}
	rec.PasswordHash = rec.PasswordHash[:16]
	if rec.Verify([]byte("x"), testIterations) {
		t.Fatal("truncated hash verified")
	}
}

func TestMasterRecordCloneIsDeep(t *testing.T) {
	rec, err := auth.NewMasterRecord([]byte("x"), testIterations)
	if err != nil {
		t.Fatalf("NewMasterRecord: %v", err)
	}
	cp := rec.Clone()
	cp.Salt[0] ^= 0xff
	if bytes.Equal(cp.Salt, rec.Salt) {
		t.Fatal("clone shares salt storage with the original")
	}
	if (*auth.MasterRecord)(nil).Clone() != nil {
		t.Fatal("clone of nil must be nil")
	}
}
