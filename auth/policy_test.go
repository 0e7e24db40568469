package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Hussein-Mazeh/PasswordVault/auth"
)

func TestValidateMasterPassword(t *testing.T) {
	cases := []struct {
		pw   string
		want error
	}{
		{"Sh0rt!", auth.ErrTooShort},
		{"alllowercase1!", auth.ErrMissingUpper},
		{"NoDigitsHere!!", auth.ErrMissingDigit},
		{"NoSpecials1234", auth.ErrMissingSpecial},
		{"Valid-Passw0rd", nil},
	}
	for _, tc := range cases {
		err := auth.ValidateMasterPassword(tc.pw)
		if !errors.Is(err, tc.want) {
			t.Fatalf("ValidateMasterPassword(%q) = %v, want %v", tc.pw, err, tc.want)
		}
	}
}

func TestValidateMasterPasswordAdvancedRejectsWeak(t *testing.T) {
	opts := auth.DefaultValidateOptions()
	err := auth.ValidateMasterPasswordAdvanced(context.Background(), "Password123!", opts)
	if !errors.Is(err, auth.ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}

func TestValidateMasterPasswordAdvancedAcceptsStrong(t *testing.T) {
	opts := auth.DefaultValidateOptions()
	if err := auth.ValidateMasterPasswordAdvanced(context.Background(), "vX9#qLm2$Tr8!wZp@4Kd", opts); err != nil {
		t.Fatalf("expected strong password to pass, got %v", err)
	}
}

func TestValidateMasterPasswordAdvancedRunsBasePolicyFirst(t *testing.T) {
	err := auth.ValidateMasterPasswordAdvanced(context.Background(), "short", auth.ValidateOptions{})
	if !errors.Is(err, auth.ErrTooShort) {
		t.Fatalf("expected ErrTooShort, got %v", err)
	}
}
