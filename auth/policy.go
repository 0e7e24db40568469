package auth

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinMasterPasswordLength is the shortest master password the policy accepts.
const MinMasterPasswordLength = 12

const specialChars = "!\"#$%&'()*+,-./:;<=>?@[\\]^_{|}~`"

// Master password policy violations.
var (
	ErrTooShort       = errors.New("password must be at least 12 characters long")
	ErrMissingUpper   = errors.New("password must include an uppercase letter")
	ErrMissingDigit   = errors.New("password must include a digit")
	ErrMissingSpecial = errors.New("password must include a special character")
)

// ValidateMasterPassword applies the master password policy requirements.
func ValidateMasterPassword(pw string) error {
	if utf8.RuneCountInString(pw) < MinMasterPasswordLength {
		return ErrTooShort
	}

	var upper, digit, special bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(specialChars, r):
			special = true
		}
	}

	switch {
	case !upper:
		return ErrMissingUpper
	case !digit:
		return ErrMissingDigit
	case !special:
		return ErrMissingSpecial
	}
	return nil
}
