package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/nbutton23/zxcvbn-go"
)

var (
	// ErrWeakPassword indicates the zxcvbn strength score is below the configured floor.
	ErrWeakPassword = errors.New("password is too easy to guess")

	// ErrBreachedPassword indicates the password appears in the HIBP corpus.
	ErrBreachedPassword = errors.New("password appears in a known data breach")
)

// ValidateOptions tunes the checks run by ValidateMasterPasswordAdvanced.
type ValidateOptions struct {
	// MinZXCVBNScore is the lowest accepted zxcvbn score (0-4). Zero disables the check.
	MinZXCVBNScore int
	// EnableHIBP queries the Have I Been Pwned range API.
	EnableHIBP bool
	// UserInputs are words zxcvbn should treat as guessable (vault name, user name).
	UserInputs []string
}

// DefaultValidateOptions returns offline-only options with a moderate strength floor.
func DefaultValidateOptions() ValidateOptions {
	return ValidateOptions{MinZXCVBNScore: 3}
}

// Strength returns the zxcvbn score (0-4) for pw.
func Strength(pw string, userInputs []string) int {
	return zxcvbn.PasswordStrength(pw, userInputs).Score
}

// ValidateMasterPasswordAdvanced runs the base policy, then the zxcvbn strength
// floor, then (when enabled) the HIBP breach lookup.
func ValidateMasterPasswordAdvanced(ctx context.Context, pw string, opts ValidateOptions) error {
	if err := ValidateMasterPassword(pw); err != nil {
		return err
	}

	if opts.MinZXCVBNScore > 0 {
		if score := Strength(pw, opts.UserInputs); score < opts.MinZXCVBNScore {
			return fmt.Errorf("%w: score %d, need %d", ErrWeakPassword, score, opts.MinZXCVBNScore)
		}
	}

	if opts.EnableHIBP {
		res, err := CheckHIBP(ctx, pw)
		if err != nil {
			return fmt.Errorf("breach check: %w", err)
		}
		if res.Found {
			return fmt.Errorf("%w (%d occurrences)", ErrBreachedPassword, res.Count)
		}
	}

	return nil
}
