package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/Hussein-Mazeh/PasswordVault/auth"
	"github.com/Hussein-Mazeh/PasswordVault/internal/generator"
	"github.com/Hussein-Mazeh/PasswordVault/internal/service"
	"github.com/Hussein-Mazeh/PasswordVault/internal/vault"
)

const cliVersion = "0.2.0"

// userError is a failure caused by input; it exits 1 without the "unexpected" prefix.
type userError struct {
	msg string
}

func (e userError) Error() string { return e.msg }

func main() {
	cmd := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	os.Exit(exitCode(cmd.Execute(), os.Stderr))
}

// exitCode prints err and maps it to 0, 1 (user error) or 2 (anything else).
func exitCode(err error, w io.Writer) int {
	if err == nil {
		return 0
	}
	err = friendly(err)

	var uerr userError
	if errors.As(err, &uerr) {
		fmt.Fprintln(w, color.RedString(uerr.Error()))
		return 1
	}
	fmt.Fprintf(w, "unexpected error: %v\n", err)
	return 2
}

// friendly turns known domain errors into user errors.
func friendly(err error) error {
	switch {
	case errors.Is(err, vault.ErrNotInitialized):
		return userError{msg: "vault not initialized; run pm init first"}
	case errors.Is(err, vault.ErrAuthenticationFailed):
		return userError{msg: "wrong master password"}
	case errors.Is(err, vault.ErrAlreadyExists):
		return userError{msg: "already exists: " + err.Error()}
	case errors.Is(err, vault.ErrNotFound):
		return userError{msg: "not found: " + err.Error()}
	case errors.Is(err, vault.ErrInvalidInput),
		errors.Is(err, generator.ErrEmptyPool),
		errors.Is(err, generator.ErrLengthTooShort):
		return userError{msg: err.Error()}
	case errors.Is(err, auth.ErrTooShort),
		errors.Is(err, auth.ErrMissingUpper),
		errors.Is(err, auth.ErrMissingDigit),
		errors.Is(err, auth.ErrMissingSpecial),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrBreachedPassword):
		return userError{msg: "password does not meet policy requirements: " + err.Error()}
	case errors.Is(err, service.ErrLocked):
		return userError{msg: "vault is locked"}
	}
	return err
}
