package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Hussein-Mazeh/PasswordVault/internal/config"
	"github.com/Hussein-Mazeh/PasswordVault/internal/service"
	"github.com/Hussein-Mazeh/PasswordVault/internal/vault"
	"github.com/Hussein-Mazeh/PasswordVault/krypto"
)

func (a *app) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a vault and set its master password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.openService()
			if err != nil {
				return err
			}
			defer svc.Close()
			if !svc.NeedsMasterSetup() {
				return userError{msg: "vault already initialized; use pm passwd to change the master password"}
			}

			pw, err := a.promptNewPassword("New master password: ")
			if err != nil {
				return err
			}
			defer krypto.Wipe(pw)

			stop := a.startSpinner("Creating vault")
			err = svc.SetMaster(string(pw))
			stop()
			if err != nil {
				return err
			}

			if _, err := os.Stat(config.Path(a.cfg.VaultDir)); errors.Is(err, fs.ErrNotExist) {
				if err := config.Save(a.cfg); err != nil {
					a.log.Warnf("could not write %s: %v", config.Path(a.cfg.VaultDir), err)
				}
			}
			fmt.Fprintln(a.out, color.GreenString("✓"), "vault created in", a.cfg.VaultDir)
			return nil
		},
	}
}

func (a *app) verifyCmd() *cobra.Command {
	var checkPassword bool
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check vault integrity and, optionally, the master password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var svc *service.Service
			var err error
			if checkPassword {
				svc, err = a.unlockedService()
			} else {
				svc, err = a.openService()
			}
			if err != nil {
				return err
			}
			defer svc.Close()

			d := svc.Digests()
			a.log.Debugf("digests master=%s keywrap=%s entries=%s", deref(d.Master), deref(d.KeyWrap), deref(d.Entries))
			if !svc.Integrity() {
				return userError{msg: "integrity check failed: the vault file was modified or corrupted"}
			}
			fmt.Fprintln(a.out, color.GreenString("✓"), "integrity ok")
			if checkPassword {
				fmt.Fprintln(a.out, color.GreenString("✓"), "master password ok")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&checkPassword, "password", false, "also prompt for and check the master password")
	return cmd
}

func (a *app) passwdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "passwd",
		Short: "Change the master password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.openService()
			if err != nil {
				return err
			}
			defer svc.Close()
			if svc.NeedsMasterSetup() {
				return vault.ErrNotInitialized
			}

			oldPw, err := a.promptPassword("Old master password: ")
			if err != nil {
				return fmt.Errorf("read old master password: %w", err)
			}
			defer krypto.Wipe(oldPw)
			newPw, err := a.promptNewPassword("New master password: ")
			if err != nil {
				return err
			}
			defer krypto.Wipe(newPw)

			stop := a.startSpinner("Re-wrapping master key")
			err = svc.ChangeMaster(string(oldPw), string(newPw))
			stop()
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, color.GreenString("✓"), "master password changed")
			return nil
		},
	}
}

func (a *app) generateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Print a random password using the vault settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.openService()
			if err != nil {
				return err
			}
			defer svc.Close()

			pw, err := svc.GeneratePassword()
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, pw)
			return nil
		},
	}
}

func (a *app) settingsCmd() *cobra.Command {
	var (
		length, minLength, minNumbers, minSymbols uint8
		numbers, symbols, lower, upper           bool
	)
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change password generator settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			changed := false
			for _, name := range []string{"length", "min-length", "min-numbers", "min-symbols", "numbers", "symbols", "lower", "upper"} {
				changed = changed || f.Changed(name)
			}

			// Changing settings is a vault mutation and needs an unlocked session.
			open := a.openService
			if changed {
				open = a.unlockedService
			}
			svc, err := open()
			if err != nil {
				return err
			}
			defer svc.Close()

			s := svc.Settings()
			setU8 := func(name string, dst *uint8, v uint8) {
				if f.Changed(name) {
					*dst = v
				}
			}
			setBool := func(name string, dst *bool, v bool) {
				if f.Changed(name) {
					*dst = v
				}
			}
			setU8("length", &s.PasswordLength, length)
			setU8("min-length", &s.MinPasswordLength, minLength)
			setU8("min-numbers", &s.MinNumbers, minNumbers)
			setU8("min-symbols", &s.MinSymbols, minSymbols)
			setBool("numbers", &s.UseNumbers, numbers)
			setBool("symbols", &s.UseSymbols, symbols)
			setBool("lower", &s.UseLower, lower)
			setBool("upper", &s.UseUpper, upper)

			if changed {
				if err := svc.UpdateSettings(s); err != nil {
					return err
				}
				a.log.Infof("settings saved")
			}

			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "length\t%d\n", s.PasswordLength)
			fmt.Fprintf(tw, "min length\t%d\n", s.MinPasswordLength)
			fmt.Fprintf(tw, "numbers\t%t (min %d)\n", s.UseNumbers, s.MinNumbers)
			fmt.Fprintf(tw, "symbols\t%t (min %d)\n", s.UseSymbols, s.MinSymbols)
			fmt.Fprintf(tw, "lower\t%t\n", s.UseLower)
			fmt.Fprintf(tw, "upper\t%t\n", s.UseUpper)
			return tw.Flush()
		},
	}
	f := cmd.Flags()
	f.Uint8Var(&length, "length", 0, "generated password length")
	f.Uint8Var(&minLength, "min-length", 0, "minimum generated password length")
	f.Uint8Var(&minNumbers, "min-numbers", 0, "minimum digits")
	f.Uint8Var(&minSymbols, "min-symbols", 0, "minimum symbols")
	f.BoolVar(&numbers, "numbers", true, "include digits")
	f.BoolVar(&symbols, "symbols", true, "include symbols")
	f.BoolVar(&lower, "lower", true, "include lowercase letters")
	f.BoolVar(&upper, "upper", true, "include uppercase letters")
	return cmd
}

func deref(p *string) string {
	if p == nil {
		return "<none>"
	}
	return *p
}
