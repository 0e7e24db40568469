package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/Hussein-Mazeh/PasswordVault/internal/config"
	"github.com/Hussein-Mazeh/PasswordVault/internal/logging"
	"github.com/Hussein-Mazeh/PasswordVault/internal/service"
	"github.com/Hussein-Mazeh/PasswordVault/internal/vault"
	"github.com/Hussein-Mazeh/PasswordVault/krypto"
	"github.com/Hussein-Mazeh/PasswordVault/store"
)

// app carries per-invocation state shared by the subcommands.
type app struct {
	in     *bufio.Reader
	inFile *os.File
	out    io.Writer
	errOut io.Writer

	dir        string
	backend    string
	iterations int
	verbose    bool
	debug      bool
	skipPolicy bool
	hibp       bool

	cfg config.Config
	log logging.Logger
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{in: bufio.NewReader(in), out: out, errOut: errOut}
	if f, ok := in.(*os.File); ok {
		a.inFile = f
	}

	root := &cobra.Command{
		Use:           "pm",
		Short:         "Local password vault",
		Long:          "pm keeps secrets in a single encrypted vault file guarded by a master password.",
		Version:       cliVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig(cmd.Flags())
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.dir, "dir", envOr("PM_VAULT_DIR", config.DefaultVaultDir), "vault directory")
	pf.StringVar(&a.backend, "backend", store.BackendJSON, "storage backend (json|sqlite)")
	pf.IntVar(&a.iterations, "iterations", 0, "PBKDF2 iterations for a new vault")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose output")
	pf.BoolVarP(&a.debug, "debug", "d", false, "enable debug output")
	pf.BoolVar(&a.skipPolicy, "skip-policy", false, "do not enforce the master password policy")
	pf.BoolVar(&a.hibp, "hibp", false, "check new master passwords against Have I Been Pwned")

	root.AddCommand(
		a.initCmd(),
		a.verifyCmd(),
		a.passwdCmd(),
		a.addCmd(),
		a.getCmd(),
		a.listCmd(),
		a.searchCmd(),
		a.rmCmd(),
		a.generateCmd(),
		a.settingsCmd(),
	)
	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadConfig reads config.toml from the vault directory; flags that were set win.
func (a *app) loadConfig(flags *pflag.FlagSet) error {
	cfg, err := config.Load(a.dir)
	if err != nil {
		return userError{msg: err.Error()}
	}
	if flags.Changed("backend") {
		cfg.Backend = a.backend
	}
	if flags.Changed("iterations") {
		cfg.Iterations = a.iterations
	}
	if flags.Changed("skip-policy") {
		cfg.Policy.SkipPolicy = a.skipPolicy
	}
	if flags.Changed("hibp") {
		cfg.Policy.EnableHIBP = a.hibp
	}
	if flags.Changed("verbose") {
		cfg.Verbose = a.verbose
	}
	if err := cfg.Validate(); err != nil {
		return userError{msg: err.Error()}
	}

	a.cfg = cfg
	a.log = logging.Logger{Verbose: cfg.Verbose, Debug: a.debug, Out: a.errOut, Err: a.errOut}
	a.log.Debugf("vault dir %s, backend %s, iterations %d", cfg.VaultDir, cfg.Backend, cfg.Iterations)
	return nil
}

// openService opens the configured backend and loads the vault.
func (a *app) openService() (*service.Service, error) {
	b, err := store.Open(a.cfg.Backend, a.cfg.VaultDir)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", a.cfg.Backend, err)
	}

	policy := service.DefaultPolicy()
	policy.Skip = a.cfg.Policy.SkipPolicy
	policy.Validate.MinZXCVBNScore = a.cfg.Policy.MinScore
	policy.Validate.EnableHIBP = a.cfg.Policy.EnableHIBP

	svc, err := service.New(b,
		service.WithLogger(a.log),
		service.WithPolicy(policy),
		service.WithStoreOptions(vault.WithIterations(a.cfg.Iterations)),
	)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	return svc, nil
}

// unlockedService opens the vault and unlocks it with a prompted master password.
func (a *app) unlockedService() (*service.Service, error) {
	svc, err := a.openService()
	if err != nil {
		return nil, err
	}
	if svc.NeedsMasterSetup() {
		_ = svc.Close()
		return nil, vault.ErrNotInitialized
	}

	pw, err := a.promptPassword("Master password: ")
	if err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("read master password: %w", err)
	}
	stop := a.startSpinner("Unlocking vault")
	err = svc.Unlock(string(pw))
	stop()
	krypto.Wipe(pw)
	if err != nil {
		_ = svc.Close()
		return nil, err
	}
	return svc, nil
}

// promptPassword reads a secret without echo from a terminal, or a line otherwise.
func (a *app) promptPassword(prompt string) ([]byte, error) {
	fmt.Fprint(a.errOut, prompt)
	if a.inFile != nil && term.IsTerminal(int(a.inFile.Fd())) {
		pw, err := term.ReadPassword(int(a.inFile.Fd()))
		fmt.Fprintln(a.errOut)
		return pw, err
	}
	return a.readLine()
}

func (a *app) promptNewPassword(prompt string) ([]byte, error) {
	pw, err := a.promptPassword(prompt)
	if err != nil {
		return nil, err
	}
	confirm, err := a.promptPassword("Confirm: ")
	if err != nil {
		krypto.Wipe(pw)
		return nil, err
	}
	defer krypto.Wipe(confirm)
	if string(pw) != string(confirm) {
		krypto.Wipe(pw)
		return nil, userError{msg: "passwords do not match"}
	}
	return pw, nil
}

func (a *app) readLine() ([]byte, error) {
	line, err := a.in.ReadBytes('\n')
	if err != nil && (err != io.EOF || len(line) == 0) {
		return nil, err
	}
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line, nil
}

// startSpinner shows progress during PBKDF2 work when stderr is a terminal.
func (a *app) startSpinner(message string) func() {
	f, ok := a.errOut.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) || a.cfg.Verbose || a.debug {
		a.log.Infof("%s", message)
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(f))
	s.Suffix = " " + message
	if err := s.Color("cyan"); err != nil {
		a.log.Warnf("failed to set spinner color: %v", err)
	}
	s.Start()
	return s.Stop
}
