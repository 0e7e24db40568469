// Package config loads the CLI settings from <vault-dir>/config.toml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/Hussein-Mazeh/PasswordVault/krypto"
	"github.com/Hussein-Mazeh/PasswordVault/store"
)

// Filename is the config file name inside the vault directory.
const Filename = "config.toml"

// DefaultVaultDir is used when neither a flag nor the environment names a directory.
const DefaultVaultDir = "./dev-vault"

// Policy controls the master password checks.
type Policy struct {
	MinScore   int  `toml:"min_score"`
	EnableHIBP bool `toml:"enable_hibp"`
	SkipPolicy bool `toml:"skip_policy"`
}

// Config holds the CLI settings.
type Config struct {
	VaultDir   string `toml:"-"`
	Backend    string `toml:"backend"`
	Iterations int    `toml:"iterations"`
	Policy     Policy `toml:"policy"`
	Verbose    bool   `toml:"verbose"`
}

// Default returns the settings used when no config file exists.
func Default(vaultDir string) Config {
	if vaultDir == "" {
		vaultDir = DefaultVaultDir
	}
	return Config{
		VaultDir:   vaultDir,
		Backend:    store.BackendJSON,
		Iterations: krypto.DefaultIterations,
		Policy:     Policy{MinScore: 3},
	}
}

// Path returns the config file path for vaultDir.
func Path(vaultDir string) string {
	return filepath.Join(vaultDir, Filename)
}

// Load reads the config file in vaultDir on top of the defaults. A missing file
// is not an error.
func Load(vaultDir string) (Config, error) {
	cfg := Default(vaultDir)
	_, err := toml.DecodeFile(Path(cfg.VaultDir), &cfg)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return Default(vaultDir), nil
	case err != nil:
		return Config{}, fmt.Errorf("read %s: %w", Path(cfg.VaultDir), err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes cfg to its vault directory.
func Save(cfg Config) error {
	if err := os.MkdirAll(cfg.VaultDir, 0o700); err != nil {
		return fmt.Errorf("create vault dir: %w", err)
	}
	f, err := os.OpenFile(Path(cfg.VaultDir), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// Validate reports settings the CLI cannot run with.
func (c Config) Validate() error {
	switch c.Backend {
	case store.BackendJSON, store.BackendSQLite:
	default:
		return fmt.Errorf("unknown backend %q (want %q or %q)", c.Backend, store.BackendJSON, store.BackendSQLite)
	}
	if c.Iterations <= 0 {
		return fmt.Errorf("iterations must be positive, got %d", c.Iterations)
	}
	if c.Policy.MinScore < 0 || c.Policy.MinScore > 4 {
		return fmt.Errorf("policy.min_score must be between 0 and 4, got %d", c.Policy.MinScore)
	}
	return nil
}
