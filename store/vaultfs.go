package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Hussein-Mazeh/PasswordVault/internal/vault"
)

const documentFilename = "vault.json"

// Paths locates vault artifacts on disk.
type Paths struct {
	Dir string
}

// DocumentPath resolves the vault document path.
func (p Paths) DocumentPath() string {
	return filepath.Join(p.Dir, documentFilename)
}

func (p Paths) ensureDir() error {
	if p.Dir == "" {
		return errors.New("vault directory not specified")
	}
	if err := os.MkdirAll(p.Dir, 0o700); err != nil {
		return fmt.Errorf("create vault directory: %w", err)
	}
	return nil
}

// FileStore persists the vault as a single JSON document.
type FileStore struct {
	Paths   Paths
	Options []vault.Option
}

// NewFileStore returns a FileStore rooted at dir. opts apply to loaded stores.
func NewFileStore(dir string, opts ...vault.Option) *FileStore {
	return &FileStore{Paths: Paths{Dir: dir}, Options: opts}
}

// Load reads the document. A missing file yields ErrNoVault.
func (f *FileStore) Load() (*vault.Store, error) {
	data, err := os.ReadFile(f.Paths.DocumentPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoVault
		}
		return nil, fmt.Errorf("%w: read document: %w", vault.ErrIOFailure, err)
	}
	return decodeDocument(data, f.Options)
}

// Save writes the document atomically with owner-only permissions.
func (f *FileStore) Save(s *vault.Store) error {
	data, err := encodeDocument(s)
	if err != nil {
		return err
	}
	if err := f.Paths.ensureDir(); err != nil {
		return fmt.Errorf("%w: %w", vault.ErrIOFailure, err)
	}
	if err := writeFileAtomic(f.Paths.Dir, f.Paths.DocumentPath(), data); err != nil {
		return fmt.Errorf("%w: %w", vault.ErrIOFailure, err)
	}
	return nil
}

// Close is a no-op; FileStore holds no open handles.
func (f *FileStore) Close() error { return nil }

func writeFileAtomic(dir, target string, data []byte) error {
	tmp, err := os.CreateTemp(dir, "vault-*.json")
	if err != nil {
		return fmt.Errorf("create temp document: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp document: %w", err)
	}

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp document: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync temp document: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp document: %w", err)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace document: %w", err)
	}

	return nil
}
