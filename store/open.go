package store

import (
	"fmt"
	"path/filepath"

	"github.com/Hussein-Mazeh/PasswordVault/internal/vault"
)

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Backend loads and saves a vault and releases its resources on Close.
type Backend interface {
	Load() (*vault.Store, error)
	Save(*vault.Store) error
	Close() error
}

// Open returns the named backend rooted at dir. An empty name selects JSON.
func Open(backend, dir string, opts ...vault.Option) (Backend, error) {
	switch backend {
	case "", BackendJSON:
		return NewFileStore(dir, opts...), nil
	case BackendSQLite:
		db, err := OpenSQLite(filepath.Join(dir, SQLiteFilename), opts...)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
