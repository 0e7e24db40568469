package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/Hussein-Mazeh/PasswordVault/internal/vault"
)

const (
	// SQLiteFilename is the database file name inside a vault directory.
	SQLiteFilename = "vault.db"
	// DefaultKeepRevisions is how many saved documents SQLiteStore retains.
	DefaultKeepRevisions = 5
)

const createDocumentsTable = `
CREATE TABLE IF NOT EXISTS documents (
	revision INTEGER  PRIMARY KEY AUTOINCREMENT,
	body     TEXT     NOT NULL,
	saved_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// SQLiteStore persists each saved document as a new revision row and keeps
// the most recent KeepRevisions of them.
type SQLiteStore struct {
	db            *sql.DB
	path          string
	KeepRevisions int
	Options       []vault.Option
}

// OpenSQLite creates (if needed) and opens the database at path.
// The caller must Close the returned store.
func OpenSQLite(path string, opts ...vault.Option) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("%w: create database directory: %w", vault.ErrIOFailure, err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite database: %w", vault.ErrIOFailure, err)
	}

	// Prime the connection so the file exists before chmod.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping sqlite database: %w", vault.ErrIOFailure, err)
	}

	if _, err := db.Exec(createDocumentsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: migrate schema: %w", vault.ErrIOFailure, err)
	}

	if err := ensurePerm0600(path); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", vault.ErrIOFailure, err)
	}

	return &SQLiteStore{db: db, path: path, KeepRevisions: DefaultKeepRevisions, Options: opts}, nil
}

// Load returns the newest saved document, or ErrNoVault when none exists.
func (s *SQLiteStore) Load() (*vault.Store, error) {
	var body string
	err := s.db.QueryRow(`SELECT body FROM documents ORDER BY revision DESC LIMIT 1`).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoVault
		}
		return nil, fmt.Errorf("%w: select document: %w", vault.ErrIOFailure, err)
	}
	return decodeDocument([]byte(body), s.Options)
}

// Save inserts a new revision and prunes old ones in a single transaction.
func (s *SQLiteStore) Save(st *vault.Store) error {
	data, err := encodeDocument(st)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: begin: %w", vault.ErrIOFailure, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO documents (body) VALUES (?)`, string(data)); err != nil {
		return fmt.Errorf("%w: insert document: %w", vault.ErrIOFailure, err)
	}

	keep := s.KeepRevisions
	if keep <= 0 {
		keep = DefaultKeepRevisions
	}
	if _, err := tx.Exec(
		`DELETE FROM documents
		  WHERE revision NOT IN (SELECT revision FROM documents ORDER BY revision DESC LIMIT ?)`,
		keep,
	); err != nil {
		return fmt.Errorf("%w: prune revisions: %w", vault.ErrIOFailure, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", vault.ErrIOFailure, err)
	}
	return nil
}

// Revisions returns the number of retained documents.
func (s *SQLiteStore) Revisions() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count revisions: %w", vault.ErrIOFailure, err)
	}
	return n, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ensurePerm0600 restricts the database file to its owner on Unix systems.
func ensurePerm0600(path string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	if err := os.Chmod(path, 0o600); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("chmod database: %w", err)
	}
	return nil
}
