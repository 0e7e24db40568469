package vault

import (
	"fmt"

	"github.com/Hussein-Mazeh/PasswordVault/auth"
	"github.com/Hussein-Mazeh/PasswordVault/krypto"
)

// Store is the vault aggregate: master record, key wrap, entries, settings and
// the three integrity digests. It does no locking; hosts must serialize access
// to a given Store.
type Store struct {
	master   *auth.MasterRecord
	keyWrap  *KeyWrap
	entries  []Entry
	settings Settings
	digests  Digests
	crypto   krypto.Cryptographer
}

// Option configures a Store.
type Option func(*Store)

// WithIterations sets the PBKDF2 iteration count of a new store. Loaded stores
// keep the count recorded in their document.
func WithIterations(n int) Option {
	return func(s *Store) { s.crypto = krypto.NewCryptographer(n) }
}

// WithSettings sets the initial settings of a new Store.
func WithSettings(settings Settings) Option {
	return func(s *Store) { s.settings = settings }
}

func newStore(opts []Option) *Store {
	s := &Store{
		settings: DefaultSettings(),
		crypto:   krypto.NewCryptographer(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewStore returns an empty, uninitialized store with consistent digests.
func NewStore(opts ...Option) *Store {
	s := newStore(opts)
	if d, err := computeDigests(nil, nil, nil); err == nil {
		s.digests = d
	}
	return s
}

// Cryptographer returns the envelope primitive configured for this store.
func (s *Store) Cryptographer() krypto.Cryptographer { return s.crypto }

// Initialized reports whether a master secret has been set.
func (s *Store) Initialized() bool {
	return s.master != nil && s.keyWrap != nil
}

// Initialize sets the first master secret, creating the master record and the
// key wrap (with a fresh MEK) together.
func (s *Store) Initialize(secret []byte) error {
	if s.master != nil || s.keyWrap != nil {
		return fmt.Errorf("master password: %w", ErrAlreadyExists)
	}

	return s.commit(func(tx *Store) error {
		rec, err := auth.NewMasterRecord(secret, tx.crypto.IterationCount())
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCryptoOperationFailed, err)
		}
		kw, mek, err := NewKeyWrap(tx.crypto, secret)
		if err != nil {
			return err
		}
		krypto.Wipe(mek)

		tx.master = rec
		tx.keyWrap = kw
		return nil
	})
}

// Authenticate reports whether secret is the current master secret.
func (s *Store) Authenticate(secret []byte) bool {
	if !s.Initialized() {
		return false
	}
	return s.master.Verify(secret, s.crypto.IterationCount())
}

// UnwrapMEK authenticates secret and returns the plaintext MEK. The caller owns
// the returned slice and must wipe it.
func (s *Store) UnwrapMEK(secret []byte) ([]byte, error) {
	if !s.Initialized() {
		return nil, ErrNotInitialized
	}
	if !s.Authenticate(secret) {
		return nil, ErrAuthenticationFailed
	}
	return s.keyWrap.Unwrap(s.crypto, secret)
}

// RotateMasterSecret replaces the master secret. The MEK is re-wrapped rather
// than regenerated, so no entry is re-encrypted.
func (s *Store) RotateMasterSecret(oldSecret, newSecret []byte) error {
	if !s.Initialized() {
		return ErrNotInitialized
	}
	if !s.Authenticate(oldSecret) {
		return ErrAuthenticationFailed
	}

	return s.commit(func(tx *Store) error {
		kw, err := tx.keyWrap.Rotate(tx.crypto, oldSecret, newSecret)
		if err != nil {
			return err
		}
		rec, err := auth.NewMasterRecord(newSecret, tx.crypto.IterationCount())
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCryptoOperationFailed, err)
		}

		tx.keyWrap = kw
		tx.master = rec
		return nil
	})
}

// AddEntry appends an entry. Ids must be unique.
func (s *Store) AddEntry(e Entry) error {
	if e.ID == "" {
		return fmt.Errorf("%w: entry id is required", ErrInvalidInput)
	}
	if s.indexOf(e.ID) >= 0 {
		return fmt.Errorf("entry %s: %w", e.ID, ErrAlreadyExists)
	}

	return s.commit(func(tx *Store) error {
		tx.entries = append(tx.entries, e.Clone())
		return nil
	})
}

// UpdateEntry replaces the entry carrying the same id.
func (s *Store) UpdateEntry(e Entry) error {
	idx := s.indexOf(e.ID)
	if idx < 0 {
		return fmt.Errorf("entry %s: %w", e.ID, ErrNotFound)
	}

	return s.commit(func(tx *Store) error {
		tx.entries[idx] = e.Clone()
		return nil
	})
}

// RemoveEntry deletes the entry with the given id.
func (s *Store) RemoveEntry(id string) error {
	idx := s.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("entry %s: %w", id, ErrNotFound)
	}

	return s.commit(func(tx *Store) error {
		tx.entries = append(tx.entries[:idx], tx.entries[idx+1:]...)
		return nil
	})
}

// FindEntry returns a copy of the entry with the given id.
func (s *Store) FindEntry(id string) (Entry, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return Entry{}, fmt.Errorf("entry %s: %w", id, ErrNotFound)
	}
	return s.entries[idx].Clone(), nil
}

// Entries returns copies of all entries in insertion order.
func (s *Store) Entries() []Entry {
	return cloneEntries(s.entries)
}

// Len returns the number of entries.
func (s *Store) Len() int { return len(s.entries) }

// Settings returns the stored settings.
func (s *Store) Settings() Settings { return s.settings }

// UpdateSettings replaces the stored settings.
func (s *Store) UpdateSettings(settings Settings) error {
	return s.commit(func(tx *Store) error {
		tx.settings = settings
		return nil
	})
}

// Digests returns a copy of the stored digests.
func (s *Store) Digests() Digests { return s.digests.clone() }

// VerifyIntegrity recomputes the three digests and compares them with the
// stored ones. A false result means the store is corrupted or inconsistent and
// its contents should not be trusted. The digests are unkeyed, so a true result
// is no evidence against deliberate tampering.
func (s *Store) VerifyIntegrity() bool {
	d, err := computeDigests(s.master, s.keyWrap, s.entries)
	if err != nil {
		return false
	}
	return sameDigest(s.digests.Master, d.Master) &&
		sameDigest(s.digests.KeyWrap, d.KeyWrap) &&
		sameDigest(s.digests.Entries, d.Entries)
}

// commit applies mutate to a scratch copy, recomputes its digests and only then
// swaps it in. On any error the store is left as it was.
func (s *Store) commit(mutate func(tx *Store) error) error {
	tx := s.clone()
	if err := mutate(tx); err != nil {
		return err
	}

	d, err := computeDigests(tx.master, tx.keyWrap, tx.entries)
	if err != nil {
		return fmt.Errorf("%w: compute digests: %w", ErrSerializationFailed, err)
	}
	tx.digests = d

	*s = *tx
	return nil
}

func (s *Store) clone() *Store {
	return &Store{
		master:   s.master.Clone(),
		keyWrap:  s.keyWrap.Clone(),
		entries:  cloneEntries(s.entries),
		settings: s.settings,
		digests:  s.digests.clone(),
		crypto:   s.crypto,
	}
}

func (s *Store) indexOf(id string) int {
	for i := range s.entries {
		if s.entries[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneEntries(entries []Entry) []Entry {
	if entries == nil {
		return nil
	}
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
	}
	return out
}
