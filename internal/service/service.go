package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/awnumar/memguard"

	"github.com/Hussein-Mazeh/PasswordVault/auth"
	"github.com/Hussein-Mazeh/PasswordVault/internal/generator"
	"github.com/Hussein-Mazeh/PasswordVault/internal/logging"
	"github.com/Hussein-Mazeh/PasswordVault/internal/vault"
	"github.com/Hussein-Mazeh/PasswordVault/krypto"
	"github.com/Hussein-Mazeh/PasswordVault/store"
)

// ErrLocked is returned when an operation needs the MEK and the vault is locked.
var ErrLocked = errors.New("vault locked")

// Persister loads and saves the whole store.
type Persister interface {
	// Load returns store.ErrNoVault when nothing has been persisted yet.
	Load() (*vault.Store, error)
	Save(*vault.Store) error
}

// Policy controls the checks applied to new master passwords.
type Policy struct {
	Validate auth.ValidateOptions
	// Skip disables every check. Meant for tests and scripted setups.
	Skip bool
}

// DefaultPolicy is the offline policy: base rules plus a zxcvbn floor of 3.
func DefaultPolicy() Policy {
	return Policy{Validate: auth.DefaultValidateOptions()}
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for session events.
func WithLogger(l logging.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithPolicy sets the master password policy.
func WithPolicy(p Policy) Option {
	return func(s *Service) { s.policy = p }
}

// WithStoreOptions sets the options used when the service creates an empty store.
func WithStoreOptions(opts ...vault.Option) Option {
	return func(s *Service) { s.storeOpts = append(s.storeOpts, opts...) }
}

// Service exposes high-level vault operations for the CLI.
type Service struct {
	mu        sync.Mutex
	persister Persister
	store     *vault.Store
	mek       *memguard.Enclave // MEK sealed in memory after Unlock
	log       logging.Logger
	policy    Policy
	storeOpts []vault.Option
}

// ListItem is the plaintext metadata of an entry, enough for list views.
type ListItem struct {
	ID       string
	Title    string
	Username string
	URL      string
	Category string
	Favorite bool
}

// New loads the persisted store, or starts an empty one when none exists yet.
func New(p Persister, opts ...Option) (*Service, error) {
	s := &Service{
		persister: p,
		log:       logging.Discard(),
		policy:    DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}

	st, err := p.Load()
	switch {
	case errors.Is(err, store.ErrNoVault):
		s.log.Debugf("no vault persisted yet, starting empty")
		s.store = vault.NewStore(s.storeOpts...)
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("load vault: %w", err)
	}

	s.store = st
	if !st.VerifyIntegrity() {
		s.log.Warnf("vault integrity check failed: stored digests do not match the data")
	}
	s.log.Debugf("loaded vault with %d entries", st.Len())
	return s, nil
}

// Integrity reports whether the stored digests match the current data.
func (s *Service) Integrity() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.VerifyIntegrity()
}

// Digests returns the store's current digests.
func (s *Service) Digests() vault.Digests {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Digests()
}

// NeedsMasterSetup reports whether no master password has been set yet.
func (s *Service) NeedsMasterSetup() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.store.Initialized()
}

// SetMaster initializes the vault with a new master password and persists it.
// It does not unlock the vault.
func (s *Service) SetMaster(master string) error {
	if err := s.checkPolicy(master); err != nil {
		return fmt.Errorf("validate master password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	secret := []byte(master)
	defer krypto.Wipe(secret)

	return s.mutate(func(st *vault.Store) error {
		if err := st.Initialize(secret); err != nil {
			return fmt.Errorf("initialize vault: %w", err)
		}
		return nil
	})
}

// Unlock authenticates master and keeps the MEK sealed in memory.
func (s *Service) Unlock(master string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	secret := []byte(master)
	defer krypto.Wipe(secret)

	mek, err := s.store.UnwrapMEK(secret)
	if err != nil {
		s.log.Debugf("unlock failed: %v", err)
		return fmt.Errorf("unlock: %w", err)
	}
	// NewEnclave wipes mek.
	s.mek = memguard.NewEnclave(mek)
	s.log.Infof("vault unlocked")
	return nil
}

// Lock forgets the MEK.
func (s *Service) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mek = nil
}

// IsUnlocked reports whether the MEK is held.
func (s *Service) IsUnlocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mek != nil
}

// Close locks the vault and closes the persister when it holds resources.
func (s *Service) Close() error {
	s.Lock()
	if c, ok := s.persister.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// ChangeMaster replaces the master password. The MEK is unchanged, so an
// unlocked session stays unlocked and every entry stays readable.
func (s *Service) ChangeMaster(oldMaster, newMaster string) error {
	if oldMaster == "" || newMaster == "" {
		return fmt.Errorf("%w: old and new master passwords are required", vault.ErrInvalidInput)
	}
	if err := s.checkPolicy(newMaster); err != nil {
		return fmt.Errorf("validate new master password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	oldSecret, newSecret := []byte(oldMaster), []byte(newMaster)
	defer krypto.Wipe(oldSecret, newSecret)

	return s.mutate(func(st *vault.Store) error {
		if err := st.RotateMasterSecret(oldSecret, newSecret); err != nil {
			return fmt.Errorf("rotate master password: %w", err)
		}
		return nil
	})
}

// Add encrypts d and stores it. A missing id or creation date is filled in.
func (s *Service) Add(d vault.DecryptedEntry) (string, error) {
	if strings.TrimSpace(d.Title) == "" {
		return "", fmt.Errorf("%w: title is required", vault.ErrInvalidInput)
	}
	fresh := vault.NewDecryptedEntry(d.Title)
	if d.ID == "" {
		d.ID = fresh.ID
	}
	if d.CreationDate == "" {
		d.CreationDate = fresh.CreationDate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.withMEK(func(mek []byte) error {
		e, err := d.Encrypt(s.store.Cryptographer(), mek)
		if err != nil {
			return err
		}
		return s.mutate(func(st *vault.Store) error { return st.AddEntry(e) })
	})
	if err != nil {
		return "", fmt.Errorf("add entry: %w", err)
	}
	s.log.Debugf("added entry %s", d.ID)
	return d.ID, nil
}

// Get returns the entry with id, password revealed.
func (s *Service) Get(id string) (vault.DecryptedEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out vault.DecryptedEntry
	err := s.withMEK(func(mek []byte) error {
		e, err := s.store.FindEntry(id)
		if err != nil {
			return err
		}
		out, err = e.Decrypt(s.store.Cryptographer(), mek)
		return err
	})
	if err != nil {
		return vault.DecryptedEntry{}, fmt.Errorf("get entry: %w", err)
	}
	return out, nil
}

// Update replaces the stored entry with the same id as d. An empty creation
// date keeps the stored one.
func (s *Service) Update(d vault.DecryptedEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.withMEK(func(mek []byte) error {
		cur, err := s.store.FindEntry(d.ID)
		if err != nil {
			return err
		}
		if d.CreationDate == "" {
			d.CreationDate = cur.CreationDate
		}
		e, err := d.Encrypt(s.store.Cryptographer(), mek)
		if err != nil {
			return err
		}
		return s.mutate(func(st *vault.Store) error { return st.UpdateEntry(e) })
	})
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	return nil
}

// Delete removes the entry with id.
func (s *Service) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mek == nil {
		return ErrLocked
	}
	if err := s.mutate(func(st *vault.Store) error { return st.RemoveEntry(id) }); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	s.log.Debugf("deleted entry %s", id)
	return nil
}

// List returns every entry's metadata in storage order.
func (s *Service) List() []ListItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return listItems(s.store.Entries())
}

// Search returns entries whose title or url contains term, ignoring case.
func (s *Service) Search(term string) []ListItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return listItems(s.store.SearchEntries(term))
}

// Categories returns the distinct categories in use, sorted.
func (s *Service) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Categories()
}

// Favorites returns entries marked favorite.
func (s *Service) Favorites() []ListItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return listItems(s.store.Favorites())
}

// Settings returns the persisted generator settings.
func (s *Service) Settings() vault.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Settings()
}

// UpdateSettings stores settings after checking a password can be generated
// from them. The vault must be initialized and unlocked.
func (s *Service) UpdateSettings(settings vault.Settings) error {
	if _, err := generator.Generate(settings); err != nil {
		return fmt.Errorf("%w: %w", vault.ErrInvalidInput, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.store.Initialized() {
		return vault.ErrNotInitialized
	}
	if s.mek == nil {
		return ErrLocked
	}
	return s.mutate(func(st *vault.Store) error { return st.UpdateSettings(settings) })
}

// GeneratePassword returns a random password following the stored settings.
func (s *Service) GeneratePassword() (string, error) {
	return generator.Generate(s.Settings())
}

// mutate applies fn to the store and persists the result. When saving fails the
// in-memory store is rolled back to what is on disk. Callers hold s.mu.
func (s *Service) mutate(fn func(*vault.Store) error) error {
	snapshot := s.store.Document()
	if err := fn(s.store); err != nil {
		return err
	}
	if err := s.persister.Save(s.store); err != nil {
		if restored, rerr := vault.FromDocument(snapshot); rerr == nil {
			s.store = restored
		}
		s.log.Errorf("save failed, changes discarded: %v", err)
		return fmt.Errorf("save vault: %w", err)
	}
	return nil
}

// withMEK opens the sealed MEK for the duration of fn. Callers hold s.mu.
func (s *Service) withMEK(fn func(mek []byte) error) error {
	if s.mek == nil {
		return ErrLocked
	}
	buf, err := s.mek.Open()
	if err != nil {
		return fmt.Errorf("%w: open sealed key: %w", vault.ErrCryptoOperationFailed, err)
	}
	defer buf.Destroy()
	return fn(buf.Bytes())
}

func (s *Service) checkPolicy(master string) error {
	if master == "" {
		return fmt.Errorf("%w: master password cannot be empty", vault.ErrInvalidInput)
	}
	if s.policy.Skip {
		return nil
	}
	return auth.ValidateMasterPasswordAdvanced(context.Background(), master, s.policy.Validate)
}

func listItems(entries []vault.Entry) []ListItem {
	out := make([]ListItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, ListItem{
			ID:       e.ID,
			Title:    e.Title,
			Username: derefString(e.Username),
			URL:      derefString(e.URL),
			Category: derefString(e.Category),
			Favorite: e.Favorite,
		})
	}
	return out
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
