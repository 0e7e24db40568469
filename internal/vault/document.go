package vault

import (
	"fmt"

	"github.com/Hussein-Mazeh/PasswordVault/auth"
	"github.com/Hussein-Mazeh/PasswordVault/krypto"
)

// DocumentVersion is the persisted document format version.
const DocumentVersion = 1

// Document is the persisted shape of a Store. Binary fields are encoded by
// encoding/json as base64 strings.
type Document struct {
	Version                int                `json:"version,omitempty"`
	MasterPasswordData     *auth.MasterRecord `json:"masterPasswordData"`
	MekData                *KeyWrap           `json:"mekData"`
	PasswordEntries        []Entry            `json:"passwordEntries"`
	UserSettings           Settings           `json:"userSettings"`
	MasterPasswordDataHash *string            `json:"masterPasswordDataHash"`
	MekDataHash            *string            `json:"mekDataHash"`
	PasswordEntriesHash    *string            `json:"passwordEntriesHash"`
	KDFIterations          int                `json:"kdfIterations,omitempty"`
}

// Document returns a deep copy of the store in its persisted shape.
func (s *Store) Document() Document {
	doc := Document{
		Version:                DocumentVersion,
		MasterPasswordData:     s.master.Clone(),
		MekData:                s.keyWrap.Clone(),
		PasswordEntries:        cloneEntries(s.entries),
		UserSettings:           s.settings,
		MasterPasswordDataHash: cloneString(s.digests.Master),
		MekDataHash:            cloneString(s.digests.KeyWrap),
		PasswordEntriesHash:    cloneString(s.digests.Entries),
		KDFIterations:          s.crypto.IterationCount(),
	}
	return doc
}

// FromDocument rebuilds a Store from its persisted shape. Stored digests are
// taken as-is so VerifyIntegrity can compare them; they are not recomputed.
// The KDF iteration count always comes from the document, never from
// WithIterations; documents written without one use DefaultIterations.
func FromDocument(doc Document, opts ...Option) (*Store, error) {
	if doc.Version > DocumentVersion {
		return nil, fmt.Errorf("%w: unsupported document version %d", ErrSerializationFailed, doc.Version)
	}
	if (doc.MasterPasswordData == nil) != (doc.MekData == nil) {
		return nil, fmt.Errorf("%w: master password data and mek data must be present together", ErrSerializationFailed)
	}

	seen := make(map[string]struct{}, len(doc.PasswordEntries))
	for _, e := range doc.PasswordEntries {
		if e.ID == "" {
			return nil, fmt.Errorf("%w: entry without id", ErrSerializationFailed)
		}
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate entry id %s", ErrSerializationFailed, e.ID)
		}
		seen[e.ID] = struct{}{}
	}

	s := newStore(opts)
	s.crypto = krypto.NewCryptographer(doc.KDFIterations)
	s.master = doc.MasterPasswordData.Clone()
	s.keyWrap = doc.MekData.Clone()
	s.entries = cloneEntries(doc.PasswordEntries)
	s.settings = doc.UserSettings
	s.digests = Digests{
		Master:  cloneString(doc.MasterPasswordDataHash),
		KeyWrap: cloneString(doc.MekDataHash),
		Entries: cloneString(doc.PasswordEntriesHash),
	}
	return s, nil
}
