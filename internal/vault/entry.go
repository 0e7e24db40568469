package vault

import (
	"time"

	"github.com/google/uuid"

	"github.com/Hussein-Mazeh/PasswordVault/krypto"
)

// Entry is a secret record as stored: the password field is an envelope keyed
// on the MEK, every other field is plain metadata. Identity is ID alone.
type Entry struct {
	ID           string             `json:"id"`
	Title        string             `json:"title"`
	Username     *string            `json:"username"`
	Password     *krypto.SecureData `json:"password"`
	URL          *string            `json:"url"`
	Notes        *string            `json:"notes"`
	CreationDate string             `json:"creationDate"`
	Category     *string            `json:"category"`
	Favorite     bool               `json:"favorite"`
}

// DecryptedEntry is the working projection of an Entry with the password revealed.
type DecryptedEntry struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Username     *string `json:"username"`
	Password     *string `json:"password"`
	URL          *string `json:"url"`
	Notes        *string `json:"notes"`
	CreationDate string  `json:"creationDate"`
	Category     *string `json:"category"`
	Favorite     bool    `json:"favorite"`
}

// NewDecryptedEntry returns a working entry with a fresh id and creation time.
func NewDecryptedEntry(title string) DecryptedEntry {
	return DecryptedEntry{
		ID:           uuid.NewString(),
		Title:        title,
		CreationDate: time.Now().UTC().Format(time.RFC3339),
	}
}

// SameID reports whether two entries denote the same record.
func (e Entry) SameID(other Entry) bool { return e.ID == other.ID }

// Clone returns a deep copy of the entry.
func (e Entry) Clone() Entry {
	out := e
	out.Username = cloneString(e.Username)
	out.URL = cloneString(e.URL)
	out.Notes = cloneString(e.Notes)
	out.Category = cloneString(e.Category)
	if e.Password != nil {
		sd := e.Password.Clone()
		out.Password = &sd
	}
	return out
}

// DisplayName returns title, username and url with absent fields as "".
func (d DecryptedEntry) DisplayName() [3]string {
	return [3]string{d.Title, deref(d.Username), deref(d.URL)}
}

// Wipe drops the revealed password from the entry.
func (d *DecryptedEntry) Wipe() {
	d.Password = nil
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
