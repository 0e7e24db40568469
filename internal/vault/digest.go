package vault

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/Hussein-Mazeh/PasswordVault/auth"
)

// Digests are hex SHA-256 sums of the canonical JSON encoding of the master
// record, the key wrap and the entry list. They are stored next to the data
// they cover and carry no secret, so they catch corruption and inconsistent
// writes but not an attacker who rewrites the whole document.
type Digests struct {
	Master  *string
	KeyWrap *string
	Entries *string
}

func computeDigests(master *auth.MasterRecord, kw *KeyWrap, entries []Entry) (Digests, error) {
	if entries == nil {
		entries = []Entry{}
	}

	m, err := digestOf(master)
	if err != nil {
		return Digests{}, err
	}
	k, err := digestOf(kw)
	if err != nil {
		return Digests{}, err
	}
	e, err := digestOf(entries)
	if err != nil {
		return Digests{}, err
	}
	return Digests{Master: &m, KeyWrap: &k, Entries: &e}, nil
}

func digestOf(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func sameDigest(stored, computed *string) bool {
	return stored != nil && computed != nil && *stored == *computed
}

func (d Digests) clone() Digests {
	return Digests{
		Master:  cloneString(d.Master),
		KeyWrap: cloneString(d.KeyWrap),
		Entries: cloneString(d.Entries),
	}
}
