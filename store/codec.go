package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Hussein-Mazeh/PasswordVault/internal/vault"
)

// ErrNoVault reports that nothing has been persisted yet. It is an expected
// outcome on first run, not a failure.
var ErrNoVault = errors.New("no vault has been saved yet")

func encodeDocument(s *vault.Store) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil store", vault.ErrSerializationFailed)
	}
	data, err := json.MarshalIndent(s.Document(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: encode document: %w", vault.ErrSerializationFailed, err)
	}
	return data, nil
}

func decodeDocument(data []byte, opts []vault.Option) (*vault.Store, error) {
	var doc vault.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode document: %w", vault.ErrSerializationFailed, err)
	}
	return vault.FromDocument(doc, opts...)
}
