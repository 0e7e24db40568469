package vault

import (
	"fmt"

	"github.com/Hussein-Mazeh/PasswordVault/krypto"
)

// Protect seals a secret field using the MEK as key material. Each call runs the
// MEK through PBKDF2 with a new salt, so every field gets its own key and nonce.
func Protect(c krypto.Cryptographer, plaintext, mek []byte) (krypto.SecureData, error) {
	if len(mek) != MEKSize {
		return krypto.SecureData{}, fmt.Errorf("%w: invalid MEK length", ErrCryptoOperationFailed)
	}
	sd, err := c.Encrypt(plaintext, mek)
	if err != nil {
		return krypto.SecureData{}, fmt.Errorf("%w: protect field: %w", ErrCryptoOperationFailed, err)
	}
	return sd, nil
}

// Reveal opens a field sealed by Protect. The caller owns the returned bytes
// and should wipe them once done.
func Reveal(c krypto.Cryptographer, sd krypto.SecureData, mek []byte) ([]byte, error) {
	if len(mek) != MEKSize {
		return nil, fmt.Errorf("%w: invalid MEK length", ErrDecryptionFailed)
	}
	plaintext, err := c.Decrypt(sd, mek)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}
	return plaintext, nil
}

// Decrypt maps an at-rest entry to its working form. An absent password stays absent.
func (e Entry) Decrypt(c krypto.Cryptographer, mek []byte) (DecryptedEntry, error) {
	out := DecryptedEntry{
		ID:           e.ID,
		Title:        e.Title,
		Username:     cloneString(e.Username),
		URL:          cloneString(e.URL),
		Notes:        cloneString(e.Notes),
		CreationDate: e.CreationDate,
		Category:     cloneString(e.Category),
		Favorite:     e.Favorite,
	}
	if e.Password == nil {
		return out, nil
	}

	plain, err := Reveal(c, *e.Password, mek)
	if err != nil {
		return DecryptedEntry{}, fmt.Errorf("entry %s: %w", e.ID, err)
	}
	pw := string(plain)
	krypto.Wipe(plain)
	out.Password = &pw
	return out, nil
}

// Encrypt maps a working entry to its at-rest form. An absent password stays absent.
func (d DecryptedEntry) Encrypt(c krypto.Cryptographer, mek []byte) (Entry, error) {
	out := Entry{
		ID:           d.ID,
		Title:        d.Title,
		Username:     cloneString(d.Username),
		URL:          cloneString(d.URL),
		Notes:        cloneString(d.Notes),
		CreationDate: d.CreationDate,
		Category:     cloneString(d.Category),
		Favorite:     d.Favorite,
	}
	if d.Password == nil {
		return out, nil
	}

	plain := []byte(*d.Password)
	defer krypto.Wipe(plain)

	sd, err := Protect(c, plain, mek)
	if err != nil {
		return Entry{}, fmt.Errorf("entry %s: %w", d.ID, err)
	}
	out.Password = &sd
	return out, nil
}
