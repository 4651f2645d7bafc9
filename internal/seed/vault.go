package seed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"filippo.io/age"

	"github.com/mrz1836/evmwallet/internal/fileutil"
	walleterr "github.com/mrz1836/evmwallet/pkg/errors"
)

// VaultFile is the name of the encrypted mnemonic under the home directory.
const VaultFile = "seed.age"

// VaultPath returns the vault location under home.
func VaultPath(home string) string {
	return filepath.Join(home, VaultFile)
}

// Encrypt encrypts plaintext to a passphrase recipient.
func Encrypt(plaintext []byte, passphrase string) ([]byte, error) {
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt recipient: %w", err)
	}

	buf := &bytes.Buffer{}
	w, err := age.Encrypt(buf, recipient)
	if err != nil {
		return nil, fmt.Errorf("initializing encryption: %w", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		return nil, fmt.Errorf("writing encrypted data: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing encryption: %w", err)
	}
	return buf.Bytes(), nil
}

// Decrypt decrypts ciphertext into secure memory. A wrong passphrase or a
// damaged file reports ErrDecryptionFailed.
func Decrypt(ciphertext []byte, passphrase string) (*SecureBytes, error) {
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt identity: %w", err)
	}

	r, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		return nil, walleterr.Wrap(walleterr.ErrDecryptionFailed, "opening vault")
	}
	plaintext, err := io.ReadAll(r)
	defer Zero(plaintext)
	if err != nil {
		return nil, walleterr.Wrap(walleterr.ErrDecryptionFailed, "reading vault")
	}
	return SecureBytesFromSlice(plaintext), nil
}

// WriteVault validates mnemonic and stores it encrypted at path with mode
// 0600.
func WriteVault(path, mnemonic, passphrase string) error {
	if err := Validate(mnemonic); err != nil {
		return err
	}
	normalized := []byte(Normalize(mnemonic))
	defer Zero(normalized)

	data, err := Encrypt(normalized, passphrase)
	if err != nil {
		return err
	}
	return fileutil.WriteAtomic(path, data, 0o600)
}

// ReadVault decrypts the mnemonic stored at path.
func ReadVault(path, passphrase string) (*SecureBytes, error) {
	// #nosec G304 -- vault path comes from the configured home directory
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, walleterr.WithDetails(walleterr.ErrNotFound, map[string]string{"path": path})
		}
		return nil, fmt.Errorf("reading vault: %w", err)
	}
	return Decrypt(data, passphrase)
}

// VaultExists reports whether a vault file is present at path.
func VaultExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
