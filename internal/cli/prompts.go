package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/mrz1836/evmwallet/internal/seed"
	walleterr "github.com/mrz1836/evmwallet/pkg/errors"
)

// minPassphraseLength is the shortest accepted vault passphrase.
const minPassphraseLength = 8

// Prompt hooks, replaced in tests.
//
//nolint:gochecknoglobals // Swappable for tests
var (
	promptSecretFn  = promptSecret
	promptConfirmFn = promptConfirm
)

// promptSecret prompts for a value with hidden input.
// The caller is responsible for zeroing the returned bytes after use.
func promptSecret(prompt string) ([]byte, error) {
	out(os.Stderr, "%s", prompt)

	secret, err := term.ReadPassword(syscall.Stdin)
	outln(os.Stderr) // Add newline after hidden input

	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	return secret, nil
}

// promptConfirm asks a yes/no question, defaulting to no.
func promptConfirm(question string) bool {
	out(os.Stderr, "%s [y/N]: ", question)

	response, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && response == "" {
		return false
	}

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}

// promptMnemonic reads and validates a mnemonic. Mistyped words are
// reported with suggestions.
func promptMnemonic() (*seed.SecureBytes, error) {
	raw, err := promptSecretFn("Enter mnemonic (words separated by spaces): ")
	if err != nil {
		return nil, err
	}
	defer seed.Zero(raw)

	mnemonic := seed.Normalize(string(raw))
	if err := seed.Validate(mnemonic); err != nil {
		return nil, err
	}
	return seed.SecureBytesFromSlice([]byte(mnemonic)), nil
}

// promptNewPassphrase prompts for a vault passphrase with confirmation.
func promptNewPassphrase() (string, error) {
	passphrase, err := promptSecretFn("Enter vault passphrase: ")
	if err != nil {
		return "", err
	}
	defer seed.Zero(passphrase)

	if len(passphrase) < minPassphraseLength {
		return "", walleterr.WithSuggestion(
			walleterr.ErrInvalidInput,
			fmt.Sprintf("passphrase must be at least %d characters", minPassphraseLength),
		)
	}

	confirm, err := promptSecretFn("Confirm passphrase: ")
	if err != nil {
		return "", err
	}
	defer seed.Zero(confirm)

	if string(passphrase) != string(confirm) {
		return "", walleterr.WithSuggestion(walleterr.ErrInvalidInput, "passphrases do not match")
	}

	return string(passphrase), nil
}
