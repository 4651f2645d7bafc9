// Package evm wraps the go-ethereum primitives the wallet needs: address
// handling, HD key derivation, transaction building and signing, ERC-20
// call data and message signatures.
package evm

import (
	"encoding/hex"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"

	walleterr "github.com/mrz1836/evmwallet/pkg/errors"
)

//nolint:gochecknoglobals // compiled once
var lowerAddressRegex = regexp.MustCompile(`^0x[0-9a-f]{40}$`)

// ValidateAddress checks a lower-case address. Mixed-case input is rejected;
// callers lower-case first.
func ValidateAddress(address string) error {
	if !lowerAddressRegex.MatchString(address) {
		return walleterr.WithDetails(walleterr.ErrInvalidAddress, map[string]string{
			"address": address,
		})
	}
	return nil
}

// NormalizeAddress lower-cases and validates an address.
func NormalizeAddress(address string) (string, error) {
	lower := strings.ToLower(strings.TrimSpace(address))
	if err := ValidateAddress(lower); err != nil {
		return "", err
	}
	return lower, nil
}

// ToChecksumAddress converts an address to EIP-55 checksum format.
// If the input is invalid, it returns the original input unchanged.
func ToChecksumAddress(address string) string {
	addr := strings.ToLower(address)
	if ValidateAddress(addr) != nil {
		return address
	}
	addr = addr[2:]

	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(addr))
	hash := hex.EncodeToString(hasher.Sum(nil))

	result := make([]byte, 42)
	result[0] = '0'
	result[1] = 'x'
	for i := 0; i < 40; i++ {
		c := addr[i]
		if hash[i] >= '8' && c >= 'a' && c <= 'f' {
			result[i+2] = c - 32
		} else {
			result[i+2] = c
		}
	}
	return string(result)
}
