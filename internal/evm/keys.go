package evm

import (
	"crypto/ecdsa"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip32"

	"github.com/mrz1836/evmwallet/internal/network"
	walleterr "github.com/mrz1836/evmwallet/pkg/errors"
)

// ErrInvalidPath is returned for a malformed derivation path.
var ErrInvalidPath = &walleterr.WalletError{
	Code:     "INVALID_DERIVATION_PATH",
	Message:  "invalid derivation path",
	ExitCode: walleterr.ExitInput,
}

// ParsePath converts "m/44'/60'/0'" into child indexes. Hardened components
// end in ' or h.
func ParsePath(path string) ([]uint32, error) {
	parts := strings.Split(strings.TrimSpace(path), "/")
	if len(parts) == 0 || parts[0] != "m" {
		return nil, walleterr.WithDetails(ErrInvalidPath, map[string]string{"path": path})
	}

	indexes := make([]uint32, 0, len(parts)-1)
	for _, part := range parts[1:] {
		hardened := strings.HasSuffix(part, "'") || strings.HasSuffix(part, "h")
		part = strings.TrimRight(part, "'h")

		n, err := strconv.ParseUint(part, 10, 31)
		if err != nil {
			return nil, walleterr.WithDetails(ErrInvalidPath, map[string]string{"path": path})
		}
		idx := uint32(n)
		if hardened {
			idx += bip32.FirstHardenedChild
		}
		indexes = append(indexes, idx)
	}
	return indexes, nil
}

// DerivePrivateKey walks path from the BIP-32 master key of seed.
// On ethereum and ethereum-classic the bare "m" path derives from the hex
// string of the seed, matching keys created by earlier wallet versions.
func DerivePrivateKey(seed []byte, path string, platform network.Platform) ([]byte, error) {
	indexes, err := ParsePath(path)
	if err != nil {
		return nil, err
	}

	masterSeed := seed
	if len(indexes) == 0 && platform.IsLegacyMasterPath() {
		masterSeed = []byte(hex.EncodeToString(seed))
	}

	key, err := bip32.NewMasterKey(masterSeed)
	if err != nil {
		return nil, err
	}
	for _, idx := range indexes {
		if key, err = key.NewChildKey(idx); err != nil {
			return nil, err
		}
	}
	return common.LeftPadBytes(key.Key, 32), nil
}

// ParsePrivateKey decodes a hex private key with or without a 0x prefix.
func ParsePrivateKey(s string) (*ecdsa.PrivateKey, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, walleterr.Wrap(walleterr.ErrInvalidPrivateKey, "decoding private key")
	}
	defer ZeroBytes(raw)

	key, err := crypto.ToECDSA(raw)
	if err != nil {
		return nil, walleterr.Wrap(walleterr.ErrInvalidPrivateKey, "parsing private key")
	}
	return key, nil
}

// ToECDSA converts raw private key bytes.
func ToECDSA(raw []byte) (*ecdsa.PrivateKey, error) {
	key, err := crypto.ToECDSA(raw)
	if err != nil {
		return nil, walleterr.Wrap(walleterr.ErrInvalidPrivateKey, "parsing private key")
	}
	return key, nil
}

// AddressOf returns the EIP-55 address of key.
func AddressOf(key *ecdsa.PrivateKey) string {
	return crypto.PubkeyToAddress(key.PublicKey).Hex()
}

// PrivateKeyHex returns the hex encoding of key without prefix.
func PrivateKeyHex(key *ecdsa.PrivateKey) string {
	return hex.EncodeToString(crypto.FromECDSA(key))
}

// ZeroBytes overwrites b with zeros.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
