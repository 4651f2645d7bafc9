package wallet

import (
	"crypto/ecdsa"
	"math/big"
	"strings"

	"github.com/mrz1836/evmwallet/internal/evm"
	"github.com/mrz1836/evmwallet/internal/history"
	walleterr "github.com/mrz1836/evmwallet/pkg/errors"
)

// PublicKey is the non-secret record that reopens a wallet without a seed.
type PublicKey struct {
	Settings Settings `json:"settings"`
	Data     string   `json:"data"` // EIP-55 address
}

// PrivateKey is an exported key with its address.
type PrivateKey struct {
	Address    string `json:"address"`
	PrivateKey string `json:"privatekey"`
}

// Create initializes the wallet from a BIP-39 seed.
func (w *Wallet) Create(seed []byte) error {
	if len(seed) == 0 {
		return walleterr.WithDetails(walleterr.ErrInvalidInput, map[string]string{"reason": "seed is required"})
	}
	w.setState(StateInitializing)

	key, err := w.privateKey(seed)
	if err != nil {
		w.setState(StateCreated)
		return err
	}
	w.setAddress(evm.AddressOf(key))
	w.restore()
	w.setState(StateInitialized)
	return nil
}

// Open initializes the wallet from a public key record. When the record
// was made with different settings the wallet needs its seed again and the
// state becomes NeedInitialization.
func (w *Wallet) Open(pk PublicKey) error {
	w.setState(StateInitializing)

	if pk.Settings.BIP44 != w.settings.BIP44 {
		w.setState(StateNeedInitialization)
		return nil
	}
	if _, err := evm.NormalizeAddress(pk.Data); err != nil {
		w.setState(StateCreated)
		return err
	}

	w.setAddress(evm.ToChecksumAddress(pk.Data))
	w.restore()
	w.setState(StateInitialized)
	return nil
}

func (w *Wallet) setAddress(checksum string) {
	w.mu.Lock()
	w.checksum = checksum
	w.address = strings.ToLower(checksum)
	w.transformer = history.NewTransformer(w.profile, checksum, w.asset.Decimals, w.platformDecimals)
	w.mu.Unlock()
}

// restore loads the cached kind balance from storage.
func (w *Wallet) restore() {
	cached, ok := w.storage.Get(balanceKey)
	if !ok {
		return
	}
	v, ok := new(big.Int).SetString(cached, 10)
	if !ok || v.Sign() < 0 {
		w.log.Debug().Msg("ignoring malformed cached balance")
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.asset.Kind.(type) {
	case Coin:
		w.bal.coin = v
	case Token:
		w.bal.token = v
	}
}

// PublicKey returns the record Open accepts.
func (w *Wallet) PublicKey() PublicKey {
	return PublicKey{Settings: w.settings, Data: w.Address()}
}

// PrivateKeys exports the key derived from seed.
func (w *Wallet) PrivateKeys(seed []byte) ([]PrivateKey, error) {
	key, err := w.privateKey(seed)
	if err != nil {
		return nil, err
	}
	return []PrivateKey{{Address: evm.AddressOf(key), PrivateKey: evm.PrivateKeyHex(key)}}, nil
}

// SignMessage signs msg as an EIP-191 personal message.
func (w *Wallet) SignMessage(seed, msg []byte) (string, error) {
	key, err := w.signingKey(seed)
	if err != nil {
		return "", err
	}
	return evm.SignMessage(key, msg)
}

// SignTypedData signs an EIP-712 document.
func (w *Wallet) SignTypedData(seed, typedData []byte) (string, error) {
	key, err := w.signingKey(seed)
	if err != nil {
		return "", err
	}
	return evm.SignTypedData(key, typedData)
}

func (w *Wallet) privateKey(seed []byte) (*ecdsa.PrivateKey, error) {
	raw, err := evm.DerivePrivateKey(seed, w.settings.BIP44, w.profile.Platform)
	if err != nil {
		if walleterr.Is(err, evm.ErrInvalidPath) {
			return nil, err
		}
		return nil, walleterr.WithDetails(walleterr.ErrInvalidInput, map[string]string{"reason": err.Error()})
	}
	defer evm.ZeroBytes(raw)
	return evm.ToECDSA(raw)
}

// signingKey derives the key and checks it controls the wallet address.
func (w *Wallet) signingKey(seed []byte) (*ecdsa.PrivateKey, error) {
	address, err := w.ready()
	if err != nil {
		return nil, err
	}
	key, err := w.privateKey(seed)
	if err != nil {
		return nil, err
	}
	if strings.ToLower(evm.AddressOf(key)) != address {
		return nil, walleterr.WithDetails(walleterr.ErrAuthentication, map[string]string{
			"reason": "seed does not match wallet address",
		})
	}
	return key, nil
}
