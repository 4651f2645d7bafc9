package evm

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	walleterr "github.com/mrz1836/evmwallet/pkg/errors"
)

// SignMessage signs msg with the EIP-191 personal_sign prefix and returns
// the 65-byte signature with V in {27, 28} as 0x-prefixed hex.
func SignMessage(key *ecdsa.PrivateKey, msg []byte) (string, error) {
	if key == nil {
		return "", walleterr.ErrInvalidPrivateKey
	}
	return sign(key, accounts.TextHash(msg))
}

// SignTypedData signs an EIP-712 typed data document given as JSON.
func SignTypedData(key *ecdsa.PrivateKey, typedJSON []byte) (string, error) {
	if key == nil {
		return "", walleterr.ErrInvalidPrivateKey
	}

	var typed apitypes.TypedData
	if err := json.Unmarshal(typedJSON, &typed); err != nil {
		return "", walleterr.WithDetails(walleterr.ErrInvalidInput, map[string]string{
			"reason": "typed data is not valid JSON",
		})
	}

	hash, _, err := apitypes.TypedDataAndHash(typed)
	if err != nil {
		return "", fmt.Errorf("hashing typed data: %w", err)
	}
	return sign(key, hash)
}

// RecoverMessageSigner returns the address that produced sig over msg.
func RecoverMessageSigner(msg []byte, sig string) (string, error) {
	raw, err := hexutil.Decode(sig)
	if err != nil || len(raw) != crypto.SignatureLength {
		return "", walleterr.WithDetails(walleterr.ErrInvalidInput, map[string]string{
			"reason": "malformed signature",
		})
	}
	if raw[crypto.RecoveryIDOffset] >= 27 {
		raw[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash(msg), raw)
	if err != nil {
		return "", fmt.Errorf("recovering signer: %w", err)
	}
	return crypto.PubkeyToAddress(*pub).Hex(), nil
}

func sign(key *ecdsa.PrivateKey, hash []byte) (string, error) {
	sig, err := crypto.Sign(hash, key)
	if err != nil {
		return "", fmt.Errorf("signing: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig), nil
}
