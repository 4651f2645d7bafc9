package evm

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	walleterr "github.com/mrz1836/evmwallet/pkg/errors"
)

// ErrInvalidTransaction is returned when transaction fields are incomplete.
var ErrInvalidTransaction = &walleterr.WalletError{
	Code:     "INVALID_TRANSACTION",
	Message:  "invalid transaction",
	ExitCode: walleterr.ExitInput,
}

// TxParams are the signable fields of a transaction. Setting MaxFeePerGas
// selects an EIP-1559 transaction, otherwise GasPrice builds a legacy one.
type TxParams struct {
	To                   string
	Value                *big.Int
	Data                 []byte
	Nonce                uint64
	GasLimit             uint64
	GasPrice             *big.Int
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
	ChainID              *big.Int
}

// IsDynamicFee reports whether p describes an EIP-1559 transaction.
func (p *TxParams) IsDynamicFee() bool {
	return p.MaxFeePerGas != nil
}

// Validate checks that the transaction parameters are complete.
func (p *TxParams) Validate() error {
	if _, err := NormalizeAddress(p.To); err != nil {
		return err
	}

	reason := ""
	switch {
	case p.ChainID == nil || p.ChainID.Sign() <= 0:
		reason = "chain id is required"
	case p.GasLimit == 0:
		return walleterr.ErrGasLimitInvalid
	case p.Value != nil && p.Value.Sign() < 0:
		reason = "value cannot be negative"
	case p.IsDynamicFee() && p.MaxPriorityFeePerGas == nil:
		reason = "priority fee is required"
	case p.IsDynamicFee() && p.MaxPriorityFeePerGas.Cmp(p.MaxFeePerGas) > 0:
		reason = "priority fee exceeds max fee"
	case !p.IsDynamicFee() && p.GasPrice == nil:
		reason = "gas price is required"
	}
	if reason != "" {
		return walleterr.WithDetails(ErrInvalidTransaction, map[string]string{"reason": reason})
	}
	return nil
}

// FeePerGas returns the worst-case price paid per gas unit.
func (p *TxParams) FeePerGas() *big.Int {
	if p.IsDynamicFee() {
		return p.MaxFeePerGas
	}
	return p.GasPrice
}

// Fee returns the worst-case fee: gas limit times fee per gas.
func (p *TxParams) Fee() *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(p.GasLimit), p.FeePerGas())
}

// Build creates the unsigned go-ethereum transaction.
func (p *TxParams) Build() (*types.Transaction, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	to := common.HexToAddress(p.To)
	value := p.Value
	if value == nil {
		value = new(big.Int)
	}

	if p.IsDynamicFee() {
		return types.NewTx(&types.DynamicFeeTx{
			ChainID:   p.ChainID,
			Nonce:     p.Nonce,
			GasTipCap: p.MaxPriorityFeePerGas,
			GasFeeCap: p.MaxFeePerGas,
			Gas:       p.GasLimit,
			To:        &to,
			Value:     value,
			Data:      p.Data,
		}), nil
	}

	return types.NewTx(&types.LegacyTx{
		Nonce:    p.Nonce,
		GasPrice: p.GasPrice,
		Gas:      p.GasLimit,
		To:       &to,
		Value:    value,
		Data:     p.Data,
	}), nil
}

// Signed is a signed transaction ready for submission. It is submitted once.
type Signed struct {
	Params TxParams
	Raw    string // 0x-prefixed canonical encoding
	Hash   string
	Fee    *big.Int
}

// SignTransaction builds and signs p with key. Legacy transactions use
// EIP-155 replay protection.
func SignTransaction(p *TxParams, key *ecdsa.PrivateKey) (*Signed, error) {
	if key == nil {
		return nil, walleterr.ErrInvalidPrivateKey
	}

	tx, err := p.Build()
	if err != nil {
		return nil, err
	}

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(p.ChainID), key)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}

	raw, err := signed.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encoding transaction: %w", err)
	}

	return &Signed{
		Params: *p,
		Raw:    hexutil.Encode(raw),
		Hash:   signed.Hash().Hex(),
		Fee:    p.Fee(),
	}, nil
}

// DecodeSigned parses a raw signed transaction, returning it and its sender.
func DecodeSigned(raw string) (*types.Transaction, common.Address, error) {
	data, err := hexutil.Decode(raw)
	if err != nil {
		return nil, common.Address{}, fmt.Errorf("decoding raw transaction: %w", err)
	}

	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(data); err != nil {
		return nil, common.Address{}, fmt.Errorf("decoding raw transaction: %w", err)
	}

	from, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
	if err != nil {
		return nil, common.Address{}, fmt.Errorf("recovering sender: %w", err)
	}
	return tx, from, nil
}
