package wallet

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"

	"github.com/mrz1836/evmwallet/internal/evm"
	"github.com/mrz1836/evmwallet/internal/history"
	"github.com/mrz1836/evmwallet/internal/metrics"
	"github.com/mrz1836/evmwallet/pkg/amount"
	walleterr "github.com/mrz1836/evmwallet/pkg/errors"
)

// Replacement is the cost of speeding up a pending transaction.
type Replacement struct {
	Percent decimal.Decimal // fee-per-gas increase, e.g. 0.2
	Fee     amount.Quantity // additional fee over the original
}

// EstimateReplacement prices a replacement of tx bumped by the profile RBF
// factor. It fails with ErrBigAmount when confirmed coin cannot cover the
// additional fee.
func (w *Wallet) EstimateReplacement(ctx context.Context, tx *history.Transaction) (Replacement, error) {
	if _, err := w.replaceable(tx); err != nil {
		return Replacement{}, err
	}

	extra, err := w.replacementFee(ctx, tx)
	if err != nil {
		return Replacement{}, err
	}
	b := w.snapshot()
	available := amount.Min(b.coin, b.coinConfirmed)
	if available.Cmp(extra) < 0 {
		return Replacement{}, walleterr.WithQuantity(walleterr.ErrBigAmount, w.feeQuantity(available))
	}

	return Replacement{
		Percent: w.profile.RBFFactor.Sub(decimal.NewFromInt(1)).Round(2),
		Fee:     w.feeQuantity(extra),
	}, nil
}

// CreateReplacementTransaction re-sends tx with the same nonce and bumped
// fee fields. The coin balance is debited by the fee difference.
func (w *Wallet) CreateReplacementTransaction(ctx context.Context, tx *history.Transaction, seed []byte) (res *SendResult, err error) {
	defer func() { metrics.Global.RecordWalletOp(err) }()

	if _, err = w.EstimateReplacement(ctx, tx); err != nil {
		return nil, err
	}
	key, err := w.signingKey(seed)
	if err != nil {
		return nil, err
	}

	params, err := w.replacementParams(tx)
	if err != nil {
		return nil, err
	}
	res, realized, err := w.broadcast(ctx, key, params, replacementCalldata(tx))
	if err != nil {
		return nil, err
	}

	diff := new(big.Int).Sub(realized, tx.Fee.Value())
	if diff.Sign() > 0 {
		w.mu.Lock()
		debit(&w.bal.coin, diff)
		w.mu.Unlock()
	}
	w.persist(ctx)

	return res, nil
}

// replaceable checks that tx is an outgoing transaction of this wallet
// with a known fee-per-gas.
func (w *Wallet) replaceable(tx *history.Transaction) (string, error) {
	address, err := w.ready()
	if err != nil {
		return "", err
	}
	if tx == nil {
		return "", walleterr.WithDetails(walleterr.ErrInvalidInput, map[string]string{"reason": "transaction is required"})
	}
	if strings.ToLower(tx.From) != address || tx.Incoming {
		return "", walleterr.WithDetails(walleterr.ErrInvalidInput, map[string]string{
			"reason": "transaction was not sent by this wallet",
		})
	}
	if tx.FeePerGas() == nil {
		return "", walleterr.WithDetails(walleterr.ErrInvalidInput, map[string]string{"reason": "transaction has no gas price"})
	}
	return address, nil
}

func (w *Wallet) replacementGasLimit(tx *history.Transaction) uint64 {
	if tx.GasLimit == 0 {
		return w.gasLimit
	}
	return tx.GasLimit
}

// replacementCalldata reports whether the replacement carries call data,
// which selects the L2 surcharge variant.
func replacementCalldata(tx *history.Transaction) bool {
	return tx.Token || (tx.Input != "" && tx.Input != "0x")
}

// replacementFee is bumped fee-per-gas times gas limit plus the L2
// surcharge, less the fee already paid.
func (w *Wallet) replacementFee(ctx context.Context, tx *history.Transaction) (*big.Int, error) {
	surcharge, err := w.fees.Surcharge(ctx, replacementCalldata(tx))
	if err != nil {
		return nil, err
	}
	bumped := history.MultiplyGasPrice(tx.FeePerGas(), w.profile.RBFFactor)
	total := new(big.Int).Mul(bumped, new(big.Int).SetUint64(w.replacementGasLimit(tx)))
	total.Add(total, surcharge)
	extra := total.Sub(total, tx.Fee.Value())
	if extra.Sign() < 0 {
		extra.SetInt64(0)
	}
	return extra, nil
}

// replacementParams rebuilds the payload of tx. Token records carry the
// recipient, so the transfer call is re-encoded against the token
// contract.
func (w *Wallet) replacementParams(tx *history.Transaction) (*evm.TxParams, error) {
	params := &evm.TxParams{
		To:       tx.To,
		Value:    tx.Amount.Value(),
		Nonce:    tx.Nonce,
		GasLimit: w.replacementGasLimit(tx),
		ChainID:  w.profile.ChainIDBig(),
	}

	if t, ok := w.asset.Kind.(Token); ok && tx.Token {
		data, err := evm.TransferData(tx.To, tx.Amount.Value())
		if err != nil {
			return nil, err
		}
		params.To = t.Address
		params.Value = new(big.Int)
		params.Data = data
	} else if input := tx.Input; input != "" && input != "0x" {
		data, err := hexutil.Decode(input)
		if err != nil {
			return nil, walleterr.WithDetails(walleterr.ErrInvalidInput, map[string]string{"reason": "malformed input data"})
		}
		params.Data = data
	}

	factor := w.profile.RBFFactor
	if tx.MaxFeePerGas != nil && tx.GasPrice == nil {
		priority := tx.MaxPriorityFeePerGas
		if priority == nil {
			priority = new(big.Int)
		}
		params.MaxFeePerGas = history.MultiplyGasPrice(tx.MaxFeePerGas, factor)
		params.MaxPriorityFeePerGas = history.MultiplyGasPrice(priority, factor)
	} else {
		params.GasPrice = history.MultiplyGasPrice(tx.GasPrice, factor)
	}
	return params, nil
}
