package wallet

import (
	"context"
	"math/big"

	"github.com/mrz1836/evmwallet/internal/evm"
	"github.com/mrz1836/evmwallet/pkg/amount"
	walleterr "github.com/mrz1836/evmwallet/pkg/errors"
)

// TxRequest is one transfer the caller wants to make.
type TxRequest struct {
	Address  string
	Amount   amount.Quantity
	GasLimit uint64
}

// ValidateAddress checks a destination address. The wallet's own address
// is rejected.
func (w *Wallet) ValidateAddress(address string) error {
	own, err := w.ready()
	if err != nil {
		return err
	}
	lower, err := evm.NormalizeAddress(address)
	if err != nil {
		return err
	}
	if lower == own {
		return walleterr.ErrDestinationEqualsSource
	}
	return nil
}

// ValidateGasLimit rejects a zero gas limit.
func (w *Wallet) ValidateGasLimit(gasLimit uint64) error {
	if gasLimit == 0 {
		return walleterr.ErrGasLimitInvalid
	}
	return nil
}

// ValidateAmount checks that req.Amount can be sent. In order it rejects
// amounts below dust, token transfers whose fee the coin balance cannot
// cover, and amounts above the confirmed maximum. The last case reports
// ErrBigAmountConfirmationPending when unconfirmed funds would suffice.
func (w *Wallet) ValidateAmount(ctx context.Context, req TxRequest) error {
	if _, err := w.ready(); err != nil {
		return err
	}
	value := req.Amount.Value()

	if value.Cmp(dust) < 0 {
		return walleterr.WithQuantity(walleterr.ErrSmallAmount, w.quantity(dust))
	}

	token, err := w.isToken()
	if err != nil {
		return err
	}
	if token {
		minerFee, err := w.fees.MinerFee(ctx, req.GasLimit, true)
		if err != nil {
			return err
		}
		if minerFee.Cmp(w.snapshot().coin) > 0 {
			return walleterr.WithQuantity(walleterr.ErrInsufficientCoinForFee, w.feeQuantity(minerFee))
		}
	}

	return w.checkMax(value, func(unconfirmed bool) (*big.Int, error) {
		return w.maxAmount(ctx, req.GasLimit, unconfirmed)
	})
}

// checkMax fails when value exceeds the confirmed maximum.
func (w *Wallet) checkMax(value *big.Int, maxOf func(unconfirmed bool) (*big.Int, error)) error {
	confirmedMax, err := maxOf(false)
	if err != nil {
		return err
	}
	if value.Cmp(confirmedMax) <= 0 {
		return nil
	}

	unconfirmedMax, err := maxOf(true)
	if err != nil {
		return err
	}
	// Strict: an amount equal to the unconfirmed maximum is BigAmount.
	if value.Cmp(unconfirmedMax) < 0 {
		return walleterr.WithQuantity(walleterr.ErrBigAmountConfirmationPending, w.quantity(confirmedMax))
	}
	return walleterr.WithQuantity(walleterr.ErrBigAmount, w.quantity(confirmedMax))
}

// EstimateTransactionFee returns the miner fee of req, in coin decimals for
// coin wallets and platform decimals for token wallets.
func (w *Wallet) EstimateTransactionFee(ctx context.Context, req TxRequest) (amount.Quantity, error) {
	token, err := w.isToken()
	if err != nil {
		return amount.Quantity{}, err
	}
	minerFee, err := w.fees.MinerFee(ctx, req.GasLimit, token)
	if err != nil {
		return amount.Quantity{}, err
	}
	return w.feeQuantity(minerFee), nil
}

func (w *Wallet) validateRequest(ctx context.Context, req TxRequest) error {
	if err := w.ValidateAddress(req.Address); err != nil {
		return err
	}
	if err := w.ValidateGasLimit(req.GasLimit); err != nil {
		return err
	}
	return w.ValidateAmount(ctx, req)
}
