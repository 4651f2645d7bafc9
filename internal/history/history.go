// Package history turns raw indexer transaction records into the wallet's
// normalized transaction view.
package history

import (
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mrz1836/evmwallet/internal/indexer"
	"github.com/mrz1836/evmwallet/internal/network"
	"github.com/mrz1836/evmwallet/pkg/amount"
)

// Status is the derived state of a transaction.
type Status int

// Transaction statuses.
const (
	StatusPending Status = iota
	StatusSuccess
	StatusFailed
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Transaction is a normalized history entry. The gas and nonce fields are
// kept so a pending outgoing transaction can be replaced.
type Transaction struct {
	ID               string
	From             string
	To               string
	Amount           amount.Quantity
	Fee              amount.Quantity
	Incoming         bool
	Token            bool
	Timestamp        time.Time
	Confirmations    int64
	MinConfirmations int64
	Status           Status
	RBF              bool
	URL              string

	GasLimit             uint64
	GasPrice             *big.Int
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
	Nonce                uint64
	Input                string
}

// FeePerGas returns GasPrice, or MaxFeePerGas when no gas price was set.
func (t *Transaction) FeePerGas() *big.Int {
	if t.GasPrice != nil {
		return t.GasPrice
	}
	return t.MaxFeePerGas
}

// MultiplyGasPrice returns trunc(price*factor). When truncation leaves the
// price unchanged it returns price+1, so a bump always increases.
func MultiplyGasPrice(price *big.Int, factor decimal.Decimal) *big.Int {
	if price == nil {
		return nil
	}
	bumped := decimal.NewFromBigInt(price, 0).Mul(factor).Truncate(0).BigInt()
	if bumped.Cmp(price) == 0 {
		return bumped.Add(bumped, big.NewInt(1))
	}
	return bumped
}

// Transformer maps raw records for one wallet and asset.
type Transformer struct {
	profile          network.Profile
	wallet           string
	decimals         int
	platformDecimals int
}

// NewTransformer creates a transformer. decimals is the asset scale and
// platformDecimals the scale of the fee currency.
func NewTransformer(profile network.Profile, walletAddress string, decimals, platformDecimals int) *Transformer {
	return &Transformer{
		profile:          profile,
		wallet:           strings.ToLower(walletAddress),
		decimals:         decimals,
		platformDecimals: platformDecimals,
	}
}

// TransformAll maps raws preserving order.
func (t *Transformer) TransformAll(raws []indexer.Tx) []*Transaction {
	out := make([]*Transaction, 0, len(raws))
	for i := range raws {
		out = append(out, t.Transform(&raws[i]))
	}
	return out
}

// Transform maps one raw record.
func (t *Transformer) Transform(raw *indexer.Tx) *Transaction {
	isToken := raw.IsToken()
	from := strings.ToLower(raw.From)
	to := strings.ToLower(raw.To)
	incoming := to == t.wallet && from != to

	tx := &Transaction{
		ID:                   raw.Identifier(),
		From:                 from,
		To:                   to,
		Amount:               amount.New(raw.Value.Big(), t.decimals),
		Incoming:             incoming,
		Token:                isToken,
		Timestamp:            time.Unix(raw.Timestamp, 0).UTC(),
		Confirmations:        raw.Confirmations,
		MinConfirmations:     t.profile.MinConf,
		GasPrice:             optional(raw.GasPrice),
		MaxFeePerGas:         optional(raw.MaxFeePerGas),
		MaxPriorityFeePerGas: optional(raw.MaxPriorityFeePerGas),
		Input:                raw.Input,
	}
	if raw.Gas.Valid() && raw.Gas.Int.IsUint64() {
		tx.GasLimit = raw.Gas.Int.Uint64()
	}
	if raw.Nonce.Valid() && raw.Nonce.Int.IsUint64() {
		tx.Nonce = raw.Nonce.Int.Uint64()
	}
	tx.URL = t.profile.TransactionURL(tx.ID)

	switch {
	case raw.Confirmations < t.profile.MinConf:
		tx.Status = StatusPending
	case isToken || !raw.Failed():
		tx.Status = StatusSuccess
	default:
		tx.Status = StatusFailed
	}

	if !incoming && raw.Confirmations == 0 {
		bumped := MultiplyGasPrice(tx.FeePerGas(), t.profile.RBFFactor)
		tx.RBF = bumped != nil && t.profile.MaxGasPrice != nil && bumped.Cmp(t.profile.MaxGasPrice) < 0
	}

	if isToken {
		tx.Fee = amount.Zero(t.platformDecimals)
	} else {
		gas := raw.GasUsed
		if !gas.Valid() {
			gas = raw.Gas
		}
		fee := new(big.Int)
		if perGas := tx.FeePerGas(); perGas != nil {
			fee.Mul(gas.Big(), perGas)
		}
		tx.Fee = amount.New(fee, t.decimals)
	}

	return tx
}

func optional(n indexer.Number) *big.Int {
	if !n.Valid() {
		return nil
	}
	return n.Big()
}
