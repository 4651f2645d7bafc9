package wallet

import (
	"context"
	"math/big"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/evmwallet/internal/evm"
	"github.com/mrz1836/evmwallet/internal/history"
	"github.com/mrz1836/evmwallet/internal/network"
	"github.com/mrz1836/evmwallet/pkg/amount"
	walleterr "github.com/mrz1836/evmwallet/pkg/errors"
)

func pendingCoinTx() *history.Transaction {
	return &history.Transaction{
		ID:       "0xabc",
		From:     own(),
		To:       destination,
		Amount:   amount.New(big.NewInt(100_000_000_000_000_000), 18),
		Fee:      amount.New(big.NewInt(525_000_000_000_000), 18),
		GasLimit: network.CoinGasLimit,
		GasPrice: gwei(25),
		Nonce:    7,
		Input:    "0x",
		RBF:      true,
	}
}

func TestEstimateReplacement(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	node := newFakeNode()
	node.coin[own()] = bal("2000000000000000000", "2000000000000000000")
	w := loadedWallet(t, network.BinanceSmart, coinAsset(network.BinanceSmart), node)

	r, err := w.EstimateReplacement(ctx, pendingCoinTx())
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.2").Equal(r.Percent), r.Percent.String())
	assert.Equal(t, "105000000000000", r.Fee.Value().String())
}

func TestEstimateReplacement_Errors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("insufficient confirmed coin", func(t *testing.T) {
		t.Parallel()
		node := newFakeNode()
		node.coin[own()] = bal("2000000000000000000", "1000")
		w := loadedWallet(t, network.BinanceSmart, coinAsset(network.BinanceSmart), node)

		_, err := w.EstimateReplacement(ctx, pendingCoinTx())
		require.ErrorIs(t, err, walleterr.ErrBigAmount)
		requireQuantity(t, err, "1000")
	})

	t.Run("incoming", func(t *testing.T) {
		t.Parallel()
		w := loadedWallet(t, network.BinanceSmart, coinAsset(network.BinanceSmart), newFakeNode())
		tx := pendingCoinTx()
		tx.From, tx.To, tx.Incoming = destination, own(), true

		_, err := w.EstimateReplacement(ctx, tx)
		require.ErrorIs(t, err, walleterr.ErrInvalidInput)
	})

	t.Run("no gas price", func(t *testing.T) {
		t.Parallel()
		w := loadedWallet(t, network.BinanceSmart, coinAsset(network.BinanceSmart), newFakeNode())
		tx := pendingCoinTx()
		tx.GasPrice = nil

		_, err := w.EstimateReplacement(ctx, tx)
		require.ErrorIs(t, err, walleterr.ErrInvalidInput)
	})

	t.Run("nil", func(t *testing.T) {
		t.Parallel()
		w := loadedWallet(t, network.BinanceSmart, coinAsset(network.BinanceSmart), newFakeNode())
		_, err := w.EstimateReplacement(ctx, nil)
		require.ErrorIs(t, err, walleterr.ErrInvalidInput)
	})
}

func TestCreateReplacementTransaction_Legacy(t *testing.T) {
	t.Parallel()

	node := newFakeNode()
	node.coin[own()] = bal("2000000000000000000", "2000000000000000000")
	node.nonces[own()] = 9
	w := loadedWallet(t, network.BinanceSmart, coinAsset(network.BinanceSmart), node)

	res, err := w.CreateReplacementTransaction(context.Background(), pendingCoinTx(), testSeed(t))
	require.NoError(t, err)
	assert.Equal(t, uint64(7), res.Nonce)
	assert.Equal(t, "1999895000000000000", w.Balance().Value().String())

	tx, _ := node.lastSent(t)
	assert.Equal(t, uint64(7), tx.Nonce())
	assert.Equal(t, gwei(30).String(), tx.GasPrice().String())
	assert.Equal(t, destination, strings.ToLower(tx.To().Hex()))
	assert.Equal(t, "100000000000000000", tx.Value().String())
}

func TestCreateReplacementTransaction_DynamicFee(t *testing.T) {
	t.Parallel()

	node := newFakeNode()
	node.coin[own()] = bal("2000000000000000000", "2000000000000000000")
	w := loadedWallet(t, network.Ethereum, coinAsset(network.Ethereum), node)

	pending := pendingCoinTx()
	pending.GasPrice = nil
	pending.MaxFeePerGas = gwei(25)
	pending.MaxPriorityFeePerGas = gwei(2)

	_, err := w.CreateReplacementTransaction(context.Background(), pending, testSeed(t))
	require.NoError(t, err)

	tx, _ := node.lastSent(t)
	assert.Equal(t, gwei(30).String(), tx.GasFeeCap().String())
	assert.Equal(t, "2400000000", tx.GasTipCap().String())
	assert.Equal(t, "1999895000000000000", w.Balance().Value().String())
}

func TestCreateReplacementTransaction_Token(t *testing.T) {
	t.Parallel()

	node := newFakeNode()
	node.coin[own()] = bal("1000000000000000000", "1000000000000000000")
	node.token[own()] = bal("5000000", "5000000")
	w := loadedWallet(t, network.BinanceSmart, tokenAsset(), node)

	pending := &history.Transaction{
		ID:       "0xdef",
		From:     own(),
		To:       destination,
		Amount:   amount.FromUint64(1_000_000, 6),
		Fee:      amount.Zero(18),
		Token:    true,
		GasLimit: network.TokenGasLimit,
		GasPrice: gwei(25),
		Nonce:    2,
	}

	_, err := w.CreateReplacementTransaction(context.Background(), pending, testSeed(t))
	require.NoError(t, err)

	tx, _ := node.lastSent(t)
	assert.Equal(t, tokenAddress, strings.ToLower(tx.To().Hex()))
	assert.Equal(t, 0, tx.Value().Sign())
	want, err := evm.TransferData(destination, big.NewInt(1_000_000))
	require.NoError(t, err)
	assert.Equal(t, want, tx.Data())
	assert.Equal(t, "5000000", w.Balance().Value().String())
}

func TestCreateReplacementTransaction_L2Surcharge(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	node := newFakeNode()
	node.coin[own()] = bal("2000000000000000000", "2000000000000000000")
	w := loadedWallet(t, network.Optimism, coinAsset(network.Optimism), node)

	pending := pendingCoinTx()
	pending.GasPrice = nil
	pending.MaxFeePerGas = gwei(25)
	pending.MaxPriorityFeePerGas = gwei(2)

	r, err := w.EstimateReplacement(ctx, pending)
	require.NoError(t, err)
	assert.Equal(t, "105000000001000", r.Fee.Value().String())

	_, err = w.CreateReplacementTransaction(ctx, pending, testSeed(t))
	require.NoError(t, err)

	debited := new(big.Int).Sub(new(big.Int).SetUint64(2_000_000_000_000_000_000), w.Balance().Value())
	assert.Equal(t, r.Fee.Value().String(), debited.String())
}

func TestEstimateReplacement_L2SurchargeNeedsCoin(t *testing.T) {
	t.Parallel()

	node := newFakeNode()
	node.coin[own()] = bal("105000000000500", "105000000000500")
	w := loadedWallet(t, network.Optimism, coinAsset(network.Optimism), node)

	pending := pendingCoinTx()
	pending.GasPrice = nil
	pending.MaxFeePerGas = gwei(25)

	_, err := w.EstimateReplacement(context.Background(), pending)
	require.ErrorIs(t, err, walleterr.ErrBigAmount)
	requireQuantity(t, err, "105000000000500")
}
