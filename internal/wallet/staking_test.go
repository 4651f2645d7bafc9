package wallet

import (
	"context"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/evmwallet/internal/indexer"
	"github.com/mrz1836/evmwallet/internal/network"
	walleterr "github.com/mrz1836/evmwallet/pkg/errors"
)

func stakingNode() *fakeNode {
	node := newFakeNode()
	node.coin[own()] = bal("2000000000000000000", "2000000000000000000")
	node.staking = indexer.StakingInfo{
		Staked:         num("500000000000000000"),
		APR:            decimal.RequireFromString("3.25"),
		MinStakeAmount: num("100000000000000000"),
	}
	node.pending = indexer.PendingRequests{
		Staking:       num("0"),
		Unstaking:     num("0"),
		ReadyForClaim: num("0"),
	}
	return node
}

func TestStaking_NotSupported(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	w := loadedWallet(t, network.BinanceSmart, coinAsset(network.BinanceSmart), stakingNode())
	_, err := w.Staking(ctx)
	require.ErrorIs(t, err, walleterr.ErrNotSupported)
	_, err = w.EstimateStakeFee(ctx)
	require.ErrorIs(t, err, walleterr.ErrNotSupported)
	_, err = w.Claim(ctx, testSeed(t))
	require.ErrorIs(t, err, walleterr.ErrNotSupported)
}

func TestStaking_Queries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	node := stakingNode()
	node.pending.Unstaking = num("10")
	w := loadedWallet(t, network.Ethereum, coinAsset(network.Ethereum), node)

	info, err := w.Staking(ctx)
	require.NoError(t, err)
	assert.Equal(t, "500000000000000000", info.Staked.Value().String())
	assert.Equal(t, "3.25", info.APR.String())
	assert.Equal(t, "100000000000000000", info.MinStakeAmount.Value().String())

	pending, err := w.PendingRequests(ctx)
	require.NoError(t, err)
	assert.Equal(t, "10", pending.Unstaking.Value().String())
	assert.True(t, pending.ReadyForClaim.IsZero())

	fee, err := w.EstimateStakeFee(ctx)
	require.NoError(t, err)
	assert.Equal(t, "9000000000000000", fee.Value().String())

	maxStake, err := w.EstimateStakeMaxAmount(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1991000000000000000", maxStake.Value().String())

	maxUnstake, err := w.EstimateUnstakeMaxAmount(ctx)
	require.NoError(t, err)
	assert.Equal(t, "500000000000000000", maxUnstake.Value().String())
}

func TestValidateStakeAmount(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	w := loadedWallet(t, network.Ethereum, coinAsset(network.Ethereum), stakingNode())

	err := w.ValidateStakeAmount(ctx, mustQuantity(t, "0", 18))
	require.ErrorIs(t, err, walleterr.ErrSmallAmount)
	requireQuantity(t, err, "1")

	err = w.ValidateStakeAmount(ctx, mustQuantity(t, "10000000000000000", 18))
	require.ErrorIs(t, err, walleterr.ErrSmallAmount)
	requireQuantity(t, err, "100000000000000000")

	err = w.ValidateStakeAmount(ctx, mustQuantity(t, "1995000000000000000", 18))
	require.ErrorIs(t, err, walleterr.ErrBigAmount)
	requireQuantity(t, err, "1991000000000000000")

	require.NoError(t, w.ValidateStakeAmount(ctx, mustQuantity(t, "1000000000000000000", 18)))
}

func TestStake(t *testing.T) {
	t.Parallel()

	node := stakingNode()
	w := loadedWallet(t, network.Ethereum, coinAsset(network.Ethereum), node)

	_, err := w.Stake(context.Background(), mustQuantity(t, "1000000000000000000", 18), testSeed(t))
	require.NoError(t, err)
	assert.Equal(t, "991000000000000000", w.Balance().Value().String())
	assert.Contains(t, node.lastCalls, "stake:1000000000000000000")

	tx, _ := node.lastSent(t)
	assert.Equal(t, stakingContract, strings.ToLower(tx.To().Hex()))
	assert.Equal(t, "1000000000000000000", tx.Value().String())
	assert.Equal(t, "0x3a4b66f1", hexutil.Encode(tx.Data()))
	assert.Equal(t, network.ContractGasLimit, tx.Gas())
}

func TestUnstake(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	node := stakingNode()
	w := loadedWallet(t, network.Ethereum, coinAsset(network.Ethereum), node)

	err := w.ValidateUnstakeAmount(ctx, mustQuantity(t, "600000000000000000", 18))
	require.ErrorIs(t, err, walleterr.ErrBigAmount)
	requireQuantity(t, err, "500000000000000000")

	_, err = w.Unstake(ctx, mustQuantity(t, "100000000000000000", 18), testSeed(t))
	require.NoError(t, err)
	assert.Equal(t, "1991000000000000000", w.Balance().Value().String())
	assert.Contains(t, node.lastCalls, "unstake:100000000000000000")

	tx, _ := node.lastSent(t)
	assert.Equal(t, 0, tx.Value().Sign())
}

func TestUnstake_InsufficientCoinForFee(t *testing.T) {
	t.Parallel()

	node := stakingNode()
	node.coin[own()] = bal("1000", "1000")
	w := loadedWallet(t, network.Ethereum, coinAsset(network.Ethereum), node)

	err := w.ValidateUnstakeAmount(context.Background(), mustQuantity(t, "100000000000000000", 18))
	require.ErrorIs(t, err, walleterr.ErrInsufficientCoinForFee)
	requireQuantity(t, err, "9000000000000000")
}

func TestClaim(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("nothing ready", func(t *testing.T) {
		t.Parallel()
		node := stakingNode()
		w := loadedWallet(t, network.Ethereum, coinAsset(network.Ethereum), node)

		_, err := w.Claim(ctx, testSeed(t))
		require.ErrorIs(t, err, walleterr.ErrSmallAmount)
		assert.Equal(t, 0, node.sentCount())
	})

	t.Run("ready", func(t *testing.T) {
		t.Parallel()
		node := stakingNode()
		node.pending.ReadyForClaim = num("200000000000000000")
		w := loadedWallet(t, network.Ethereum, coinAsset(network.Ethereum), node)

		_, err := w.Claim(ctx, testSeed(t))
		require.NoError(t, err)
		assert.Equal(t, "1991000000000000000", w.Balance().Value().String())
		assert.Contains(t, node.lastCalls, "claim")

		tx, _ := node.lastSent(t)
		assert.Equal(t, 0, tx.Value().Sign())
	})
}
