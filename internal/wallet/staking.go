package wallet

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"

	"github.com/mrz1836/evmwallet/internal/metrics"
	"github.com/mrz1836/evmwallet/pkg/amount"
	walleterr "github.com/mrz1836/evmwallet/pkg/errors"
)

// StakingInfo is the staking position of the wallet.
type StakingInfo struct {
	Staked         amount.Quantity
	APR            decimal.Decimal
	MinStakeAmount amount.Quantity
}

// PendingRequests are staking operations not yet settled.
type PendingRequests struct {
	Staking       amount.Quantity
	Unstaking     amount.Quantity
	ReadyForClaim amount.Quantity
}

func (w *Wallet) stakingAddress() (string, error) {
	if !w.IsStakingSupported() {
		return "", walleterr.WithDetails(walleterr.ErrNotSupported, map[string]string{
			"feature":  "staking",
			"platform": string(w.profile.Platform),
		})
	}
	return w.ready()
}

// Staking returns the staked amount, APR and minimum stake.
func (w *Wallet) Staking(ctx context.Context) (StakingInfo, error) {
	address, err := w.stakingAddress()
	if err != nil {
		return StakingInfo{}, err
	}
	info, err := w.node.Staking(ctx, address)
	if err != nil {
		return StakingInfo{}, err
	}
	return StakingInfo{
		Staked:         w.quantity(info.Staked.Big()),
		APR:            info.APR,
		MinStakeAmount: w.quantity(info.MinStakeAmount.Big()),
	}, nil
}

// PendingRequests returns queued stake and unstake requests.
func (w *Wallet) PendingRequests(ctx context.Context) (PendingRequests, error) {
	address, err := w.stakingAddress()
	if err != nil {
		return PendingRequests{}, err
	}
	p, err := w.node.PendingRequests(ctx, address)
	if err != nil {
		return PendingRequests{}, err
	}
	return PendingRequests{
		Staking:       w.quantity(p.Staking.Big()),
		Unstaking:     w.quantity(p.Unstaking.Big()),
		ReadyForClaim: w.quantity(p.ReadyForClaim.Big()),
	}, nil
}

// ValidateStakeAmount checks dust, the minimum stake and the coin maximum
// for a contract call.
func (w *Wallet) ValidateStakeAmount(ctx context.Context, q amount.Quantity) error {
	if _, err := w.stakingAddress(); err != nil {
		return err
	}
	value := q.Value()
	if value.Cmp(dust) < 0 {
		return walleterr.WithQuantity(walleterr.ErrSmallAmount, w.quantity(dust))
	}

	info, err := w.Staking(ctx)
	if err != nil {
		return err
	}
	if value.Cmp(info.MinStakeAmount.Value()) < 0 {
		return walleterr.WithQuantity(walleterr.ErrSmallAmount, info.MinStakeAmount)
	}

	return w.checkMax(value, func(unconfirmed bool) (*big.Int, error) {
		return w.coinMax(ctx, w.snapshot(), w.profile.ContractGasLimit, unconfirmed, true)
	})
}

// EstimateStakeMaxAmount is the confirmed coin balance net of the
// contract-call fee.
func (w *Wallet) EstimateStakeMaxAmount(ctx context.Context) (amount.Quantity, error) {
	if _, err := w.stakingAddress(); err != nil {
		return amount.Quantity{}, err
	}
	v, err := w.coinMax(ctx, w.snapshot(), w.profile.ContractGasLimit, false, true)
	if err != nil {
		return amount.Quantity{}, err
	}
	return w.quantity(v), nil
}

// EstimateStakeFee returns the contract-call fee.
func (w *Wallet) EstimateStakeFee(ctx context.Context) (amount.Quantity, error) {
	return w.contractFee(ctx)
}

// EstimateUnstakeFee returns the contract-call fee.
func (w *Wallet) EstimateUnstakeFee(ctx context.Context) (amount.Quantity, error) {
	return w.contractFee(ctx)
}

// EstimateClaimFee returns the contract-call fee.
func (w *Wallet) EstimateClaimFee(ctx context.Context) (amount.Quantity, error) {
	return w.contractFee(ctx)
}

func (w *Wallet) contractFee(ctx context.Context) (amount.Quantity, error) {
	if _, err := w.stakingAddress(); err != nil {
		return amount.Quantity{}, err
	}
	minerFee, err := w.fees.MinerFee(ctx, w.profile.ContractGasLimit, true)
	if err != nil {
		return amount.Quantity{}, err
	}
	return w.feeQuantity(minerFee), nil
}

// Stake deposits q into the staking contract.
func (w *Wallet) Stake(ctx context.Context, q amount.Quantity, seed []byte) (res *SendResult, err error) {
	defer func() { metrics.Global.RecordWalletOp(err) }()

	if err = w.ValidateStakeAmount(ctx, q); err != nil {
		return nil, err
	}
	value := q.Value()
	return w.contractCall(ctx, seed, value, func(address string) (string, string, error) {
		c, err := w.node.StakeCall(ctx, address, value)
		return c.To, c.Data, err
	})
}

// ValidateUnstakeAmount checks dust, the staked amount and that coin
// covers the contract-call fee.
func (w *Wallet) ValidateUnstakeAmount(ctx context.Context, q amount.Quantity) error {
	if _, err := w.stakingAddress(); err != nil {
		return err
	}
	value := q.Value()
	if value.Cmp(dust) < 0 {
		return walleterr.WithQuantity(walleterr.ErrSmallAmount, w.quantity(dust))
	}

	info, err := w.Staking(ctx)
	if err != nil {
		return err
	}
	if value.Cmp(info.Staked.Value()) > 0 {
		return walleterr.WithQuantity(walleterr.ErrBigAmount, info.Staked)
	}
	return w.checkContractFee(ctx)
}

// EstimateUnstakeMaxAmount returns the staked amount.
func (w *Wallet) EstimateUnstakeMaxAmount(ctx context.Context) (amount.Quantity, error) {
	info, err := w.Staking(ctx)
	if err != nil {
		return amount.Quantity{}, err
	}
	return info.Staked, nil
}

// Unstake requests q be withdrawn from the staking contract.
func (w *Wallet) Unstake(ctx context.Context, q amount.Quantity, seed []byte) (res *SendResult, err error) {
	defer func() { metrics.Global.RecordWalletOp(err) }()

	if err = w.ValidateUnstakeAmount(ctx, q); err != nil {
		return nil, err
	}
	value := q.Value()
	return w.contractCall(ctx, seed, new(big.Int), func(address string) (string, string, error) {
		c, err := w.node.UnstakeCall(ctx, address, value)
		return c.To, c.Data, err
	})
}

// Claim withdraws unstaked funds that are ready.
func (w *Wallet) Claim(ctx context.Context, seed []byte) (res *SendResult, err error) {
	defer func() { metrics.Global.RecordWalletOp(err) }()

	pending, err := w.PendingRequests(ctx)
	if err != nil {
		return nil, err
	}
	if pending.ReadyForClaim.IsZero() {
		return nil, walleterr.WithQuantity(walleterr.ErrSmallAmount, w.quantity(dust))
	}
	if err = w.checkContractFee(ctx); err != nil {
		return nil, err
	}
	return w.contractCall(ctx, seed, new(big.Int), func(address string) (string, string, error) {
		c, err := w.node.ClaimCall(ctx, address)
		return c.To, c.Data, err
	})
}

func (w *Wallet) checkContractFee(ctx context.Context) error {
	minerFee, err := w.fees.MinerFee(ctx, w.profile.ContractGasLimit, true)
	if err != nil {
		return err
	}
	if minerFee.Cmp(w.snapshot().coin) > 0 {
		return walleterr.WithQuantity(walleterr.ErrInsufficientCoinForFee, w.feeQuantity(minerFee))
	}
	return nil
}

// contractCall signs and submits indexer-prepared call data with value
// attached, then debits value and the realized fee.
func (w *Wallet) contractCall(ctx context.Context, seed []byte, value *big.Int,
	prepare func(address string) (to, data string, err error),
) (*SendResult, error) {
	key, err := w.signingKey(seed)
	if err != nil {
		return nil, err
	}
	address, err := w.ready()
	if err != nil {
		return nil, err
	}

	to, data, err := prepare(address)
	if err != nil {
		return nil, err
	}
	payload, err := hexutil.Decode(data)
	if err != nil {
		return nil, walleterr.WithDetails(walleterr.ErrInvalidInput, map[string]string{"reason": "malformed call data"})
	}

	res, realized, err := w.submit(ctx, key, call{
		from:     address,
		to:       to,
		value:    value,
		data:     payload,
		gasLimit: w.profile.ContractGasLimit,
		calldata: true,
	})
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	debit(&w.bal.coin, new(big.Int).Add(value, realized))
	w.mu.Unlock()
	w.persist(ctx)

	return res, nil
}
