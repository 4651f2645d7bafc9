package wallet

import (
	"context"
	"math/big"

	"github.com/mrz1836/evmwallet/internal/metrics"
	"github.com/mrz1836/evmwallet/pkg/amount"
	walleterr "github.com/mrz1836/evmwallet/pkg/errors"
)

// balances are the in-memory balance pairs. Token fields stay zero for
// coin wallets.
type balances struct {
	coin           *big.Int
	coinConfirmed  *big.Int
	token          *big.Int
	tokenConfirmed *big.Int
}

func newBalances() balances {
	return balances{
		coin:           new(big.Int),
		coinConfirmed:  new(big.Int),
		token:          new(big.Int),
		tokenConfirmed: new(big.Int),
	}
}

// debit subtracts v from *field, clamping at zero.
func debit(field **big.Int, v *big.Int) {
	next := new(big.Int).Sub(*field, v)
	if next.Sign() < 0 {
		next.SetInt64(0)
	}
	*field = next
}

func credit(field **big.Int, v *big.Int) {
	*field = new(big.Int).Add(*field, v)
}

// Load fetches balances from the indexer and persists the kind balance.
// Any failure leaves the wallet in StateError.
func (w *Wallet) Load(ctx context.Context) (err error) {
	address, err := w.ready()
	if err != nil {
		return err
	}
	defer func() { metrics.Global.RecordWalletOp(err) }()

	w.setState(StateLoading)
	// Fee quotes live for one load cycle.
	w.fees.Clear()
	if err = w.load(ctx, address); err != nil {
		w.setState(StateError)
		w.log.Error().Err(err).Msg("load failed")
		return err
	}
	w.setState(StateLoaded)
	return nil
}

func (w *Wallet) load(ctx context.Context, address string) error {
	coin, err := w.node.CoinBalance(ctx, address, w.profile.MinConf)
	if err != nil {
		return err
	}

	next := newBalances()
	next.coin, next.coinConfirmed = coin.Amounts()

	var kindBalance *big.Int
	switch kind := w.asset.Kind.(type) {
	case Coin:
		kindBalance = next.coin
	case Token:
		tok, err := w.node.TokenBalance(ctx, kind.Address, address, w.profile.MinConf)
		if err != nil {
			return err
		}
		next.token, next.tokenConfirmed = tok.Amounts()
		kindBalance = next.token
	default:
		return walleterr.ErrUnsupportedAssetKind
	}

	w.mu.Lock()
	w.bal = next
	w.mu.Unlock()

	w.storage.Set(balanceKey, kindBalance.String())
	return w.storage.Save(ctx)
}

// Balance returns the balance of the wallet asset.
func (w *Wallet) Balance() amount.Quantity {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.asset.Kind.(Token); ok {
		return w.quantity(w.bal.token)
	}
	return w.quantity(w.bal.coin)
}

// CoinBalance returns the platform coin balance, which pays every fee.
func (w *Wallet) CoinBalance() amount.Quantity {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.feeQuantity(w.bal.coin)
}

func (w *Wallet) snapshot() balances {
	w.mu.Lock()
	defer w.mu.Unlock()
	return balances{
		coin:           new(big.Int).Set(w.bal.coin),
		coinConfirmed:  new(big.Int).Set(w.bal.coinConfirmed),
		token:          new(big.Int).Set(w.bal.token),
		tokenConfirmed: new(big.Int).Set(w.bal.tokenConfirmed),
	}
}

// persist writes the kind balance. The transaction is already on the
// network when this runs, so a storage failure is logged, not returned.
func (w *Wallet) persist(ctx context.Context) {
	w.storage.Set(balanceKey, w.Balance().Value().String())
	if err := w.storage.Save(ctx); err != nil {
		w.log.Error().Err(err).Msg("saving balance failed")
	}
}

// EstimateMaxAmount returns the most that can be sent with gasLimit using
// confirmed funds only.
func (w *Wallet) EstimateMaxAmount(ctx context.Context, gasLimit uint64) (amount.Quantity, error) {
	if _, err := w.ready(); err != nil {
		return amount.Quantity{}, err
	}
	v, err := w.maxAmount(ctx, gasLimit, false)
	if err != nil {
		return amount.Quantity{}, err
	}
	return w.quantity(v), nil
}

func (w *Wallet) maxAmount(ctx context.Context, gasLimit uint64, unconfirmed bool) (*big.Int, error) {
	b := w.snapshot()
	switch w.asset.Kind.(type) {
	case Coin:
		return w.coinMax(ctx, b, gasLimit, unconfirmed, false)
	case Token:
		if unconfirmed {
			return b.token, nil
		}
		return amount.Min(b.token, b.tokenConfirmed), nil
	default:
		return nil, walleterr.ErrUnsupportedAssetKind
	}
}

// coinMax is the coin balance net of the fee for gasLimit. calldata selects
// the L2 surcharge variant for calls that carry data.
func (w *Wallet) coinMax(ctx context.Context, b balances, gasLimit uint64, unconfirmed, calldata bool) (*big.Int, error) {
	balance := b.coin
	if !unconfirmed {
		balance = amount.Min(b.coin, b.coinConfirmed)
	}
	if balance.Sign() == 0 {
		return new(big.Int), nil
	}

	minerFee, err := w.fees.MinerFee(ctx, gasLimit, calldata)
	if err != nil {
		return nil, err
	}
	if balance.Cmp(minerFee) < 0 {
		return new(big.Int), nil
	}
	return new(big.Int).Sub(balance, minerFee), nil
}
