package wallet

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/evmwallet/internal/evm"
	"github.com/mrz1836/evmwallet/internal/indexer"
	"github.com/mrz1836/evmwallet/internal/metrics"
	"github.com/mrz1836/evmwallet/pkg/amount"
	walleterr "github.com/mrz1836/evmwallet/pkg/errors"
)

// importPlan is a resolved sweep from one private key.
type importPlan struct {
	key      *ecdsa.PrivateKey
	from     string // lower-case
	value    *big.Int
	fee      *big.Int
	sendable *big.Int
}

// importMemo caches sweep plans per private key until Cleanup.
type importMemo struct {
	mu    sync.Mutex
	plans map[string]*importPlan
}

func (m *importMemo) get(k string) (*importPlan, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[k]
	return p, ok
}

func (m *importMemo) put(k string, p *importPlan) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.plans == nil {
		m.plans = make(map[string]*importPlan)
	}
	m.plans[k] = p
}

func (m *importMemo) clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans = nil
}

// EstimateImport returns what a sweep from privateKeyHex would credit.
func (w *Wallet) EstimateImport(ctx context.Context, privateKeyHex string) (amount.Quantity, error) {
	plan, err := w.prepareImport(ctx, privateKeyHex)
	if err != nil {
		return amount.Quantity{}, err
	}
	return w.quantity(plan.sendable), nil
}

// CreateImport sweeps the balance controlled by privateKeyHex into the
// wallet address.
func (w *Wallet) CreateImport(ctx context.Context, privateKeyHex string) (res *SendResult, err error) {
	defer func() { metrics.Global.RecordWalletOp(err) }()

	plan, err := w.prepareImport(ctx, privateKeyHex)
	if err != nil {
		return nil, err
	}
	address, err := w.ready()
	if err != nil {
		return nil, err
	}

	c, err := w.transfer(plan.from, address, plan.sendable, w.gasLimit)
	if err != nil {
		return nil, err
	}
	res, _, err = w.submit(ctx, plan.key, c)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	switch w.asset.Kind.(type) {
	case Coin:
		credit(&w.bal.coin, plan.sendable)
	case Token:
		credit(&w.bal.token, plan.sendable)
	}
	w.mu.Unlock()
	w.persist(ctx)

	return res, nil
}

func importKey(privateKeyHex string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(privateKeyHex)), "0x")
}

// prepareImport resolves and memoizes the sweep plan of privateKeyHex.
func (w *Wallet) prepareImport(ctx context.Context, privateKeyHex string) (*importPlan, error) {
	address, err := w.ready()
	if err != nil {
		return nil, err
	}
	k := importKey(privateKeyHex)
	if plan, ok := w.imports.get(k); ok {
		return plan, nil
	}

	key, err := evm.ParsePrivateKey(k)
	if err != nil {
		return nil, walleterr.ErrInvalidPrivateKey
	}
	from := strings.ToLower(evm.AddressOf(key))
	if from == address {
		return nil, walleterr.ErrDestinationEqualsSource
	}

	token, err := w.isToken()
	if err != nil {
		return nil, err
	}

	var (
		bal     indexer.Balance
		feeWork *big.Int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bal, err = w.sourceBalance(gctx, from)
		return err
	})
	g.Go(func() error {
		var err error
		feeWork, err = w.fees.MinerFee(gctx, w.gasLimit, token)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	value := amount.Min(bal.Amounts())
	sendable := new(big.Int).Set(value)
	if !token {
		sendable.Sub(sendable, feeWork)
	}
	if sendable.Cmp(dust) < 0 {
		minimum := new(big.Int).Set(dust)
		if !token {
			minimum.Add(minimum, feeWork)
		}
		return nil, walleterr.WithQuantity(walleterr.ErrSmallAmount, w.quantity(minimum))
	}

	if token {
		coin, err := w.node.CoinBalance(ctx, from, w.profile.MinConf)
		if err != nil {
			return nil, err
		}
		if feeWork.Cmp(amount.Min(coin.Amounts())) > 0 {
			return nil, walleterr.WithQuantity(walleterr.ErrInsufficientCoinForFee, w.feeQuantity(feeWork))
		}
	}

	plan := &importPlan{key: key, from: from, value: value, fee: feeWork, sendable: sendable}
	w.imports.put(k, plan)
	w.log.Debug().Str("from", from).Str("sendable", sendable.String()).Msg("import prepared")
	return plan, nil
}

func (w *Wallet) sourceBalance(ctx context.Context, from string) (indexer.Balance, error) {
	if t, ok := w.asset.Kind.(Token); ok {
		return w.node.TokenBalance(ctx, t.Address, from, w.profile.MinConf)
	}
	return w.node.CoinBalance(ctx, from, w.profile.MinConf)
}
