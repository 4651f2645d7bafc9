package wallet

import (
	"context"
	"crypto/ecdsa"
	"math/big"

	"github.com/mrz1836/evmwallet/internal/evm"
	"github.com/mrz1836/evmwallet/internal/metrics"
	"github.com/mrz1836/evmwallet/pkg/amount"
	walleterr "github.com/mrz1836/evmwallet/pkg/errors"
)

// SendResult describes a submitted transaction.
type SendResult struct {
	TxID  string
	Nonce uint64
	Fee   amount.Quantity // realized fee, in the fee currency
	URL   string
}

// call is an unsigned transaction without nonce or fee fields.
type call struct {
	from     string
	to       string
	value    *big.Int
	data     []byte
	gasLimit uint64
	calldata bool // selects the L2 surcharge variant
}

// CreateTransaction sends req.Amount to req.Address. Balances are debited
// locally only after the indexer accepts the transaction.
func (w *Wallet) CreateTransaction(ctx context.Context, req TxRequest, seed []byte) (res *SendResult, err error) {
	defer func() { metrics.Global.RecordWalletOp(err) }()

	if err = w.validateRequest(ctx, req); err != nil {
		return nil, err
	}
	key, err := w.signingKey(seed)
	if err != nil {
		return nil, err
	}
	address, err := w.ready()
	if err != nil {
		return nil, err
	}

	to, err := evm.NormalizeAddress(req.Address)
	if err != nil {
		return nil, err
	}
	value := req.Amount.Value()

	c, err := w.transfer(address, to, value, req.GasLimit)
	if err != nil {
		return nil, err
	}
	res, realized, err := w.submit(ctx, key, c)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	switch w.asset.Kind.(type) {
	case Coin:
		debit(&w.bal.coin, new(big.Int).Add(value, realized))
	case Token:
		debit(&w.bal.coin, realized)
		debit(&w.bal.token, value)
	}
	w.mu.Unlock()
	w.persist(ctx)

	return res, nil
}

// transfer builds a coin transfer, or a token transfer call against the
// token contract with zero value.
func (w *Wallet) transfer(from, to string, value *big.Int, gasLimit uint64) (call, error) {
	switch kind := w.asset.Kind.(type) {
	case Coin:
		return call{from: from, to: to, value: value, gasLimit: gasLimit}, nil
	case Token:
		data, err := evm.TransferData(to, value)
		if err != nil {
			return call{}, err
		}
		return call{from: from, to: kind.Address, value: new(big.Int), data: data, gasLimit: gasLimit, calldata: true}, nil
	default:
		return call{}, walleterr.ErrUnsupportedAssetKind
	}
}

// submit resolves the nonce and fee fields of c, signs it with key and
// sends it. It returns the realized fee including any L2 surcharge.
func (w *Wallet) submit(ctx context.Context, key *ecdsa.PrivateKey, c call) (*SendResult, *big.Int, error) {
	nonce, err := w.node.TxsCount(ctx, c.from)
	if err != nil {
		return nil, nil, err
	}
	gas, err := w.fees.GasParams(ctx)
	if err != nil {
		return nil, nil, err
	}

	params := &evm.TxParams{
		To:                   c.to,
		Value:                c.value,
		Data:                 c.data,
		Nonce:                nonce,
		GasLimit:             c.gasLimit,
		GasPrice:             gas.GasPrice,
		MaxFeePerGas:         gas.MaxFeePerGas,
		MaxPriorityFeePerGas: gas.MaxPriorityFeePerGas,
		ChainID:              w.profile.ChainIDBig(),
	}
	return w.broadcast(ctx, key, params, c.calldata)
}

// broadcast signs and sends params.
func (w *Wallet) broadcast(ctx context.Context, key *ecdsa.PrivateKey, params *evm.TxParams, calldata bool) (*SendResult, *big.Int, error) {
	signed, err := evm.SignTransaction(params, key)
	if err != nil {
		return nil, nil, err
	}
	surcharge, err := w.fees.Surcharge(ctx, calldata)
	if err != nil {
		return nil, nil, err
	}

	txID, err := w.node.SendTransaction(ctx, signed.Raw)
	if err != nil {
		w.log.Error().Err(err).Uint64("nonce", params.Nonce).Msg("submit failed")
		return nil, nil, err
	}
	metrics.Global.RecordTxSubmitted()

	realized := new(big.Int).Add(signed.Fee, surcharge)
	w.log.Debug().
		Str("tx_id", txID).
		Uint64("nonce", params.Nonce).
		Str("fee", realized.String()).
		Msg("transaction submitted")

	return &SendResult{
		TxID:  txID,
		Nonce: params.Nonce,
		Fee:   w.feeQuantity(realized),
		URL:   w.profile.TransactionURL(txID),
	}, realized, nil
}
