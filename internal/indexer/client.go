// Package indexer is the client of the EVM indexer node the wallet reads
// balances, fees and history from and submits transactions to.
package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/mrz1836/evmwallet/internal/evm"
	"github.com/mrz1836/evmwallet/internal/transport"
	walleterr "github.com/mrz1836/evmwallet/pkg/errors"
)

const apiPrefix = "api/v1/"

// ErrMalformedResponse indicates the indexer returned an unexpected body.
var ErrMalformedResponse = &walleterr.WalletError{
	Code:     "INDEXER_MALFORMED_RESPONSE",
	Message:  "indexer returned a malformed response",
	ExitCode: walleterr.ExitGeneral,
}

// Doer executes a request against the indexer and returns the body.
type Doer interface {
	Do(ctx context.Context, req transport.Request) ([]byte, error)
}

// Client is a typed indexer API client.
type Client struct {
	doer Doer
	log  zerolog.Logger
}

// New creates a client over doer.
func New(doer Doer, logger zerolog.Logger) *Client {
	return &Client{doer: doer, log: logger.With().Str("component", "indexer").Logger()}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.call(ctx, transport.Request{Method: http.MethodGet, Path: apiPrefix + path, Query: query}, out)
}

func (c *Client) call(ctx context.Context, req transport.Request, out any) error {
	body, err := c.doer.Do(ctx, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		c.log.Debug().Str("path", req.Path).Err(err).Msg("decode failed")
		return walleterr.Wrap(ErrMalformedResponse, "decoding %s", req.Path)
	}
	return nil
}

// lowerAll lower-cases and validates each address in place.
func lowerAll(addresses ...*string) error {
	for _, a := range addresses {
		lower, err := evm.NormalizeAddress(*a)
		if err != nil {
			return err
		}
		*a = lower
	}
	return nil
}

func confirmations(n int64) url.Values {
	return url.Values{"confirmations": {strconv.FormatInt(n, 10)}}
}

// CoinBalance returns the native coin balance of address.
func (c *Client) CoinBalance(ctx context.Context, address string, minConf int64) (Balance, error) {
	if err := lowerAll(&address); err != nil {
		return Balance{}, err
	}
	var res Balance
	err := c.get(ctx, "addr/"+address+"/balance", confirmations(minConf), &res)
	return res, err
}

// TokenBalance returns the balance address holds of token.
func (c *Client) TokenBalance(ctx context.Context, token, address string, minConf int64) (Balance, error) {
	if err := lowerAll(&token, &address); err != nil {
		return Balance{}, err
	}
	var res Balance
	err := c.get(ctx, "token/"+token+"/"+address+"/balance", confirmations(minConf), &res)
	return res, err
}

// TxsCount returns the number of transactions sent from address, which is
// its next nonce.
func (c *Client) TxsCount(ctx context.Context, address string) (uint64, error) {
	if err := lowerAll(&address); err != nil {
		return 0, err
	}
	var res struct {
		Count Number `json:"count"`
	}
	if err := c.get(ctx, "addr/"+address+"/txsCount", nil, &res); err != nil {
		return 0, err
	}
	if !res.Count.Valid() || !res.Count.Int.IsUint64() {
		return 0, walleterr.Wrap(ErrMalformedResponse, "txs count")
	}
	return res.Count.Int.Uint64(), nil
}

// GasPrice returns the legacy gas price.
func (c *Client) GasPrice(ctx context.Context) (*big.Int, error) {
	var res struct {
		Price Number `json:"price"`
	}
	if err := c.get(ctx, "gasPrice", nil, &res); err != nil {
		return nil, err
	}
	return res.Price.Big(), nil
}

// GasFees returns EIP-1559 fee parameters.
func (c *Client) GasFees(ctx context.Context) (GasFees, error) {
	var res GasFees
	err := c.get(ctx, "gasFees", nil, &res)
	return res, err
}

// AdditionalFee returns the L2 surcharge for a coin or token transfer.
func (c *Client) AdditionalFee(ctx context.Context, token bool) (*big.Int, error) {
	var res Number
	if err := c.get(ctx, "estimateAdditionalFee", url.Values{"token": {strconv.FormatBool(token)}}, &res); err != nil {
		return nil, err
	}
	return res.Big(), nil
}

// SendTransaction submits a signed raw transaction and returns its id.
func (c *Client) SendTransaction(ctx context.Context, rawtx string) (string, error) {
	var res struct {
		TxID string `json:"txId"`
	}
	req := transport.Request{
		Method: http.MethodPost,
		Path:   apiPrefix + "tx/send",
		Body:   map[string]string{"rawtx": rawtx},
	}
	if err := c.call(ctx, req, &res); err != nil {
		return "", err
	}
	if res.TxID == "" {
		return "", walleterr.Wrap(ErrMalformedResponse, "missing txId")
	}
	return res.TxID, nil
}

// Transactions returns a page of coin history. Cursors start at 1.
func (c *Client) Transactions(ctx context.Context, address string, cursor int) (Page, error) {
	if err := lowerAll(&address); err != nil {
		return Page{}, err
	}
	return c.page(ctx, "addr/"+address+"/txs", cursor)
}

// TokenTransactions returns a page of token transfer history.
func (c *Client) TokenTransactions(ctx context.Context, token, address string, cursor int) (Page, error) {
	if err := lowerAll(&token, &address); err != nil {
		return Page{}, err
	}
	return c.page(ctx, "token/"+token+"/"+address+"/txs", cursor)
}

func (c *Client) page(ctx context.Context, path string, cursor int) (Page, error) {
	if cursor < 1 {
		cursor = 1
	}
	var res pageResponse
	if err := c.get(ctx, path, url.Values{"cursor": {strconv.Itoa(cursor)}}, &res); err != nil {
		return Page{}, err
	}

	// A page without a positive limit is the last one.
	hasMore := res.Limit > 0 && len(res.Txs) >= res.Limit
	if hasMore {
		cursor++
	}
	return Page{Txs: res.Txs, HasMore: hasMore, Cursor: cursor}, nil
}

// Transaction returns a single raw transaction.
func (c *Client) Transaction(ctx context.Context, id string) (*Tx, error) {
	if id == "" {
		return nil, walleterr.WithDetails(walleterr.ErrInvalidInput, map[string]string{"reason": "empty transaction id"})
	}
	var res Tx
	if err := c.get(ctx, "tx/"+url.PathEscape(id), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Staking returns the staking position of address.
func (c *Client) Staking(ctx context.Context, address string) (StakingInfo, error) {
	if err := lowerAll(&address); err != nil {
		return StakingInfo{}, err
	}
	var res StakingInfo
	err := c.get(ctx, "addr/"+address+"/staking", nil, &res)
	return res, err
}

// PendingRequests returns the queued staking requests of address.
func (c *Client) PendingRequests(ctx context.Context, address string) (PendingRequests, error) {
	if err := lowerAll(&address); err != nil {
		return PendingRequests{}, err
	}
	var res PendingRequests
	err := c.get(ctx, "addr/"+address+"/pendingRequests", nil, &res)
	return res, err
}

// StakeCall returns call data that stakes amount.
func (c *Client) StakeCall(ctx context.Context, address string, amount *big.Int) (ContractCall, error) {
	return c.contractCall(ctx, address, "stake", amount)
}

// UnstakeCall returns call data that requests amount be unstaked.
func (c *Client) UnstakeCall(ctx context.Context, address string, amount *big.Int) (ContractCall, error) {
	return c.contractCall(ctx, address, "unstake", amount)
}

// ClaimCall returns call data that claims unstaked funds.
func (c *Client) ClaimCall(ctx context.Context, address string) (ContractCall, error) {
	return c.contractCall(ctx, address, "claim", nil)
}

func (c *Client) contractCall(ctx context.Context, address, action string, amount *big.Int) (ContractCall, error) {
	if err := lowerAll(&address); err != nil {
		return ContractCall{}, err
	}
	var query url.Values
	if amount != nil {
		query = url.Values{"amount": {amount.String()}}
	}

	var res ContractCall
	if err := c.get(ctx, "addr/"+address+"/"+action, query, &res); err != nil {
		return ContractCall{}, err
	}
	to, err := evm.NormalizeAddress(res.To)
	if err != nil {
		return ContractCall{}, walleterr.Wrap(ErrMalformedResponse, "%s contract address", action)
	}
	res.To = to
	return res, nil
}

// String implements fmt.Stringer for logging.
func (p Page) String() string {
	return fmt.Sprintf("page(cursor=%d, txs=%d, more=%t)", p.Cursor, len(p.Txs), p.HasMore)
}
