package indexer

import (
	"bytes"
	"encoding/json"
	"math/big"

	"github.com/shopspring/decimal"
)

// Balance is the total and confirmed amount held by an address.
type Balance struct {
	Balance          Number `json:"balance"`
	ConfirmedBalance Number `json:"confirmedBalance"`
}

// GasFees are the EIP-1559 fee parameters suggested by the indexer.
type GasFees struct {
	MaxFeePerGas         Number `json:"maxFeePerGas"`
	MaxPriorityFeePerGas Number `json:"maxPriorityFeePerGas"`
}

// Tx is a raw transaction record as returned by the indexer. Coin records
// are keyed by ID, token transfer records by TxID and carry Token.
type Tx struct {
	ID                   string          `json:"_id"`
	TxID                 string          `json:"txId"`
	From                 string          `json:"from"`
	To                   string          `json:"to"`
	Value                Number          `json:"value"`
	Gas                  Number          `json:"gas"`
	GasUsed              Number          `json:"gasUsed"`
	GasPrice             Number          `json:"gasPrice"`
	MaxFeePerGas         Number          `json:"maxFeePerGas"`
	MaxPriorityFeePerGas Number          `json:"maxPriorityFeePerGas"`
	Nonce                Number          `json:"nonce"`
	Input                string          `json:"input"`
	Timestamp            int64           `json:"timestamp"`
	Confirmations        int64           `json:"confirmations"`
	Status               json.RawMessage `json:"status,omitempty"`
	Token                json.RawMessage `json:"token,omitempty"`
}

// IsToken reports whether the record is a token transfer.
func (t *Tx) IsToken() bool {
	return truthy(t.Token)
}

// Failed reports whether the record carries an explicit falsy status.
// A null or missing status counts as success.
func (t *Tx) Failed() bool {
	s := bytes.TrimSpace(t.Status)
	if len(s) == 0 || bytes.Equal(s, []byte("null")) {
		return false
	}
	return !truthy(s)
}

// Identifier returns TxID for token records and ID for coin records.
func (t *Tx) Identifier() string {
	if t.IsToken() {
		return t.TxID
	}
	return t.ID
}

func truthy(raw json.RawMessage) bool {
	s := string(bytes.TrimSpace(raw))
	switch s {
	case "", "null", "false", "0", `""`, "0.0":
		return false
	default:
		return true
	}
}

// Page is one page of transaction history.
type Page struct {
	Txs     []Tx
	HasMore bool
	Cursor  int
}

type pageResponse struct {
	Txs   []Tx `json:"txs"`
	Limit int  `json:"limit"`
}

// StakingInfo describes the staking position of an address.
type StakingInfo struct {
	Staked         Number          `json:"staked"`
	APR            decimal.Decimal `json:"apr"`
	MinStakeAmount Number          `json:"minStakeAmount"`
}

// PendingRequests are queued staking operations of an address.
type PendingRequests struct {
	Staking       Number `json:"staking"`
	Unstaking     Number `json:"unstaking"`
	ReadyForClaim Number `json:"readyForClaim"`
}

// ContractCall is call data prepared by the indexer for a contract.
type ContractCall struct {
	To   string `json:"to"`
	Data string `json:"data"`
}

// Amounts returns b as big integers.
func (b Balance) Amounts() (balance, confirmed *big.Int) {
	return b.Balance.Big(), b.ConfirmedBalance.Big()
}
