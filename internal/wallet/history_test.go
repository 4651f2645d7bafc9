package wallet

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/evmwallet/internal/history"
	"github.com/mrz1836/evmwallet/internal/indexer"
	"github.com/mrz1836/evmwallet/internal/network"
)

func rawCoinTx(id, from, to string, confirmations int64) indexer.Tx {
	return indexer.Tx{
		ID:            id,
		From:          from,
		To:            to,
		Value:         num("1000000000000000000"),
		Gas:           num("21000"),
		GasPrice:      num("25000000000"),
		Nonce:         num("1"),
		Timestamp:     1700000000,
		Confirmations: confirmations,
	}
}

func TestLoadTransactions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	node := newFakeNode()
	node.pages[0] = indexer.Page{
		Txs: []indexer.Tx{
			rawCoinTx("0x01", destination, own(), 20),
			rawCoinTx("0x02", own(), destination, 0),
		},
		HasMore: true,
		Cursor:  2,
	}
	node.pages[2] = indexer.Page{Txs: []indexer.Tx{rawCoinTx("0x03", own(), destination, 30)}, Cursor: 2}
	w := loadedWallet(t, network.BinanceSmart, coinAsset(network.BinanceSmart), node)

	page, err := w.LoadTransactions(ctx, 0)
	require.NoError(t, err)
	require.Len(t, page.Transactions, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, 2, page.Cursor)

	incoming := page.Transactions[0]
	assert.True(t, incoming.Incoming)
	assert.Equal(t, history.StatusSuccess, incoming.Status)
	assert.False(t, incoming.RBF)

	outgoing := page.Transactions[1]
	assert.False(t, outgoing.Incoming)
	assert.Equal(t, history.StatusPending, outgoing.Status)
	assert.True(t, outgoing.RBF)
	assert.Equal(t, "525000000000000", outgoing.Fee.Value().String())
	assert.Equal(t, "https://bscscan.com/tx/0x02", outgoing.URL)

	next, err := w.LoadTransactions(ctx, page.Cursor)
	require.NoError(t, err)
	require.Len(t, next.Transactions, 1)
	assert.False(t, next.HasMore)

	_, ok := w.CachedTransaction("0x01")
	assert.True(t, ok)

	node.pages[0] = indexer.Page{}
	_, err = w.LoadTransactions(ctx, 0)
	require.NoError(t, err)
	_, ok = w.CachedTransaction("0x01")
	assert.False(t, ok)
}

func TestLoadTransactions_Token(t *testing.T) {
	t.Parallel()

	raw := rawCoinTx("", destination, own(), 20)
	raw.TxID = "0xtoken"
	raw.Value = num("1000000")
	raw.Token = json.RawMessage(`"` + tokenAddress + `"`)

	node := newFakeNode()
	node.pages[0] = indexer.Page{Txs: []indexer.Tx{raw}}
	w := loadedWallet(t, network.BinanceSmart, tokenAsset(), node)

	page, err := w.LoadTransactions(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, page.Transactions, 1)
	assert.Equal(t, []string{"token-txs"}, node.lastCalls)

	tx := page.Transactions[0]
	assert.Equal(t, "0xtoken", tx.ID)
	assert.True(t, tx.Token)
	assert.Equal(t, 6, tx.Amount.Decimals())
	assert.True(t, tx.Fee.IsZero())
}

func TestLoadTransaction(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	node := newFakeNode()
	raw := rawCoinTx("0x09", own(), destination, 15)
	node.txs["0x09"] = &raw
	w := loadedWallet(t, network.BinanceSmart, coinAsset(network.BinanceSmart), node)

	tx := w.LoadTransaction(ctx, "0x09")
	require.NotNil(t, tx)
	assert.Equal(t, history.StatusSuccess, tx.Status)
	assert.Equal(t, uint64(1), tx.Nonce)

	assert.Nil(t, w.LoadTransaction(ctx, "0xmissing"))
}

func TestLoadTransaction_UsesHistorySession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	node := newFakeNode()
	node.pages[0] = indexer.Page{Txs: []indexer.Tx{rawCoinTx("0x02", own(), destination, 0)}}
	w := loadedWallet(t, network.BinanceSmart, coinAsset(network.BinanceSmart), node)

	_, err := w.LoadTransactions(ctx, 0)
	require.NoError(t, err)

	// The indexer does not know 0x02 by id, so only the session can answer.
	tx := w.LoadTransaction(ctx, "0x02")
	require.NotNil(t, tx)
	assert.Equal(t, history.StatusPending, tx.Status)
	assert.True(t, tx.RBF)

	node.pages[0] = indexer.Page{}
	_, err = w.LoadTransactions(ctx, 0)
	require.NoError(t, err)
	assert.Nil(t, w.LoadTransaction(ctx, "0x02"))
}
