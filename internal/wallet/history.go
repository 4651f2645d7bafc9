package wallet

import (
	"context"

	"github.com/mrz1836/evmwallet/internal/history"
	"github.com/mrz1836/evmwallet/internal/indexer"
)

// TransactionPage is one page of normalized history.
type TransactionPage struct {
	Transactions []*history.Transaction
	HasMore      bool
	Cursor       int // pass to the next LoadTransactions call
}

// LoadTransactions returns the history page at cursor. Cursor 0 starts
// over and drops previously cached entries.
func (w *Wallet) LoadTransactions(ctx context.Context, cursor int) (*TransactionPage, error) {
	address, err := w.ready()
	if err != nil {
		return nil, err
	}

	if cursor == 0 {
		w.mu.Lock()
		w.transactions = make(map[string]*history.Transaction)
		w.mu.Unlock()
	}

	var page indexer.Page
	switch kind := w.asset.Kind.(type) {
	case Token:
		page, err = w.node.TokenTransactions(ctx, kind.Address, address, cursor)
	default:
		page, err = w.node.Transactions(ctx, address, cursor)
	}
	if err != nil {
		return nil, err
	}

	txs := w.transformer.TransformAll(page.Txs)
	w.mu.Lock()
	for _, tx := range txs {
		w.transactions[tx.ID] = tx
	}
	w.mu.Unlock()

	w.log.Debug().Stringer("page", page).Msg("history loaded")
	return &TransactionPage{Transactions: txs, HasMore: page.HasMore, Cursor: page.Cursor}, nil
}

// LoadTransaction returns the transaction seen by the current history
// session, or fetches it. It returns nil when the record cannot be loaded.
func (w *Wallet) LoadTransaction(ctx context.Context, id string) *history.Transaction {
	if _, err := w.ready(); err != nil {
		return nil
	}
	if tx, ok := w.CachedTransaction(id); ok {
		return tx
	}
	raw, err := w.node.Transaction(ctx, id)
	if err != nil {
		w.log.Debug().Err(err).Str("tx_id", id).Msg("loading transaction failed")
		return nil
	}

	tx := w.transformer.Transform(raw)
	w.mu.Lock()
	w.transactions[tx.ID] = tx
	w.mu.Unlock()
	return tx
}

// CachedTransaction returns a transaction seen by a previous load.
func (w *Wallet) CachedTransaction(id string) (*history.Transaction, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	tx, ok := w.transactions[id]
	return tx, ok
}
