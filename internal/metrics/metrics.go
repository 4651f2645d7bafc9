// Package metrics provides application-level metrics collection.
// This is a lightweight metrics foundation using atomic counters.
package metrics

import (
	"sync/atomic"
	"time"
)

// Metrics holds application metrics using atomic counters for thread safety.
type Metrics struct {
	// Indexer metrics
	indexerCallsTotal   atomic.Int64
	indexerErrorsTotal  atomic.Int64
	indexerLatencyNanos atomic.Int64
	indexerRetries      atomic.Int64

	// Wallet operation metrics
	walletOpsTotal  atomic.Int64
	walletOpsErrors atomic.Int64
	txSubmitted     atomic.Int64

	// Fee cache metrics
	feeCacheHits   atomic.Int64
	feeCacheMisses atomic.Int64
}

// Global is the global metrics instance.
//
//nolint:gochecknoglobals // Intentional global for metrics access
var Global = &Metrics{}

// RecordIndexerCall records an indexer request with its duration and outcome.
func (m *Metrics) RecordIndexerCall(duration time.Duration, err error) {
	m.indexerCallsTotal.Add(1)
	m.indexerLatencyNanos.Add(duration.Nanoseconds())
	if err != nil {
		m.indexerErrorsTotal.Add(1)
	}
}

// RecordIndexerRetry records a retried indexer request.
func (m *Metrics) RecordIndexerRetry() {
	m.indexerRetries.Add(1)
}

// RecordWalletOp records a wallet operation.
func (m *Metrics) RecordWalletOp(err error) {
	m.walletOpsTotal.Add(1)
	if err != nil {
		m.walletOpsErrors.Add(1)
	}
}

// RecordTxSubmitted records a transaction accepted by the indexer.
func (m *Metrics) RecordTxSubmitted() {
	m.txSubmitted.Add(1)
}

// RecordFeeCacheHit records a memoized fee lookup.
func (m *Metrics) RecordFeeCacheHit() {
	m.feeCacheHits.Add(1)
}

// RecordFeeCacheMiss records a fee lookup that went to the indexer.
func (m *Metrics) RecordFeeCacheMiss() {
	m.feeCacheMisses.Add(1)
}

// Snapshot is a point-in-time copy of all metrics.
type Snapshot struct {
	IndexerCallsTotal   int64
	IndexerErrorsTotal  int64
	IndexerLatencyNanos int64
	IndexerRetries      int64
	WalletOpsTotal      int64
	WalletOpsErrors     int64
	TxSubmitted         int64
	FeeCacheHits        int64
	FeeCacheMisses      int64
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		IndexerCallsTotal:   m.indexerCallsTotal.Load(),
		IndexerErrorsTotal:  m.indexerErrorsTotal.Load(),
		IndexerLatencyNanos: m.indexerLatencyNanos.Load(),
		IndexerRetries:      m.indexerRetries.Load(),
		WalletOpsTotal:      m.walletOpsTotal.Load(),
		WalletOpsErrors:     m.walletOpsErrors.Load(),
		TxSubmitted:         m.txSubmitted.Load(),
		FeeCacheHits:        m.feeCacheHits.Load(),
		FeeCacheMisses:      m.feeCacheMisses.Load(),
	}
}

// IndexerLatencyAvgMs returns the average indexer latency in milliseconds.
// Returns 0 if no calls have been made.
func (m *Metrics) IndexerLatencyAvgMs() float64 {
	calls := m.indexerCallsTotal.Load()
	if calls == 0 {
		return 0
	}
	return float64(m.indexerLatencyNanos.Load()) / float64(calls) / 1e6
}

// FeeCacheHitRate returns the fee cache hit rate as a percentage (0-100).
func (m *Metrics) FeeCacheHitRate() float64 {
	hits := m.feeCacheHits.Load()
	total := hits + m.feeCacheMisses.Load()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// Reset resets all metrics to zero.
func (m *Metrics) Reset() {
	m.indexerCallsTotal.Store(0)
	m.indexerErrorsTotal.Store(0)
	m.indexerLatencyNanos.Store(0)
	m.indexerRetries.Store(0)
	m.walletOpsTotal.Store(0)
	m.walletOpsErrors.Store(0)
	m.txSubmitted.Store(0)
	m.feeCacheHits.Store(0)
	m.feeCacheMisses.Store(0)
}
