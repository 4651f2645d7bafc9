// Package storage persists small per-wallet key values, such as the cached
// balance, across sessions.
package storage

import (
	"context"
	"sync"

	walleterr "github.com/mrz1836/evmwallet/pkg/errors"
)

// ErrStorage indicates the backing store could not be read or written.
var ErrStorage = &walleterr.WalletError{
	Code:     "STORAGE_ERROR",
	Message:  "wallet storage failed",
	ExitCode: walleterr.ExitGeneral,
}

// Store is the key-value storage a wallet writes through. Set changes are
// buffered until Save.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Save(ctx context.Context) error
}

// values is the buffered map shared by the implementations.
type values struct {
	mu   sync.RWMutex
	data map[string]string
}

func newValues(data map[string]string) *values {
	if data == nil {
		data = make(map[string]string)
	}
	return &values{data: data}
}

// Get returns the value stored under key.
func (v *values) Get(key string) (string, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	val, ok := v.data[key]
	return val, ok
}

// Set buffers value under key.
func (v *values) Set(key, value string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.data[key] = value
}

func (v *values) snapshot() map[string]string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make(map[string]string, len(v.data))
	for k, val := range v.data {
		out[k] = val
	}
	return out
}

// Memory is a Store that keeps values in process only.
type Memory struct {
	*values

	saveMu sync.Mutex
	saves  int
}

// NewMemory creates an empty memory store.
func NewMemory() *Memory {
	return &Memory{values: newValues(nil)}
}

// Save records the call; there is nothing to flush.
func (m *Memory) Save(_ context.Context) error {
	m.saveMu.Lock()
	m.saves++
	m.saveMu.Unlock()
	return nil
}

// Saves returns how many times Save was called.
func (m *Memory) Saves() int {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()
	return m.saves
}
