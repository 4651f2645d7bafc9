// Package fee resolves miner fees and gas parameters for the legacy,
// EIP-1559 and L2 surcharge fee models. Quotes are memoized until Clear.
package fee

import (
	"context"
	"math/big"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/mrz1836/evmwallet/internal/indexer"
	"github.com/mrz1836/evmwallet/internal/metrics"
	"github.com/mrz1836/evmwallet/internal/network"
)

// Source supplies fee quotes. *indexer.Client satisfies it.
type Source interface {
	GasPrice(ctx context.Context) (*big.Int, error)
	GasFees(ctx context.Context) (indexer.GasFees, error)
	AdditionalFee(ctx context.Context, token bool) (*big.Int, error)
}

// GasParams are the fee fields of a transaction. GasPrice is set for the
// legacy dialect, the two EIP-1559 fields otherwise.
type GasParams struct {
	GasPrice             *big.Int
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
}

// IsDynamicFee reports whether the params are EIP-1559 fields.
func (g GasParams) IsDynamicFee() bool {
	return g.MaxFeePerGas != nil
}

// FeePerGas returns the worst-case price per gas.
func (g GasParams) FeePerGas() *big.Int {
	if g.IsDynamicFee() {
		return new(big.Int).Set(g.MaxFeePerGas)
	}
	return new(big.Int).Set(g.GasPrice)
}

// Engine resolves fees for one wallet. It is safe for concurrent use.
type Engine struct {
	source  Source
	dialect network.Dialect
	log     zerolog.Logger

	group singleflight.Group

	mu         sync.Mutex
	generation uint64
	gasPrice   *big.Int
	gasFees    *indexer.GasFees
	additional [2]*big.Int // indexed by token
}

// NewEngine creates an engine for profile.
func NewEngine(source Source, profile network.Profile, logger zerolog.Logger) *Engine {
	return &Engine{
		source:  source,
		dialect: profile.Dialect(),
		log:     logger.With().Str("component", "fee").Logger(),
	}
}

// Dialect returns the fee model in use.
func (e *Engine) Dialect() network.Dialect {
	return e.dialect
}

// GasParams returns the fee fields for a new transaction.
func (e *Engine) GasParams(ctx context.Context) (GasParams, error) {
	switch e.dialect {
	case network.DialectEIP1559, network.DialectL2:
		fees, err := e.fees(ctx)
		if err != nil {
			return GasParams{}, err
		}
		return GasParams{
			MaxFeePerGas:         fees.MaxFeePerGas.Big(),
			MaxPriorityFeePerGas: fees.MaxPriorityFeePerGas.Big(),
		}, nil
	default:
		price, err := e.price(ctx)
		if err != nil {
			return GasParams{}, err
		}
		return GasParams{GasPrice: new(big.Int).Set(price)}, nil
	}
}

// MinerFee returns the worst-case fee for gasLimit, including the L2
// surcharge where the dialect has one. token selects the surcharge variant.
func (e *Engine) MinerFee(ctx context.Context, gasLimit uint64, token bool) (*big.Int, error) {
	params, err := e.GasParams(ctx)
	if err != nil {
		return nil, err
	}
	fee := new(big.Int).Mul(new(big.Int).SetUint64(gasLimit), params.FeePerGas())

	surcharge, err := e.Surcharge(ctx, token)
	if err != nil {
		return nil, err
	}
	return fee.Add(fee, surcharge), nil
}

// Surcharge returns the L2 data-posting fee, or zero outside the L2 dialect.
func (e *Engine) Surcharge(ctx context.Context, token bool) (*big.Int, error) {
	if e.dialect != network.DialectL2 {
		return new(big.Int), nil
	}
	idx := 0
	key := "additional:coin"
	if token {
		idx = 1
		key = "additional:token"
	}
	v, err := remember(e, key, &e.additional[idx], func() (*big.Int, error) {
		return e.source.AdditionalFee(ctx, token)
	})
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(v), nil
}

// Clear drops every memoized quote.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generation++
	e.gasPrice = nil
	e.gasFees = nil
	e.additional = [2]*big.Int{}
}

func (e *Engine) price(ctx context.Context) (*big.Int, error) {
	return remember(e, "gasPrice", &e.gasPrice, func() (*big.Int, error) {
		return e.source.GasPrice(ctx)
	})
}

func (e *Engine) fees(ctx context.Context) (*indexer.GasFees, error) {
	return remember(e, "gasFees", &e.gasFees, func() (*indexer.GasFees, error) {
		fees, err := e.source.GasFees(ctx)
		if err != nil {
			return nil, err
		}
		return &fees, nil
	})
}

// remember returns *slot, filling it through fetch on a miss. Concurrent
// misses share one fetch. Failures are not stored, and a fetch that started
// before Clear does not repopulate the slot.
func remember[T any](e *Engine, key string, slot **T, fetch func() (*T, error)) (*T, error) {
	e.mu.Lock()
	if v := *slot; v != nil {
		e.mu.Unlock()
		metrics.Global.RecordFeeCacheHit()
		return v, nil
	}
	gen := e.generation
	e.mu.Unlock()

	metrics.Global.RecordFeeCacheMiss()
	v, err, _ := e.group.Do(key, func() (any, error) {
		val, err := fetch()
		if err != nil {
			return nil, err
		}
		e.mu.Lock()
		if e.generation == gen {
			*slot = val
		}
		e.mu.Unlock()
		e.log.Debug().Str("quote", key).Msg("fee quote cached")
		return val, nil
	})
	if err != nil {
		e.log.Error().Str("quote", key).Err(err).Msg("fee quote failed")
		return nil, err
	}
	return v.(*T), nil //nolint:errcheck,forcetypeassert // fetch always returns *T
}
