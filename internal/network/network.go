// Package network holds the static per-chain profiles the wallet is bound to.
package network

import (
	"math/big"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	walleterr "github.com/mrz1836/evmwallet/pkg/errors"
)

// Platform identifies an EVM platform.
type Platform string

// Supported platforms.
const (
	Ethereum        Platform = "ethereum"
	EthereumClassic Platform = "ethereum-classic"
	BinanceSmart    Platform = "binance-smart-chain"
	Polygon         Platform = "polygon"
	AvalancheC      Platform = "avalanche-c-chain"
	Arbitrum        Platform = "arbitrum"
	Optimism        Platform = "optimism"
	Base            Platform = "base"
	Fantom          Platform = "fantom"
)

// Default gas limits.
const (
	CoinGasLimit     uint64 = 21000
	TokenGasLimit    uint64 = 200000
	ContractGasLimit uint64 = 300000
)

// ErrUnknownPlatform is returned for a platform without a profile.
var ErrUnknownPlatform = &walleterr.WalletError{
	Code:     "UNKNOWN_PLATFORM",
	Message:  "unknown platform",
	ExitCode: walleterr.ExitInput,
}

// Dialect is the fee model a network uses.
type Dialect int

// Fee dialects.
const (
	DialectLegacy Dialect = iota
	DialectEIP1559
	DialectL2
)

// String returns the dialect name.
func (d Dialect) String() string {
	switch d {
	case DialectLegacy:
		return "legacy"
	case DialectEIP1559:
		return "eip1559"
	case DialectL2:
		return "eip1559+l2"
	default:
		return "unknown"
	}
}

// Profile is the immutable configuration of one chain.
type Profile struct {
	Platform      Platform
	Name          string
	ChainID       int64
	MinConf       int64
	EIP1559       bool
	AdditionalFee bool // L2 data-posting surcharge reported by the indexer
	RBFFactor     decimal.Decimal
	MaxGasPrice   *big.Int // ceiling for a bumped fee-per-gas
	CoinGasLimit  uint64
	TokenGasLimit uint64
	// ContractGasLimit is used for staking and other contract calls.
	ContractGasLimit uint64
	BIP44            string
	TxURL            string // contains ${txId}
	TokenURL         string // contains ${tokenAddress}
	Staking          bool
}

// Dialect returns the fee dialect of the profile.
func (p Profile) Dialect() Dialect {
	switch {
	case p.EIP1559 && p.AdditionalFee:
		return DialectL2
	case p.EIP1559:
		return DialectEIP1559
	default:
		return DialectLegacy
	}
}

// ChainIDBig returns the chain id as *big.Int.
func (p Profile) ChainIDBig() *big.Int {
	return big.NewInt(p.ChainID)
}

// TransactionURL renders the explorer link for a transaction id.
func (p Profile) TransactionURL(txID string) string {
	return strings.ReplaceAll(p.TxURL, "${txId}", txID)
}

// TokenPageURL renders the explorer link for a token contract.
func (p Profile) TokenPageURL(tokenAddress string) string {
	return strings.ReplaceAll(p.TokenURL, "${tokenAddress}", tokenAddress)
}

// Lookup resolves the profile for platform on mainnet or, when development
// is set, on its testnet.
func Lookup(platform Platform, development bool) (Profile, error) {
	table := mainnet
	if development {
		table = testnet
	}
	p, ok := table[platform]
	if !ok {
		return Profile{}, walleterr.WithDetails(ErrUnknownPlatform, map[string]string{
			"platform": string(platform),
		})
	}
	return p, nil
}

// Platforms returns every platform with a profile, sorted.
func Platforms() []Platform {
	out := make([]Platform, 0, len(mainnet))
	for p := range mainnet {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsLegacyMasterPath reports whether the bare "m" path of this platform
// derives from the hex encoding of the seed.
func (p Platform) IsLegacyMasterPath() bool {
	return p == Ethereum || p == EthereumClassic
}
