// Package wallet is the EVM wallet core: balance bookkeeping, fee and
// amount validation, transaction construction, replacement, import sweeps
// and staking for one asset on one network.
package wallet

import (
	"context"
	"math/big"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mrz1836/evmwallet/internal/evm"
	"github.com/mrz1836/evmwallet/internal/fee"
	"github.com/mrz1836/evmwallet/internal/history"
	"github.com/mrz1836/evmwallet/internal/indexer"
	"github.com/mrz1836/evmwallet/internal/network"
	"github.com/mrz1836/evmwallet/internal/storage"
	"github.com/mrz1836/evmwallet/pkg/amount"
	walleterr "github.com/mrz1836/evmwallet/pkg/errors"
)

// balanceKey is the storage key of the cached kind balance.
const balanceKey = "balance"

// dust is the smallest transferable amount in base units.
//
//nolint:gochecknoglobals // read-only
var dust = big.NewInt(1)

// Node is the indexer surface the wallet consumes. *indexer.Client
// implements it.
type Node interface {
	fee.Source
	CoinBalance(ctx context.Context, address string, minConf int64) (indexer.Balance, error)
	TokenBalance(ctx context.Context, token, address string, minConf int64) (indexer.Balance, error)
	TxsCount(ctx context.Context, address string) (uint64, error)
	SendTransaction(ctx context.Context, rawtx string) (string, error)
	Transactions(ctx context.Context, address string, cursor int) (indexer.Page, error)
	TokenTransactions(ctx context.Context, token, address string, cursor int) (indexer.Page, error)
	Transaction(ctx context.Context, id string) (*indexer.Tx, error)
	Staking(ctx context.Context, address string) (indexer.StakingInfo, error)
	PendingRequests(ctx context.Context, address string) (indexer.PendingRequests, error)
	StakeCall(ctx context.Context, address string, amount *big.Int) (indexer.ContractCall, error)
	UnstakeCall(ctx context.Context, address string, amount *big.Int) (indexer.ContractCall, error)
	ClaimCall(ctx context.Context, address string) (indexer.ContractCall, error)
}

// AssetKind is Coin or Token.
type AssetKind interface {
	assetKind()
}

// Coin is the native currency of the platform.
type Coin struct{}

// Token is a fungible token contract on the platform.
type Token struct {
	Address string
}

func (Coin) assetKind()  {}
func (Token) assetKind() {}

// Asset describes what the wallet holds.
type Asset struct {
	ID       string // e.g. "tether@ethereum"
	Symbol   string
	Decimals int
	Kind     AssetKind
}

// Settings are the user-adjustable wallet settings.
type Settings struct {
	BIP44 string
}

// Options configure a Wallet.
type Options struct {
	Asset       Asset
	Platform    network.Platform
	Development bool
	// PlatformDecimals is the scale of the fee currency. Defaults to 18.
	PlatformDecimals int
	Storage          storage.Store
	Node             Node
	Settings         Settings
	Logger           zerolog.Logger
}

// Wallet is bound to one asset on one network. Transaction-issuing calls
// must be serialized by the caller because nonces are not reserved.
type Wallet struct {
	asset            Asset
	profile          network.Profile
	platformDecimals int
	settings         Settings
	development      bool
	gasLimit         uint64

	node    Node
	storage storage.Store
	fees    *fee.Engine
	log     zerolog.Logger

	mu           sync.Mutex
	state        State
	address      string // lower-case
	checksum     string
	bal          balances
	transactions map[string]*history.Transaction
	transformer  *history.Transformer

	imports importMemo
}

// New creates a wallet in state Created.
func New(opts Options) (*Wallet, error) {
	profile, err := network.Lookup(opts.Platform, opts.Development)
	if err != nil {
		return nil, err
	}
	if opts.Node == nil {
		return nil, walleterr.WithDetails(walleterr.ErrInvalidInput, map[string]string{"reason": "indexer is required"})
	}
	if opts.Storage == nil {
		opts.Storage = storage.NewMemory()
	}

	var gasLimit uint64
	switch kind := opts.Asset.Kind.(type) {
	case Coin:
		gasLimit = profile.CoinGasLimit
	case Token:
		addr, err := evm.NormalizeAddress(kind.Address)
		if err != nil {
			return nil, err
		}
		opts.Asset.Kind = Token{Address: addr}
		gasLimit = profile.TokenGasLimit
	default:
		return nil, walleterr.ErrUnsupportedAssetKind
	}

	if opts.PlatformDecimals == 0 {
		opts.PlatformDecimals = 18
	}
	if _, ok := opts.Asset.Kind.(Coin); ok {
		opts.PlatformDecimals = opts.Asset.Decimals
	}
	if opts.Settings.BIP44 == "" {
		opts.Settings.BIP44 = profile.BIP44
	}

	logger := opts.Logger.With().
		Str("component", "wallet").
		Str("asset", opts.Asset.ID).
		Str("platform", string(profile.Platform)).
		Logger()

	return &Wallet{
		asset:            opts.Asset,
		profile:          profile,
		platformDecimals: opts.PlatformDecimals,
		settings:         opts.Settings,
		development:      opts.Development,
		gasLimit:         gasLimit,
		node:             opts.Node,
		storage:          opts.Storage,
		fees:             fee.NewEngine(opts.Node, profile, logger),
		log:              logger,
		state:            StateCreated,
		bal:              newBalances(),
		transactions:     make(map[string]*history.Transaction),
	}, nil
}

// State returns the current lifecycle state.
func (w *Wallet) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Wallet) setState(s State) {
	w.mu.Lock()
	prev := w.state
	w.state = s
	w.mu.Unlock()
	if prev != s {
		w.log.Debug().Stringer("from", prev).Stringer("to", s).Msg("state changed")
	}
}

// Asset returns the asset descriptor.
func (w *Wallet) Asset() Asset { return w.asset }

// Profile returns the network profile.
func (w *Wallet) Profile() network.Profile { return w.profile }

// IsImportSupported reports whether private-key sweeps are available.
func (w *Wallet) IsImportSupported() bool { return true }

// IsGasLimitSupported reports whether callers may override the gas limit.
func (w *Wallet) IsGasLimitSupported() bool { return true }

// IsSettingsSupported reports whether settings such as the derivation path
// can be changed. Only coin wallets own their settings.
func (w *Wallet) IsSettingsSupported() bool {
	_, ok := w.asset.Kind.(Coin)
	return ok
}

// IsStakingSupported reports whether the staking calls are available.
func (w *Wallet) IsStakingSupported() bool {
	_, ok := w.asset.Kind.(Coin)
	return ok && w.profile.Staking
}

// GasLimit returns the default gas limit of a transfer.
func (w *Wallet) GasLimit() uint64 { return w.gasLimit }

// Address returns the EIP-55 address, empty until initialized.
func (w *Wallet) Address() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.checksum
}

// TokenURL returns the explorer page of the token, empty for coins.
func (w *Wallet) TokenURL() string {
	if t, ok := w.asset.Kind.(Token); ok {
		return w.profile.TokenPageURL(t.Address)
	}
	return ""
}

// Settings returns the active settings.
func (w *Wallet) Settings() Settings { return w.settings }

// DefaultSettings returns the settings of the network profile.
func (w *Wallet) DefaultSettings() Settings {
	return Settings{BIP44: w.profile.BIP44}
}

// Cleanup drops memoized fee quotes, import plans and cached history.
func (w *Wallet) Cleanup() {
	w.fees.Clear()
	w.imports.clear()
	w.mu.Lock()
	w.transactions = make(map[string]*history.Transaction)
	w.mu.Unlock()
}

// ready returns the lower-case address once the wallet is initialized.
func (w *Wallet) ready() (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.state {
	case StateInitialized, StateLoading, StateLoaded, StateError:
		return w.address, nil
	default:
		return "", walleterr.WithDetails(walleterr.ErrInvalidState, map[string]string{"state": w.state.String()})
	}
}

// isToken reports whether the wallet holds a token.
func (w *Wallet) isToken() (bool, error) {
	switch w.asset.Kind.(type) {
	case Coin:
		return false, nil
	case Token:
		return true, nil
	default:
		return false, walleterr.ErrUnsupportedAssetKind
	}
}

func (w *Wallet) quantity(v *big.Int) amount.Quantity {
	return amount.New(v, w.asset.Decimals)
}

// feeQuantity denominates a fee: coin decimals for coins, platform decimals
// for tokens.
func (w *Wallet) feeQuantity(v *big.Int) amount.Quantity {
	return amount.New(v, w.platformDecimals)
}
