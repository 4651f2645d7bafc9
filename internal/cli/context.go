package cli

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mrz1836/evmwallet/internal/config"
	"github.com/mrz1836/evmwallet/internal/indexer"
	"github.com/mrz1836/evmwallet/internal/network"
	"github.com/mrz1836/evmwallet/internal/output"
	"github.com/mrz1836/evmwallet/internal/seed"
	"github.com/mrz1836/evmwallet/internal/storage"
	"github.com/mrz1836/evmwallet/internal/transport"
	"github.com/mrz1836/evmwallet/internal/wallet"
)

// publicKeyKey stores the wallet public key next to the cached balance so
// read-only commands can reopen the wallet without the seed.
const publicKeyKey = "publickey"

// CommandContext holds the wallet and its dependencies for one command.
type CommandContext struct {
	Config    *config.Config
	Logger    zerolog.Logger
	Formatter *output.Formatter
	Wallet    *wallet.Wallet

	store   storage.Store
	seed    *seed.SecureBytes
	closers []io.Closer
}

// openWallet builds the wallet described by the configuration. When
// needSeed is set, or no public key has been cached yet, the mnemonic is
// read from the vault or a prompt.
func openWallet(cmd *cobra.Command, needSeed bool) (*CommandContext, error) {
	c := &CommandContext{Config: cfg, Logger: logger, Formatter: formatter}

	if err := config.ValidateIndexerURL(cfg.GetIndexerURL()); err != nil {
		return nil, err
	}

	store, closer, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	c.store = store
	if closer != nil {
		c.closers = append(c.closers, closer)
	}

	node, err := newNode(cfg, logger)
	if err != nil {
		c.Close()
		return nil, err
	}

	w, err := wallet.New(wallet.Options{
		Asset:            assetFromConfig(cfg.Asset),
		Platform:         cfg.GetPlatform(),
		Development:      cfg.IsDevelopment(),
		PlatformDecimals: cfg.PlatformDecimals,
		Storage:          store,
		Node:             node,
		Settings:         wallet.Settings{BIP44: cfg.Wallet.BIP44},
		Logger:           logger,
	})
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Wallet = w

	if !needSeed && c.openPublic() {
		return c, nil
	}

	if err := c.unlock(); err != nil {
		c.Close()
		return nil, err
	}
	if err := w.Create(c.seed.Bytes()); err != nil {
		c.Close()
		return nil, err
	}
	c.rememberPublicKey(cmd.Context())

	return c, nil
}

// openPublic reopens the wallet from the cached public key.
func (c *CommandContext) openPublic() bool {
	raw, ok := c.store.Get(publicKeyKey)
	if !ok {
		return false
	}
	var pk wallet.PublicKey
	if err := json.Unmarshal([]byte(raw), &pk); err != nil {
		c.Logger.Debug().Err(err).Msg("ignoring malformed cached public key")
		return false
	}
	if err := c.Wallet.Open(pk); err != nil {
		return false
	}
	return c.Wallet.State() == wallet.StateInitialized
}

func (c *CommandContext) rememberPublicKey(ctx context.Context) {
	data, err := json.Marshal(c.Wallet.PublicKey())
	if err != nil {
		return
	}
	c.store.Set(publicKeyKey, string(data))
	if ctx == nil {
		ctx = context.Background()
	}
	if err := c.store.Save(ctx); err != nil {
		c.Logger.Warn().Err(err).Msg("caching public key failed")
	}
}

// unlock loads the BIP-39 seed into secure memory.
func (c *CommandContext) unlock() error {
	path := seed.VaultPath(c.Config.GetHome())

	var (
		mnemonic *seed.SecureBytes
		err      error
	)
	if seed.VaultExists(path) {
		var passphrase []byte
		passphrase, err = promptSecretFn("Vault passphrase: ")
		if err != nil {
			return err
		}
		mnemonic, err = seed.ReadVault(path, string(passphrase))
		seed.Zero(passphrase)
	} else {
		mnemonic, err = promptMnemonic()
	}
	if err != nil {
		return err
	}
	defer mnemonic.Destroy()

	raw, err := seed.ToSeed(mnemonic.String(), "")
	if err != nil {
		return err
	}
	c.seed = seed.SecureBytesFromSlice(raw)
	seed.Zero(raw)

	if c.Config.GetSecurity().MemoryLock && !c.seed.IsLocked() {
		c.Logger.Warn().Msg("seed memory could not be locked")
	}
	return nil
}

// Seed returns the unlocked seed, nil for public-only sessions.
func (c *CommandContext) Seed() []byte {
	if c.seed == nil {
		return nil
	}
	return c.seed.Bytes()
}

// Close wipes the seed and releases storage.
func (c *CommandContext) Close() {
	if c.Wallet != nil {
		c.Wallet.Cleanup()
	}
	if c.seed != nil {
		c.seed.Destroy()
	}
	for _, closer := range c.closers {
		_ = closer.Close()
	}
	c.closers = nil
}

// openStore opens the configured balance store, namespaced by asset id.
func openStore(cfg *config.Config) (storage.Store, io.Closer, error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		return storage.NewMemory(), nil, nil
	case config.StorageFile:
		f, err := storage.OpenFile(cfg.GetStoragePath())
		return f, nil, err
	default:
		db, err := storage.OpenBadger(cfg.GetStoragePath())
		if err != nil {
			return nil, nil, err
		}
		ns, err := db.Namespace(cfg.Asset.ID)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return ns, db, nil
	}
}

// newNode builds the indexer client over a rate-limited, retrying transport.
func newNode(cfg *config.Config, logger zerolog.Logger) (*indexer.Client, error) {
	retry := transport.RetryConfig{
		MaxAttempts: cfg.Network.Retry.MaxAttempts,
		BaseDelay:   time.Duration(cfg.Network.Retry.BaseDelayMs) * time.Millisecond,
		MaxDelay:    time.Duration(cfg.Network.Retry.MaxDelayMs) * time.Millisecond,
	}
	h, err := transport.NewHTTP(cfg.GetIndexerURL(), &transport.Options{
		RateLimiter: transport.NewRateLimiter(cfg.Network.RatePerSecond, cfg.Network.Burst),
		Retry:       &retry,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}
	return indexer.New(h, logger), nil
}

func assetFromConfig(a config.AssetConfig) wallet.Asset {
	asset := wallet.Asset{ID: a.ID, Symbol: a.Symbol, Decimals: a.Decimals, Kind: wallet.Coin{}}
	if a.Type == config.AssetToken {
		asset.Kind = wallet.Token{Address: a.Address}
	}
	return asset
}

// contextWithTimeout returns a timeout context rooted in the command context.
func contextWithTimeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}
	d := time.Duration(cfg.Network.TimeoutSeconds) * time.Second
	if d <= 0 {
		d = 30 * time.Second
	}
	return context.WithTimeout(base, d)
}

// explorerName returns the network name for messages.
func explorerName(p network.Profile) string {
	if p.Name != "" {
		return p.Name
	}
	return string(p.Platform)
}
