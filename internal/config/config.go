// Package config provides configuration management for evmwallet.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mrz1836/evmwallet/internal/fileutil"
	"github.com/mrz1836/evmwallet/internal/network"
	walleterr "github.com/mrz1836/evmwallet/pkg/errors"
)

// Config represents the application configuration.
type Config struct {
	Version          int            `yaml:"version"`
	Home             string         `yaml:"home"`
	Network          NetworkConfig  `yaml:"network"`
	Asset            AssetConfig    `yaml:"asset"`
	PlatformDecimals int            `yaml:"platform_decimals"`
	Wallet           WalletConfig   `yaml:"wallet"`
	Storage          StorageConfig  `yaml:"storage"`
	Logging          LoggingConfig  `yaml:"logging"`
	Security         SecurityConfig `yaml:"security"`
}

// NetworkConfig selects the chain and the indexer serving it.
type NetworkConfig struct {
	Platform       string      `yaml:"platform"`
	Development    bool        `yaml:"development"`
	IndexerURL     string      `yaml:"indexer_url"`
	TimeoutSeconds int         `yaml:"timeout_seconds"`
	RatePerSecond  float64     `yaml:"rate_per_second"`
	Burst          int         `yaml:"burst"`
	Retry          RetryConfig `yaml:"retry"`
}

// RetryConfig defines indexer retry settings.
type RetryConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
	BaseDelayMs int `yaml:"base_delay_ms"`
	MaxDelayMs  int `yaml:"max_delay_ms"`
}

// AssetConfig describes the asset the wallet holds.
type AssetConfig struct {
	ID       string `yaml:"id"`
	Symbol   string `yaml:"symbol"`
	Decimals int    `yaml:"decimals"`
	Type     string `yaml:"type"`              // coin or token
	Address  string `yaml:"address,omitempty"` // token contract
}

// WalletConfig defines key derivation settings.
type WalletConfig struct {
	BIP44 string `yaml:"bip44,omitempty"`
}

// StorageConfig selects where the cached balance is kept.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path,omitempty"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	File   string `yaml:"file"`
	Format string `yaml:"format"`
}

// SecurityConfig defines security settings.
type SecurityConfig struct {
	MemoryLock bool `yaml:"memory_lock"`
}

// Asset types.
const (
	AssetCoin  = "coin"
	AssetToken = "token"
)

// Storage drivers.
const (
	StorageBadger = "badger"
	StorageFile   = "file"
	StorageMemory = "memory"
)

// Load reads configuration from the specified file. Missing fields keep
// their defaults.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config file path is from validated user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, walleterr.WithDetails(walleterr.ErrConfigInvalid, map[string]string{
			"path":   path,
			"reason": err.Error(),
		})
	}

	return cfg, nil
}

// Save writes configuration to the specified file.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return fileutil.WriteAtomic(path, data, 0o600)
}

// Path returns the default config file path.
func Path(home string) string {
	return filepath.Join(home, "config.yaml")
}

// Validate checks the platform, the asset and the storage driver.
func (c *Config) Validate() error {
	invalid := func(field, reason string) error {
		return walleterr.WithDetails(walleterr.ErrConfigInvalid, map[string]string{
			"field":  field,
			"reason": reason,
		})
	}

	if _, err := network.Lookup(network.Platform(c.Network.Platform), c.Network.Development); err != nil {
		return invalid("network.platform", fmt.Sprintf("unknown platform %q", c.Network.Platform))
	}
	if err := ValidateIndexerURL(c.Network.IndexerURL); err != nil {
		return invalid("network.indexer_url", err.Error())
	}
	if c.Network.IndexerURL == "" {
		return invalid("network.indexer_url", "indexer url is required")
	}

	switch c.Asset.Type {
	case AssetCoin:
	case AssetToken:
		if c.Asset.Address == "" {
			return invalid("asset.address", "token address is required")
		}
	default:
		return invalid("asset.type", fmt.Sprintf("unsupported asset type %q", c.Asset.Type))
	}
	if c.Asset.Decimals < 0 || c.Asset.Decimals > 36 {
		return invalid("asset.decimals", "decimals must be between 0 and 36")
	}
	if c.PlatformDecimals < 0 || c.PlatformDecimals > 36 {
		return invalid("platform_decimals", "decimals must be between 0 and 36")
	}

	switch c.Storage.Driver {
	case StorageBadger, StorageFile, StorageMemory:
	default:
		return invalid("storage.driver", fmt.Sprintf("unsupported storage driver %q", c.Storage.Driver))
	}
	return nil
}

// GetHome returns the evmwallet home directory path.
func (c *Config) GetHome() string {
	return c.Home
}

// GetPlatform returns the configured platform.
func (c *Config) GetPlatform() network.Platform {
	return network.Platform(c.Network.Platform)
}

// GetIndexerURL returns the indexer base URL.
func (c *Config) GetIndexerURL() string {
	return c.Network.IndexerURL
}

// IsDevelopment reports whether testnet profiles are used.
func (c *Config) IsDevelopment() bool {
	return c.Network.Development
}

// GetLoggingLevel returns the configured logging level.
func (c *Config) GetLoggingLevel() string {
	return c.Logging.Level
}

// GetLoggingFile returns the configured log file path.
func (c *Config) GetLoggingFile() string {
	return c.Logging.File
}

// GetStoragePath returns the storage path, defaulting under home.
func (c *Config) GetStoragePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	switch c.Storage.Driver {
	case StorageFile:
		return filepath.Join(c.Home, "balances", c.Asset.ID+".json")
	default:
		return filepath.Join(c.Home, "db")
	}
}

// GetSecurity returns the security configuration.
func (c *Config) GetSecurity() SecurityConfig {
	return c.Security
}

// DefaultHome returns the default evmwallet home directory.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".evmwallet"
	}
	return filepath.Join(home, ".evmwallet")
}
