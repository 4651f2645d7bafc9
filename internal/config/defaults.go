package config

// DefaultIndexerURL points at a locally run indexer.
const DefaultIndexerURL = "http://localhost:3000"

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Version: 1,
		Home:    "~/.evmwallet",
		Network: NetworkConfig{
			Platform:       "ethereum",
			IndexerURL:     DefaultIndexerURL,
			TimeoutSeconds: 30,
			RatePerSecond:  10,
			Burst:          20,
			Retry: RetryConfig{
				MaxAttempts: 3,
				BaseDelayMs: 100,
				MaxDelayMs:  5000,
			},
		},
		Asset: AssetConfig{
			ID:       "ethereum@ethereum",
			Symbol:   "ETH",
			Decimals: 18,
			Type:     AssetCoin,
		},
		PlatformDecimals: 18,
		Storage: StorageConfig{
			Driver: StorageBadger,
		},
		Security: SecurityConfig{
			MemoryLock: true,
		},
		Logging: LoggingConfig{
			Level:  "error",
			File:   "~/.evmwallet/evmwallet.log",
			Format: "json",
		},
	}
}
