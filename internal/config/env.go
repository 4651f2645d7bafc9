package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/joho/godotenv"

	walleterr "github.com/mrz1836/evmwallet/pkg/errors"
)

// Environment variable names.
const (
	EnvHome        = "EVMWALLET_HOME"
	EnvPlatform    = "EVMWALLET_PLATFORM"
	EnvDevelopment = "EVMWALLET_DEVELOPMENT"
	EnvIndexerURL  = "EVMWALLET_INDEXER_URL"
	EnvLogLevel    = "EVMWALLET_LOG_LEVEL"
	EnvStorage     = "EVMWALLET_STORAGE"
	EnvMemoryLock  = "EVMWALLET_MEMORY_LOCK"
)

// ErrInsecureIndexerURL is returned for plain-http indexers off localhost.
var ErrInsecureIndexerURL = &walleterr.WalletError{
	Code:       "INSECURE_INDEXER_URL",
	Message:    "indexer url must use https",
	Suggestion: "plain http is only accepted for localhost",
	ExitCode:   walleterr.ExitInput,
}

// LoadDotEnv reads <home>/.env into the process environment. Variables
// already set are left alone, and a missing file is not an error.
func LoadDotEnv(home string) error {
	path := strings.TrimRight(home, "/") + "/.env"
	if _, err := os.Stat(path); err != nil {
		return nil //nolint:nilerr // no .env file is fine
	}
	if err := godotenv.Load(path); err != nil {
		return walleterr.WithDetails(walleterr.ErrConfigInvalid, map[string]string{
			"path":   path,
			"reason": err.Error(),
		})
	}
	return nil
}

// ApplyEnvironment applies environment variable overrides to the configuration.
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvHome); v != "" {
		cfg.Home = v
	}

	if v := os.Getenv(EnvPlatform); v != "" {
		cfg.Network.Platform = strings.ToLower(strings.TrimSpace(v))
	}

	if v, ok := os.LookupEnv(EnvDevelopment); ok {
		cfg.Network.Development = parseBool(v)
	}

	if v := os.Getenv(EnvIndexerURL); v != "" {
		cfg.Network.IndexerURL = SanitizeURL(v)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}

	if v := os.Getenv(EnvStorage); v != "" {
		cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(v))
	}

	if v, ok := os.LookupEnv(EnvMemoryLock); ok {
		cfg.Security.MemoryLock = parseBool(v)
	}
}

// parseBool parses a boolean string value.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "1" || s == "true" || s == "yes" || s == "on" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}

// SanitizeURL trims a URL and drops whitespace and control characters left
// by copy-paste.
func SanitizeURL(raw string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
}

// ValidateIndexerURL accepts https URLs and http URLs on a loopback host.
// An empty URL is accepted; callers decide whether one is required.
func ValidateIndexerURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parsing indexer url: %w", err)
	}
	switch u.Scheme {
	case "https":
		if u.Host == "" {
			return fmt.Errorf("indexer url %q has no host", raw)
		}
		return nil
	case "http":
		if isLoopback(u.Hostname()) {
			return nil
		}
		return ErrInsecureIndexerURL
	default:
		return fmt.Errorf("unsupported indexer url scheme %q", u.Scheme)
	}
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
