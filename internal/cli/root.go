// Package cli implements the evmwallet command-line interface.
//
// This package uses global variables to manage CLI state, which is the standard
// pattern for Cobra-based CLI applications. The globals are initialized in
// PersistentPreRunE and cleaned up in PersistentPostRun.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mrz1836/evmwallet/internal/config"
	"github.com/mrz1836/evmwallet/internal/log"
	"github.com/mrz1836/evmwallet/internal/output"
	walleterr "github.com/mrz1836/evmwallet/pkg/errors"
)

var (
	// Global flags
	homeDir      string
	configFile   string
	logLevel     string
	platformName string
	development  bool
	outputFormat string

	// Global state initialized in PersistentPreRunE
	cfg       *config.Config
	logger    = log.Nop()
	logCloser io.Closer
	formatter *output.Formatter
)

// rootCmd is the base command when called without any subcommands.
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var rootCmd = &cobra.Command{
	Use:   "evmwallet",
	Short: "A non-custodial wallet for EVM chains",
	Long: `evmwallet holds one coin or ERC-20 token on one EVM network.

It derives its key from a BIP-39 mnemonic, talks to an indexer for
balances, fees and history, and signs transactions locally. Keys never
leave the machine.

Example:
  evmwallet seed encrypt
  evmwallet balance --platform base
  evmwallet send --to 0x... --amount 0.1`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initGlobals(cmd)
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		cleanup()
	},
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		format := output.FormatText
		if formatter != nil {
			format = formatter.Format()
		}
		_ = output.FormatError(os.Stderr, err, format)
		return err
	}
	return nil
}

// ExitCode returns the process exit code for an error.
func ExitCode(err error) int {
	return walleterr.ExitCode(err)
}

// initGlobals loads configuration and builds the logger and formatter.
func initGlobals(cmd *cobra.Command) error {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return err
	}

	home := homeDir
	if home == "" {
		home = os.Getenv(config.EnvHome)
	}
	if home == "" {
		home = config.DefaultHome()
	}

	if err := config.LoadDotEnv(home); err != nil {
		return err
	}

	path := configFile
	if path == "" {
		path = config.Path(home)
	}
	loaded, err := config.Load(path)
	switch {
	case err == nil:
		cfg = loaded
	case errors.Is(err, fs.ErrNotExist) && configFile == "":
		cfg = config.Defaults()
	default:
		return err
	}
	// The directory holding the config is the home
	cfg.Home = home

	config.ApplyEnvironment(cfg)

	// Command-line flags win over file and environment
	if homeDir != "" {
		cfg.Home = homeDir
	}
	if platformName != "" {
		cfg.Network.Platform = strings.ToLower(strings.TrimSpace(platformName))
	}
	if cmd.Flags().Changed("development") {
		cfg.Network.Development = development
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, logCloser, err = log.NewFile(cfg.GetLoggingFile(), cfg.GetLoggingLevel(), cfg.Logging.Format)
	if err != nil {
		// Use a null logger if the file cannot be opened
		logger, logCloser = log.Nop(), nil
	}
	logger = log.WithComponent(logger, "cli")

	formatter = output.NewFormatter(format, cmd.OutOrStdout())

	return nil
}

// cleanup releases resources.
func cleanup() {
	if logCloser != nil {
		_ = logCloser.Close()
		logCloser = nil
	}
}

// Config returns the global configuration.
func Config() *config.Config {
	return cfg
}

// Logger returns the global logger.
func Logger() zerolog.Logger {
	return logger
}

// out is a helper for CLI output that ignores write errors (standard pattern for CLI tools).
//
//nolint:errcheck // CLI output writes are intentionally unchecked
func out(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}

// outln is a helper for CLI output with newline.
//
//nolint:errcheck // CLI output writes are intentionally unchecked
func outln(w io.Writer, args ...any) {
	fmt.Fprintln(w, args...)
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "evmwallet data directory (default: ~/.evmwallet)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: <home>/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn, error, off")
	rootCmd.PersistentFlags().StringVar(&platformName, "platform", "", "platform, e.g. ethereum, base, binance-smart-chain")
	rootCmd.PersistentFlags().BoolVar(&development, "development", false, "use the platform testnet")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "auto", "output format: text, json, auto")
}
