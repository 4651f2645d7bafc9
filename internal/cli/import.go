package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrz1836/evmwallet/internal/seed"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var importYes bool

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Sweep funds from a private key into this wallet",
	Long: `Read a hex private key (hidden input), show what can be moved from its
address after fees, and sweep it into this wallet on confirmation. The
imported key pays the network fee.`,
	RunE: runImport,
}

func runImport(cmd *cobra.Command, _ []string) error {
	c, err := openWallet(cmd, false)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := contextWithTimeout(cmd)
	defer cancel()

	w := c.Wallet
	if err := w.Load(ctx); err != nil {
		return err
	}

	raw, err := promptSecretFn("Private key (hex): ")
	if err != nil {
		return err
	}
	defer seed.Zero(raw)
	key := string(raw)

	sendable, err := w.EstimateImport(ctx, key)
	if err != nil {
		return err
	}

	out(cmd.ErrOrStderr(), "Import %s %s into %s\n", sendable.String(), w.Asset().Symbol, w.Address())
	if err := confirmOrCancel(importYes, "Sweep these funds?"); err != nil {
		return err
	}

	res, err := w.CreateImport(ctx, key)
	if err != nil {
		return err
	}
	return printSent(cmd, c, res)
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	importCmd.Flags().BoolVarP(&importYes, "yes", "y", false, "skip the confirmation prompt")

	rootCmd.AddCommand(importCmd)
}
