package cli

import (
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	walleterr "github.com/mrz1836/evmwallet/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var replaceYes bool

//nolint:gochecknoglobals // read-only
var hundred = decimal.NewFromInt(100)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var replaceCmd = &cobra.Command{
	Use:   "replace <txid>",
	Short: "Speed up a pending transaction",
	Long: `Resubmit a pending outgoing transaction with the same nonce and a higher
fee. The extra fee is shown before anything is signed.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplace,
}

func runReplace(cmd *cobra.Command, args []string) error {
	c, err := openWallet(cmd, true)
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

	tx := w.LoadTransaction(ctx, args[0])
	if tx == nil {
		return walleterr.WithDetails(walleterr.ErrNotFound, map[string]string{"txid": args[0]})
	}
	if !tx.RBF {
		return walleterr.WithDetails(walleterr.ErrInvalidState, map[string]string{
			"txid":   tx.ID,
			"reason": "transaction cannot be replaced",
		})
	}

	est, err := w.EstimateReplacement(ctx, tx)
	if err != nil {
		return err
	}

	out(cmd.ErrOrStderr(), "Raise fee by %s%% (extra %s)\n", est.Percent.Mul(hundred).String(), est.Fee.String())
	if err := confirmOrCancel(replaceYes, "Submit the replacement?"); err != nil {
		return err
	}

	res, err := w.CreateReplacementTransaction(ctx, tx, c.Seed())
	if err != nil {
		return err
	}
	return printSent(cmd, c, res)
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	replaceCmd.Flags().BoolVarP(&replaceYes, "yes", "y", false, "skip the confirmation prompt")

	rootCmd.AddCommand(replaceCmd)
}
