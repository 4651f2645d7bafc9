package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/evmwallet/internal/wallet"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	sendTo       string
	sendAmount   string
	sendGasLimit uint64
	sendYes      bool
)

// SendResponse is the JSON output of commands that submit a transaction.
type SendResponse struct {
	TxID  string `json:"txid"`
	Nonce uint64 `json:"nonce"`
	Fee   string `json:"fee"`
	URL   string `json:"url"`
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send coins or tokens",
	Long: `Validate, sign and submit a transfer. Pass "max" as the amount to send
everything the confirmed balance allows after fees.`,
	Example: `  evmwallet send --to 0x2a6a... --amount 0.25
  evmwallet send --to 0x2a6a... --amount max --yes`,
	RunE: runSend,
}

func runSend(cmd *cobra.Command, _ []string) error {
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

	value := sendAmount
	if strings.EqualFold(strings.TrimSpace(value), "max") {
		limit, err := resolveGasLimit(w, sendGasLimit)
		if err != nil {
			return err
		}
		q, err := w.EstimateMaxAmount(ctx, limit)
		if err != nil {
			return err
		}
		value = q.String()
	}

	req, err := buildRequest(w, sendTo, value, sendGasLimit)
	if err != nil {
		return err
	}
	if err := w.ValidateAmount(ctx, req); err != nil {
		return err
	}

	fee, err := w.EstimateTransactionFee(ctx, req)
	if err != nil {
		return err
	}

	wr := cmd.ErrOrStderr()
	out(wr, "Send %s %s to %s\n", req.Amount.String(), w.Asset().Symbol, req.Address)
	out(wr, "Network fee: %s\n", fee.String())
	if err := confirmOrCancel(sendYes, "Submit this transaction?"); err != nil {
		return err
	}

	res, err := w.CreateTransaction(ctx, req, c.Seed())
	if err != nil {
		return err
	}
	return printSent(cmd, c, res)
}

func printSent(cmd *cobra.Command, c *CommandContext, res *wallet.SendResult) error {
	resp := sendResponse(res)
	if c.Formatter.IsJSON() {
		return c.Formatter.Print(resp)
	}

	wr := cmd.OutOrStdout()
	out(wr, "Transaction: %s\n", resp.TxID)
	out(wr, "Fee: %s\n", resp.Fee)
	if resp.URL != "" {
		out(wr, "Explorer: %s\n", resp.URL)
	}
	return nil
}

func sendResponse(res *wallet.SendResult) SendResponse {
	return SendResponse{TxID: res.TxID, Nonce: res.Nonce, Fee: res.Fee.String(), URL: res.URL}
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	sendCmd.Flags().StringVar(&sendTo, "to", "", "destination address")
	sendCmd.Flags().StringVar(&sendAmount, "amount", "", `amount to send, or "max"`)
	sendCmd.Flags().Uint64Var(&sendGasLimit, "gas-limit", 0, "gas limit (default: wallet default)")
	sendCmd.Flags().BoolVarP(&sendYes, "yes", "y", false, "skip the confirmation prompt")
	_ = sendCmd.MarkFlagRequired("to")
	_ = sendCmd.MarkFlagRequired("amount")

	rootCmd.AddCommand(sendCmd)
}
