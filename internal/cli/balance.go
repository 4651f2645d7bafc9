package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrz1836/evmwallet/internal/wallet"
	"github.com/mrz1836/evmwallet/pkg/amount"
	walleterr "github.com/mrz1836/evmwallet/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	feeTo       string
	feeAmount   string
	feeGasLimit uint64
	maxGasLimit uint64
)

// errCancelled is returned when the user declines a confirmation.
//
//nolint:gochecknoglobals // sentinel
var errCancelled = &walleterr.WalletError{
	Code:     "CANCELLED",
	Message:  "operation cancelled",
	ExitCode: walleterr.ExitGeneral,
}

// AddressResponse is the JSON output of the address command.
type AddressResponse struct {
	Address  string `json:"address"`
	Asset    string `json:"asset"`
	Platform string `json:"platform"`
	Network  string `json:"network"`
	TokenURL string `json:"token_url,omitempty"`
}

// BalanceResponse is the JSON output of the balance command.
type BalanceResponse struct {
	Address     string `json:"address"`
	Asset       string `json:"asset"`
	Symbol      string `json:"symbol"`
	Balance     string `json:"balance"`
	CoinBalance string `json:"coin_balance,omitempty"`
}

// AmountResponse is the JSON output of single-amount estimates.
type AmountResponse struct {
	Kind     string `json:"kind"`
	Amount   string `json:"amount"`
	GasLimit uint64 `json:"gas_limit,omitempty"`
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Show the receive address",
	RunE:  runAddress,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the wallet balance",
	Long: `Fetch the balance from the indexer and show it. For token wallets the
coin balance that pays for fees is shown as well.`,
	RunE: runBalance,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var maxCmd = &cobra.Command{
	Use:   "max",
	Short: "Show the largest amount that can be sent",
	RunE:  runMax,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var feeCmd = &cobra.Command{
	Use:   "fee",
	Short: "Estimate the network fee of a transfer",
	RunE:  runFee,
}

func runAddress(cmd *cobra.Command, _ []string) error {
	c, err := openWallet(cmd, false)
	if err != nil {
		return err
	}
	defer c.Close()

	w := c.Wallet
	resp := AddressResponse{
		Address:  w.Address(),
		Asset:    w.Asset().ID,
		Platform: string(w.Profile().Platform),
		Network:  explorerName(w.Profile()),
		TokenURL: w.TokenURL(),
	}
	if c.Formatter.IsJSON() {
		return c.Formatter.Print(resp)
	}

	wr := cmd.OutOrStdout()
	outln(wr, resp.Address)
	if resp.TokenURL != "" {
		out(wr, "Token: %s\n", resp.TokenURL)
	}
	return nil
}

func runBalance(cmd *cobra.Command, _ []string) error {
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

	resp := BalanceResponse{
		Address: w.Address(),
		Asset:   w.Asset().ID,
		Symbol:  w.Asset().Symbol,
		Balance: w.Balance().String(),
	}
	if _, ok := w.Asset().Kind.(wallet.Token); ok {
		resp.CoinBalance = w.CoinBalance().String()
	}
	if c.Formatter.IsJSON() {
		return c.Formatter.Print(resp)
	}

	wr := cmd.OutOrStdout()
	out(wr, "%s %s\n", resp.Balance, resp.Symbol)
	if resp.CoinBalance != "" {
		out(wr, "Coin for fees: %s\n", resp.CoinBalance)
	}
	return nil
}

func runMax(cmd *cobra.Command, _ []string) error {
	c, err := openWallet(cmd, false)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := contextWithTimeout(cmd)
	defer cancel()

	w := c.Wallet
	gasLimit, err := resolveGasLimit(w, maxGasLimit)
	if err != nil {
		return err
	}
	if err := w.Load(ctx); err != nil {
		return err
	}

	q, err := w.EstimateMaxAmount(ctx, gasLimit)
	if err != nil {
		return err
	}
	return printAmount(cmd, c, "max", q, gasLimit)
}

func runFee(cmd *cobra.Command, _ []string) error {
	c, err := openWallet(cmd, false)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := contextWithTimeout(cmd)
	defer cancel()

	req, err := buildRequest(c.Wallet, feeTo, feeAmount, feeGasLimit)
	if err != nil {
		return err
	}

	q, err := c.Wallet.EstimateTransactionFee(ctx, req)
	if err != nil {
		return err
	}
	return printAmount(cmd, c, "fee", q, req.GasLimit)
}

// resolveGasLimit returns the wallet default for 0 and validates anything else.
func resolveGasLimit(w *wallet.Wallet, gasLimit uint64) (uint64, error) {
	if gasLimit == 0 {
		return w.GasLimit(), nil
	}
	if err := w.ValidateGasLimit(gasLimit); err != nil {
		return 0, err
	}
	return gasLimit, nil
}

// parseAmount parses a human amount in the wallet asset's decimals.
func parseAmount(w *wallet.Wallet, s string) (amount.Quantity, error) {
	q, err := amount.Parse(s, w.Asset().Decimals)
	if err != nil {
		return amount.Quantity{}, walleterr.WithDetails(walleterr.ErrInvalidInput, map[string]string{
			"field":  "amount",
			"amount": s,
		})
	}
	return q, nil
}

// buildRequest validates destination and gas limit and parses the amount.
func buildRequest(w *wallet.Wallet, to, value string, gasLimit uint64) (wallet.TxRequest, error) {
	if err := w.ValidateAddress(to); err != nil {
		return wallet.TxRequest{}, err
	}
	limit, err := resolveGasLimit(w, gasLimit)
	if err != nil {
		return wallet.TxRequest{}, err
	}
	q, err := parseAmount(w, value)
	if err != nil {
		return wallet.TxRequest{}, err
	}
	return wallet.TxRequest{Address: to, Amount: q, GasLimit: limit}, nil
}

func printAmount(cmd *cobra.Command, c *CommandContext, kind string, q amount.Quantity, gasLimit uint64) error {
	if c.Formatter.IsJSON() {
		return c.Formatter.Print(AmountResponse{Kind: kind, Amount: q.String(), GasLimit: gasLimit})
	}
	outln(cmd.OutOrStdout(), q.String())
	return nil
}

// confirmOrCancel asks question unless the user passed --yes.
func confirmOrCancel(yes bool, question string) error {
	if yes || promptConfirmFn(question) {
		return nil
	}
	return errCancelled
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	feeCmd.Flags().StringVar(&feeTo, "to", "", "destination address")
	feeCmd.Flags().StringVar(&feeAmount, "amount", "", "amount to send")
	feeCmd.Flags().Uint64Var(&feeGasLimit, "gas-limit", 0, "gas limit (default: wallet default)")
	_ = feeCmd.MarkFlagRequired("to")
	_ = feeCmd.MarkFlagRequired("amount")

	maxCmd.Flags().Uint64Var(&maxGasLimit, "gas-limit", 0, "gas limit (default: wallet default)")

	rootCmd.AddCommand(addressCmd, balanceCmd, maxCmd, feeCmd)
}
