package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/evmwallet/pkg/amount"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	stakeAmount string
	stakeYes    bool
)

// StakingResponse is the JSON output of stake info.
type StakingResponse struct {
	Staked         string `json:"staked"`
	APR            string `json:"apr"`
	MinStakeAmount string `json:"min_stake_amount"`
	PendingStake   string `json:"pending_stake"`
	PendingUnstake string `json:"pending_unstake"`
	ReadyForClaim  string `json:"ready_for_claim"`
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var stakeCmd = &cobra.Command{
	Use:   "stake",
	Short: "Manage staked coins",
	Long:  `Stake, unstake and claim coins on platforms with a staking contract.`,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var stakeInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the staking position",
	RunE:  runStakeInfo,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var stakeDepositCmd = &cobra.Command{
	Use:   "deposit",
	Short: "Stake coins",
	RunE:  runStakeDeposit,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var stakeWithdrawCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "Request unstaking of coins",
	RunE:  runStakeWithdraw,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var stakeClaimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Claim unstaked coins that are ready",
	RunE:  runStakeClaim,
}

func runStakeInfo(cmd *cobra.Command, _ []string) error {
	c, err := openWallet(cmd, false)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := contextWithTimeout(cmd)
	defer cancel()

	info, err := c.Wallet.Staking(ctx)
	if err != nil {
		return err
	}
	pending, err := c.Wallet.PendingRequests(ctx)
	if err != nil {
		return err
	}

	resp := StakingResponse{
		Staked:         info.Staked.String(),
		APR:            info.APR.String(),
		MinStakeAmount: info.MinStakeAmount.String(),
		PendingStake:   pending.Staking.String(),
		PendingUnstake: pending.Unstaking.String(),
		ReadyForClaim:  pending.ReadyForClaim.String(),
	}
	if c.Formatter.IsJSON() {
		return c.Formatter.Print(resp)
	}

	wr := cmd.OutOrStdout()
	symbol := c.Wallet.Asset().Symbol
	out(wr, "Staked:          %s %s\n", resp.Staked, symbol)
	out(wr, "APR:             %s%%\n", resp.APR)
	out(wr, "Minimum stake:   %s %s\n", resp.MinStakeAmount, symbol)
	out(wr, "Pending stake:   %s %s\n", resp.PendingStake, symbol)
	out(wr, "Pending unstake: %s %s\n", resp.PendingUnstake, symbol)
	out(wr, "Ready to claim:  %s %s\n", resp.ReadyForClaim, symbol)
	return nil
}

func runStakeDeposit(cmd *cobra.Command, _ []string) error {
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

	q, err := stakeQuantity(c, func() (amount.Quantity, error) { return w.EstimateStakeMaxAmount(ctx) })
	if err != nil {
		return err
	}
	if err := w.ValidateStakeAmount(ctx, q); err != nil {
		return err
	}
	fee, err := w.EstimateStakeFee(ctx)
	if err != nil {
		return err
	}

	out(cmd.ErrOrStderr(), "Stake %s %s (fee %s)\n", q.String(), w.Asset().Symbol, fee.String())
	if err := confirmOrCancel(stakeYes, "Submit the stake?"); err != nil {
		return err
	}

	res, err := w.Stake(ctx, q, c.Seed())
	if err != nil {
		return err
	}
	return printSent(cmd, c, res)
}

func runStakeWithdraw(cmd *cobra.Command, _ []string) error {
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

	q, err := stakeQuantity(c, func() (amount.Quantity, error) { return w.EstimateUnstakeMaxAmount(ctx) })
	if err != nil {
		return err
	}
	if err := w.ValidateUnstakeAmount(ctx, q); err != nil {
		return err
	}
	fee, err := w.EstimateUnstakeFee(ctx)
	if err != nil {
		return err
	}

	out(cmd.ErrOrStderr(), "Unstake %s %s (fee %s)\n", q.String(), w.Asset().Symbol, fee.String())
	if err := confirmOrCancel(stakeYes, "Submit the unstake request?"); err != nil {
		return err
	}

	res, err := w.Unstake(ctx, q, c.Seed())
	if err != nil {
		return err
	}
	return printSent(cmd, c, res)
}

func runStakeClaim(cmd *cobra.Command, _ []string) error {
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

	fee, err := w.EstimateClaimFee(ctx)
	if err != nil {
		return err
	}

	out(cmd.ErrOrStderr(), "Claim unstaked %s (fee %s)\n", w.Asset().Symbol, fee.String())
	if err := confirmOrCancel(stakeYes, "Submit the claim?"); err != nil {
		return err
	}

	res, err := w.Claim(ctx, c.Seed())
	if err != nil {
		return err
	}
	return printSent(cmd, c, res)
}

// stakeQuantity parses --amount, resolving "max" through maxOf.
func stakeQuantity(c *CommandContext, maxOf func() (amount.Quantity, error)) (amount.Quantity, error) {
	if strings.EqualFold(strings.TrimSpace(stakeAmount), "max") {
		return maxOf()
	}
	return parseAmount(c.Wallet, stakeAmount)
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	for _, cmd := range []*cobra.Command{stakeDepositCmd, stakeWithdrawCmd} {
		cmd.Flags().StringVar(&stakeAmount, "amount", "", `amount, or "max"`)
		_ = cmd.MarkFlagRequired("amount")
	}
	for _, cmd := range []*cobra.Command{stakeDepositCmd, stakeWithdrawCmd, stakeClaimCmd} {
		cmd.Flags().BoolVarP(&stakeYes, "yes", "y", false, "skip the confirmation prompt")
	}

	stakeCmd.AddCommand(stakeInfoCmd, stakeDepositCmd, stakeWithdrawCmd, stakeClaimCmd)
	rootCmd.AddCommand(stakeCmd)
}
