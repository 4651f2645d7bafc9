package cli

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/evmwallet/internal/history"
	"github.com/mrz1836/evmwallet/internal/output"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var historyCursor int

// TransactionResponse is one history entry in JSON output.
type TransactionResponse struct {
	ID            string `json:"id"`
	From          string `json:"from"`
	To            string `json:"to"`
	Amount        string `json:"amount"`
	Fee           string `json:"fee"`
	Incoming      bool   `json:"incoming"`
	Status        string `json:"status"`
	Confirmations int64  `json:"confirmations"`
	RBF           bool   `json:"rbf"`
	Timestamp     string `json:"timestamp,omitempty"`
	URL           string `json:"url"`
}

// HistoryResponse is the JSON output of the history command.
type HistoryResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	HasMore      bool                  `json:"has_more"`
	NextCursor   int                   `json:"next_cursor,omitempty"`
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List wallet transactions",
	Long: `List one page of transactions, newest first. When more pages exist the
cursor for the next page is printed.`,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, _ []string) error {
	c, err := openWallet(cmd, false)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := contextWithTimeout(cmd)
	defer cancel()

	page, err := c.Wallet.LoadTransactions(ctx, historyCursor)
	if err != nil {
		return err
	}

	resp := HistoryResponse{
		Transactions: make([]TransactionResponse, 0, len(page.Transactions)),
		HasMore:      page.HasMore,
	}
	if page.HasMore {
		resp.NextCursor = page.Cursor
	}
	for _, tx := range page.Transactions {
		resp.Transactions = append(resp.Transactions, transactionResponse(tx))
	}

	if c.Formatter.IsJSON() {
		return c.Formatter.Print(resp)
	}

	wr := cmd.OutOrStdout()
	if len(resp.Transactions) == 0 {
		outln(wr, "No transactions.")
		return nil
	}

	table := output.NewTable("TXID", "DIRECTION", "AMOUNT", "FEE", "STATUS", "CONFIRMATIONS").AlignRight(2, 3, 5)
	for _, tx := range resp.Transactions {
		direction := "out"
		if tx.Incoming {
			direction = "in"
		}
		status := tx.Status
		if tx.RBF {
			status += " (replaceable)"
		}
		table.AddRow(tx.ID, direction, tx.Amount, tx.Fee, status, strconv.FormatInt(tx.Confirmations, 10))
	}
	if err := table.Render(wr); err != nil {
		return err
	}
	if resp.HasMore {
		out(wr, "\nMore transactions: evmwallet history --cursor %d\n", resp.NextCursor)
	}
	return nil
}

func transactionResponse(tx *history.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:            tx.ID,
		From:          tx.From,
		To:            tx.To,
		Amount:        tx.Amount.String(),
		Fee:           tx.Fee.String(),
		Incoming:      tx.Incoming,
		Status:        tx.Status.String(),
		Confirmations: tx.Confirmations,
		RBF:           tx.RBF,
		URL:           tx.URL,
	}
	if !tx.Timestamp.IsZero() {
		resp.Timestamp = tx.Timestamp.UTC().Format(time.RFC3339)
	}
	return resp
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	historyCmd.Flags().IntVar(&historyCursor, "cursor", 0, "page cursor from a previous listing")

	rootCmd.AddCommand(historyCmd)
}
