package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrz1836/evmwallet/internal/output"
	"github.com/mrz1836/evmwallet/internal/seed"
	walleterr "github.com/mrz1836/evmwallet/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	seedWords int
	seedForce bool
)

// errVaultExists is returned when a vault would be overwritten without --force.
//
//nolint:gochecknoglobals // sentinel
var errVaultExists = &walleterr.WalletError{
	Code:       "VAULT_EXISTS",
	Message:    "a seed vault already exists",
	Suggestion: "pass --force to replace it",
	ExitCode:   walleterr.ExitPermission,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Manage the encrypted mnemonic",
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var seedEncryptCmd = &cobra.Command{
	Use:   "encrypt",
	Short: "Encrypt an existing mnemonic into the vault",
	Long: `Read a BIP-39 mnemonic (hidden input), validate it, and store it in
<home>/seed.age encrypted with a passphrase. Later commands unlock the
vault instead of asking for the words.`,
	RunE: runSeedEncrypt,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var seedGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new mnemonic into the vault",
	Long: `Generate a new BIP-39 mnemonic, print it once for backup, and store it
encrypted in <home>/seed.age.`,
	RunE: runSeedGenerate,
}

func runSeedEncrypt(cmd *cobra.Command, _ []string) error {
	path := seed.VaultPath(cfg.GetHome())
	if seed.VaultExists(path) && !seedForce {
		return walleterr.WithDetails(errVaultExists, map[string]string{"path": path})
	}

	mnemonic, err := promptMnemonic()
	if err != nil {
		return err
	}
	defer mnemonic.Destroy()

	return writeVault(cmd, path, mnemonic.String())
}

func runSeedGenerate(cmd *cobra.Command, _ []string) error {
	path := seed.VaultPath(cfg.GetHome())
	if seed.VaultExists(path) && !seedForce {
		return walleterr.WithDetails(errVaultExists, map[string]string{"path": path})
	}

	mnemonic, err := seed.Generate(seedWords)
	if err != nil {
		return err
	}

	wr := cmd.ErrOrStderr()
	outln(wr, "Write these words down and keep them offline:")
	outln(wr)
	outln(wr, "  "+mnemonic)
	outln(wr)

	return writeVault(cmd, path, mnemonic)
}

func writeVault(cmd *cobra.Command, path, mnemonic string) error {
	passphrase, err := promptNewPassphrase()
	if err != nil {
		return err
	}
	if err := seed.WriteVault(path, mnemonic, passphrase); err != nil {
		return err
	}
	logger.Info().Str("path", path).Msg("seed vault written")

	if formatter != nil && formatter.IsJSON() {
		return output.FormatSuccess(cmd.OutOrStdout(), "seed vault written to "+path, output.FormatJSON)
	}
	output.Success(cmd.OutOrStdout(), "Seed vault written to %s", path)
	return nil
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	seedGenerateCmd.Flags().IntVar(&seedWords, "words", 12, "mnemonic length: 12 or 24")
	for _, cmd := range []*cobra.Command{seedEncryptCmd, seedGenerateCmd} {
		cmd.Flags().BoolVar(&seedForce, "force", false, "replace an existing vault")
	}

	seedCmd.AddCommand(seedEncryptCmd, seedGenerateCmd)
	rootCmd.AddCommand(seedCmd)
}
