package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrz1836/evmwallet/internal/version"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show build information",
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := version.Get()
		if formatter != nil && formatter.IsJSON() {
			return formatter.Print(info)
		}
		out(cmd.OutOrStdout(), "evmwallet %s\n", info.String())
		return nil
	},
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	rootCmd.AddCommand(versionCmd)
}
