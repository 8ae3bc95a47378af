// Package cli implements the tontrade command-line interface.
package cli

import (
	"github.com/spf13/cobra"
)

var configPath string

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "tontrade",
	Short: "A custodial TON wallet Telegram bot",
	Long: `TonTrade is a Telegram bot for a custodial TON wallet: create a
wallet, check token balances, send tokens, and swap tokens through the
STON.fi DEX.

Example:
  tontrade run
  tontrade run --config tontrade.yaml`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
