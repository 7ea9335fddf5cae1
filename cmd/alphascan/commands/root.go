package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "alphascan",
	Short: "AlphaScan - daily S&P 500 sector scanner",
	Long: `AlphaScan Unified CLI

Downloads daily OHLCV history for the S&P 500, scores each ticker on
momentum, trend, volume and volatility factors, ranks the top picks per
sector, and derives ATR-based entry/exit levels for each pick.

Usage:
  go run ./cmd/alphascan [command]

Examples:
  go run ./cmd/alphascan scan
  go run ./cmd/alphascan scan --sector Energy --save
  go run ./cmd/alphascan universe --refresh
  go run ./cmd/alphascan backtest --top 3 --hold 10
  go run ./cmd/alphascan api
  go run ./cmd/alphascan scheduler`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
