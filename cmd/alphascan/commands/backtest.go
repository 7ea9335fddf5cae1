package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jshaw/alphascan/internal/backtest"
	"github.com/jshaw/alphascan/internal/contracts"
	"github.com/jshaw/alphascan/internal/scan"
	"github.com/jshaw/alphascan/pkg/config"
	"github.com/jshaw/alphascan/pkg/logger"
)

// backtestCmd represents the backtest command
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Backtest the current top picks",
	Long: `Runs a fresh scan, takes the diversified top picks, and simulates
buying each one and holding for a fixed number of days.

The simulation is a sanity check on the ranking, not a full portfolio
backtest: each pick is an independent buy-and-hold round trip.

Example:
  go run ./cmd/alphascan backtest
  go run ./cmd/alphascan backtest --top 5 --hold 20`,
	RunE: runBacktestCmd,
}

var (
	backtestTop  int
	backtestHold int
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().IntVar(&backtestTop, "top", 0, "ranked entries to simulate (default from config)")
	backtestCmd.Flags().IntVar(&backtestHold, "hold", 0, "holding period in days (default from config)")
}

func runBacktestCmd(cmd *cobra.Command, args []string) error {
	fmt.Println("=== AlphaScan Backtest ===")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)
	ctx := context.Background()

	provider, closeProvider, err := newProvider(cfg, log)
	if err != nil {
		return fmt.Errorf("init market data provider: %w", err)
	}
	defer closeProvider()

	resolver := newResolver(cfg, log)
	scanner := newScanner(provider, cfg, log)

	sectorMap, err := resolver.SectorToTickers(ctx, false)
	if err != nil {
		return fmt.Errorf("resolve universe: %w", err)
	}

	asOf := time.Now().UTC().Truncate(24 * time.Hour)

	var all []contracts.Recommendation
	for _, sector := range cfg.Scan.Sectors {
		tickers := sectorMap[sector]
		if len(tickers) == 0 {
			continue
		}
		all = append(all, scanner.ScanSector(ctx, asOf, sector, tickers)...)
	}
	if len(all) == 0 {
		return fmt.Errorf("scan produced no recommendations")
	}

	scan.Rank(all)
	ranked := scan.Diversify(all, cfg.Scan.MaxPerSector)

	btCfg := backtest.Config{
		TopK:         cfg.Backtest.TopK,
		HoldDays:     cfg.Backtest.HoldDays,
		LookbackDays: cfg.Backtest.LookbackYears * 365,
	}
	if backtestTop > 0 {
		btCfg.TopK = backtestTop
	}
	if backtestHold > 0 {
		btCfg.HoldDays = backtestHold
	}

	engine := backtest.NewEngine(provider, log)
	result, err := engine.Run(ctx, ranked, btCfg)
	if err != nil {
		if errors.Is(err, backtest.ErrNoTrades) {
			fmt.Println("\n⚠️  No ticker had enough history to simulate")
			return nil
		}
		return fmt.Errorf("run backtest: %w", err)
	}

	fmt.Printf("\n── Results (top %d, %d-day hold) ──\n", btCfg.TopK, btCfg.HoldDays)
	for _, trade := range result.Trades {
		fmt.Printf("  %-8s entry=%.2f exit=%.2f return=%+.2f%%\n",
			trade.Ticker, trade.Entry, trade.Exit, trade.Return*100)
	}
	fmt.Println()
	fmt.Printf("  Win rate     : %.0f%%\n", result.WinRate*100)
	fmt.Printf("  Avg return   : %+.2f%%\n", result.AvgReturn*100)
	fmt.Printf("  Max drawdown : %+.2f%%\n", result.MaxDrawdown*100)
	fmt.Printf("  Sharpe       : %.2f\n", result.Sharpe)

	return nil
}
