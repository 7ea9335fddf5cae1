package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jshaw/alphascan/internal/contracts"
	"github.com/jshaw/alphascan/internal/recommend"
	"github.com/jshaw/alphascan/internal/scan"
	"github.com/jshaw/alphascan/pkg/config"
	"github.com/jshaw/alphascan/pkg/database"
	"github.com/jshaw/alphascan/pkg/logger"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run the sector scan",
	Long: `Scores every ticker in the configured sectors and prints the ranked
top picks per sector with price targets.

Example:
  go run ./cmd/alphascan scan
  go run ./cmd/alphascan scan --sector "Information Technology"
  go run ./cmd/alphascan scan --save
  go run ./cmd/alphascan scan --refresh-universe`,
	RunE: runScan,
}

var (
	scanSector          string
	scanSave            bool
	scanRefreshUniverse bool
	scanDiversified     bool
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&scanSector, "sector", "", "scan a single sector (default: all configured sectors)")
	scanCmd.Flags().BoolVar(&scanSave, "save", false, "persist results to the database")
	scanCmd.Flags().BoolVar(&scanRefreshUniverse, "refresh-universe", false, "ignore the constituent cache and re-download")
	scanCmd.Flags().BoolVar(&scanDiversified, "diversified", false, "also print the combined list with the per-sector cap applied")
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Println("=== AlphaScan Sector Scan ===")

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

	sectorMap, err := resolver.SectorToTickers(ctx, scanRefreshUniverse)
	if err != nil {
		return fmt.Errorf("resolve universe: %w", err)
	}

	sectors := cfg.Scan.Sectors
	if scanSector != "" {
		sectors = []string{scanSector}
	}

	asOf := time.Now().UTC().Truncate(24 * time.Hour)

	var all []contracts.Recommendation
	for _, sector := range sectors {
		tickers := sectorMap[sector]
		if len(tickers) == 0 {
			fmt.Printf("\n⚠️  %s: no constituents found, skipping\n", sector)
			continue
		}

		recs := scanner.ScanSector(ctx, asOf, sector, tickers)
		printSectorTable(sector, recs)
		all = append(all, recs...)
	}

	if len(all) == 0 {
		return fmt.Errorf("scan produced no recommendations")
	}

	if scanDiversified {
		combined := make([]contracts.Recommendation, len(all))
		copy(combined, all)
		scan.Rank(combined)
		combined = scan.Diversify(combined, cfg.Scan.MaxPerSector)
		printCombinedTable(combined)
	}

	if scanSave {
		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		repo := recommend.NewRepository(db.Pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		if err := repo.UpsertBatch(ctx, all); err != nil {
			return fmt.Errorf("persist recommendations: %w", err)
		}
		fmt.Printf("\n✅ Saved %d recommendations for %s\n", len(all), asOf.Format("2006-01-02"))
	}

	return nil
}

func printSectorTable(sector string, recs []contracts.Recommendation) {
	fmt.Printf("\n── %s ──\n", sector)
	if len(recs) == 0 {
		fmt.Println("  no qualifying tickers")
		return
	}

	fmt.Printf("  %-4s %-8s %-6s %-6s %-10s %-10s %-8s %-6s\n",
		"Rank", "Ticker", "Alpha", "Final", "Buy Range", "TP1", "SL", "R/R")
	for _, rec := range recs {
		fmt.Printf("  %-4d %-8s %-6d %-6.1f %.2f-%.2f %-10.2f %-8.2f %-6.2f\n",
			rec.Rank, rec.Ticker, rec.AlphaScore, rec.FinalScore,
			rec.Targets.BuyLow, rec.Targets.BuyHigh,
			rec.Targets.TP1, rec.Targets.SL, rec.Targets.RR)
	}
}

func printCombinedTable(recs []contracts.Recommendation) {
	fmt.Printf("\n── Combined (diversified) ──\n")
	for i, rec := range recs {
		fmt.Printf("  %2d. %-8s %-24s alpha=%d final=%.1f\n",
			i+1, rec.Ticker, rec.Sector, rec.AlphaScore, rec.FinalScore)
	}
}
