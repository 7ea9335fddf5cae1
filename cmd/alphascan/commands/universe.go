package commands

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jshaw/alphascan/pkg/config"
	"github.com/jshaw/alphascan/pkg/logger"
)

// universeCmd represents the universe command
var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "Show the constituent universe",
	Long: `Loads the S&P 500 constituent table (from the local cache when
present) and prints a per-sector summary.

Example:
  go run ./cmd/alphascan universe
  go run ./cmd/alphascan universe --refresh`,
	RunE: runUniverse,
}

var universeRefresh bool

func init() {
	rootCmd.AddCommand(universeCmd)

	universeCmd.Flags().BoolVar(&universeRefresh, "refresh", false, "ignore the cache and re-download")
}

func runUniverse(cmd *cobra.Command, args []string) error {
	fmt.Println("=== AlphaScan Universe ===")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)
	ctx := context.Background()

	resolver := newResolver(cfg, log)

	sectorMap, err := resolver.SectorToTickers(ctx, universeRefresh)
	if err != nil {
		return fmt.Errorf("resolve universe: %w", err)
	}

	sectors := sectorMap.Sectors()
	sort.Strings(sectors)

	total := 0
	fmt.Println()
	for _, sector := range sectors {
		n := len(sectorMap[sector])
		total += n
		fmt.Printf("  %-28s %4d\n", sector, n)
	}
	fmt.Printf("\n✅ %d constituents in %d sectors\n", total, len(sectors))

	return nil
}
