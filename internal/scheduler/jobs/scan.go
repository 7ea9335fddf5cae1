// Package jobs contains the scheduled jobs wired into the scheduler.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jshaw/alphascan/internal/contracts"
	"github.com/jshaw/alphascan/internal/recommend"
	"github.com/jshaw/alphascan/internal/scan"
	"github.com/jshaw/alphascan/internal/universe"
	"github.com/jshaw/alphascan/pkg/config"
	"github.com/jshaw/alphascan/pkg/logger"
)

// ScanJob runs the full daily scan: resolve the universe, score every
// configured sector, and persist the ranked recommendations.
type ScanJob struct {
	resolver *universe.Resolver
	scanner  *scan.Scanner
	repo     *recommend.Repository
	config   *config.Config
	logger   *logger.Logger
}

// NewScanJob creates a new daily scan job
func NewScanJob(
	resolver *universe.Resolver,
	scanner *scan.Scanner,
	repo *recommend.Repository,
	cfg *config.Config,
	log *logger.Logger,
) *ScanJob {
	return &ScanJob{
		resolver: resolver,
		scanner:  scanner,
		repo:     repo,
		config:   cfg,
		logger:   log,
	}
}

// Name returns the job name
func (j *ScanJob) Name() string {
	return "daily_scan"
}

// Schedule returns the cron schedule (weekdays at 9:30 PM UTC, after the
// US close)
func (j *ScanJob) Schedule() string {
	return "0 30 21 * * 1-5"
}

// Run executes the daily scan
func (j *ScanJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled daily scan")

	asOf := time.Now().UTC().Truncate(24 * time.Hour)

	sectorMap, err := j.resolver.SectorToTickers(ctx, false)
	if err != nil {
		return fmt.Errorf("resolve universe: %w", err)
	}

	sectors := j.config.Scan.Sectors
	if len(sectors) == 0 {
		sectors = sectorMap.Sectors()
	}

	var rows []contracts.Recommendation
	for _, sector := range sectors {
		tickers := sectorMap[sector]
		if len(tickers) == 0 {
			j.logger.WithField("sector", sector).Warn("No tickers for sector, skipping")
			continue
		}

		recs := j.scanner.ScanSector(ctx, asOf, sector, tickers)
		j.logger.WithFields(map[string]interface{}{
			"sector":   sector,
			"scanned":  len(tickers),
			"selected": len(recs),
		}).Info("Sector scan completed")

		rows = append(rows, recs...)
	}

	if len(rows) == 0 {
		return fmt.Errorf("scan produced no recommendations for %s", asOf.Format("2006-01-02"))
	}

	if err := j.repo.UpsertBatch(ctx, rows); err != nil {
		return fmt.Errorf("persist recommendations: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"date":    asOf.Format("2006-01-02"),
		"sectors": len(sectors),
		"rows":    len(rows),
	}).Info("Scheduled daily scan completed successfully")

	return nil
}
