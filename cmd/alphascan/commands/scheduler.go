package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jshaw/alphascan/internal/recommend"
	"github.com/jshaw/alphascan/internal/scheduler"
	"github.com/jshaw/alphascan/internal/scheduler/jobs"
	"github.com/jshaw/alphascan/pkg/config"
	"github.com/jshaw/alphascan/pkg/database"
	"github.com/jshaw/alphascan/pkg/logger"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Start the job scheduler",
	Long: `Starts the cron scheduler with the registered jobs:

  daily_scan        weekdays 21:30 UTC - scan all sectors and persist
  universe_refresh  Sundays 06:00 UTC  - re-download the constituent table

Example:
  go run ./cmd/alphascan scheduler
  go run ./cmd/alphascan scheduler --run-now daily_scan`,
	RunE: runScheduler,
}

var schedulerRunNow string

func init() {
	rootCmd.AddCommand(schedulerCmd)

	schedulerCmd.Flags().StringVar(&schedulerRunNow, "run-now", "", "run a job immediately on startup")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== AlphaScan Scheduler ===")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	repo := recommend.NewRepository(db.Pool)
	if err := repo.EnsureSchema(context.Background()); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	provider, closeProvider, err := newProvider(cfg, log)
	if err != nil {
		return fmt.Errorf("init market data provider: %w", err)
	}
	defer closeProvider()

	resolver := newResolver(cfg, log)
	scanner := newScanner(provider, cfg, log)

	sched := scheduler.New(log)

	scanJob := jobs.NewScanJob(resolver, scanner, repo, cfg, log)
	if err := sched.AddJob(scanJob); err != nil {
		return fmt.Errorf("add scan job: %w", err)
	}

	universeJob := jobs.NewUniverseRefreshJob(resolver, log)
	if err := sched.AddJob(universeJob); err != nil {
		return fmt.Errorf("add universe job: %w", err)
	}

	sched.Start()
	defer sched.Stop()

	if schedulerRunNow != "" {
		if err := sched.RunJob(schedulerRunNow); err != nil {
			return fmt.Errorf("run job %s: %w", schedulerRunNow, err)
		}
		fmt.Printf("▶ Triggered %s\n", schedulerRunNow)
	}

	fmt.Println("\n✅ Scheduler running")
	for _, name := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", name)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	for name, stats := range sched.GetJobStats() {
		log.WithFields(map[string]interface{}{
			"job":          name,
			"total_runs":   stats.TotalRuns,
			"failures":     stats.FailureCount,
			"success_rate": stats.SuccessRate,
		}).Info("Job summary at shutdown")
	}

	return nil
}
