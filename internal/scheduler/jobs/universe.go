package jobs

import (
	"context"
	"fmt"

	"github.com/jshaw/alphascan/internal/universe"
	"github.com/jshaw/alphascan/pkg/logger"
)

// UniverseRefreshJob re-downloads the index constituent table and rewrites
// the local cache, so the nightly scan starts from a fresh membership list.
type UniverseRefreshJob struct {
	resolver *universe.Resolver
	logger   *logger.Logger
}

// NewUniverseRefreshJob creates a new universe refresh job
func NewUniverseRefreshJob(resolver *universe.Resolver, log *logger.Logger) *UniverseRefreshJob {
	return &UniverseRefreshJob{
		resolver: resolver,
		logger:   log,
	}
}

// Name returns the job name
func (j *UniverseRefreshJob) Name() string {
	return "universe_refresh"
}

// Schedule returns the cron schedule (Sundays at 6 AM UTC)
func (j *UniverseRefreshJob) Schedule() string {
	return "0 0 6 * * 0"
}

// Run refreshes the constituent cache
func (j *UniverseRefreshJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled universe refresh")

	table, err := j.resolver.Load(ctx, true)
	if err != nil {
		return fmt.Errorf("refresh universe: %w", err)
	}

	j.logger.WithField("constituents", len(table)).Info("Universe refresh completed successfully")
	return nil
}
