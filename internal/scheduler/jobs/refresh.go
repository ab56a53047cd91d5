package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/jreit-finder/pkg/logger"
)

// CacheRefreshJob keeps the cached table warm so API requests never wait on the scraper
type CacheRefreshJob struct {
	provider Refresher
	logger   *logger.Logger
}

// NewCacheRefreshJob creates a new cache refresh job
func NewCacheRefreshJob(provider Refresher, log *logger.Logger) *CacheRefreshJob {
	return &CacheRefreshJob{
		provider: provider,
		logger:   log,
	}
}

// Name returns the job name
func (j *CacheRefreshJob) Name() string {
	return "jreit_cache_refresh"
}

// Schedule returns the cron schedule (every hour at minute 5)
func (j *CacheRefreshJob) Schedule() string {
	return "0 5 * * * *"
}

// Run refetches the table into the cache
func (j *CacheRefreshJob) Run(ctx context.Context) error {
	table, err := j.provider.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refresh table: %w", err)
	}

	j.logger.WithField("count", len(table)).Debug("J-REIT cache refreshed")
	return nil
}
