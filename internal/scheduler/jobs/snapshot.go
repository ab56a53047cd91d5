package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/jreit-finder/internal/contracts"
	"github.com/wonny/jreit-finder/pkg/logger"
)

// Refresher refetches the J-REIT table bypassing the cache
type Refresher interface {
	Refresh(ctx context.Context) ([]contracts.Entity, error)
}

// SnapshotSaver persists one day's table
type SnapshotSaver interface {
	Save(ctx context.Context, date time.Time, table []contracts.Entity) error
}

// SnapshotJob scrapes the ranking page after the TSE close and stores the day's table
// ⭐ SSOT: 스냅샷 스케줄은 이 Job에서만
type SnapshotJob struct {
	provider Refresher
	store    SnapshotSaver
	logger   *logger.Logger
	now      func() time.Time
}

// NewSnapshotJob creates a new snapshot job
func NewSnapshotJob(provider Refresher, store SnapshotSaver, log *logger.Logger) *SnapshotJob {
	return &SnapshotJob{
		provider: provider,
		store:    store,
		logger:   log,
		now:      time.Now,
	}
}

// Name returns the job name
func (j *SnapshotJob) Name() string {
	return "jreit_snapshot"
}

// Schedule returns the cron schedule (every day at 6 PM, with seconds)
func (j *SnapshotJob) Schedule() string {
	return "0 0 18 * * *"
}

// Run refreshes the table and saves it under today's date
func (j *SnapshotJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled J-REIT snapshot")

	table, err := j.provider.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refresh table: %w", err)
	}

	if err := contracts.ValidateTable(table); err != nil {
		return fmt.Errorf("validate table: %w", err)
	}

	now := j.now()
	date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if err := j.store.Save(ctx, date, table); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"date":  date.Format("2006-01-02"),
		"count": len(table),
	}).Info("J-REIT snapshot saved")

	return nil
}
