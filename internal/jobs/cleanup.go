package jobs

import (
	"log/slog"
	"time"

	"salesbi/internal/config"
	"salesbi/internal/history"
)

const cleanupBatchSize = 1000

// CleanupJob prunes query logs older than the retention period.
type CleanupJob struct {
	dbManager DBManager
	logger    *slog.Logger
	cfg       *config.Config
	now       func() time.Time
}

func NewCleanupJob(dbManager DBManager, logger *slog.Logger, cfg *config.Config) *CleanupJob {
	return &CleanupJob{
		dbManager: dbManager,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Run deletes query logs created before the retention cutoff. A retention of zero
// days keeps history forever.
func (j *CleanupJob) Run() error {
	retentionDays := j.cfg.HistoryRetentionDays
	if retentionDays == 0 {
		j.logger.Debug("History retention disabled, skipping cleanup")
		return nil
	}

	db := j.dbManager.GetConnection()
	cutoffDate := j.now().AddDate(0, 0, -retentionDays)

	j.logger.Info("Starting cleanup of old query logs",
		slog.Int("retention_days", retentionDays),
		slog.Time("cutoff_date", cutoffDate))

	countToDelete, err := history.CountOlderThan(db, cutoffDate)
	if err != nil {
		j.logger.Error("Failed to count old query logs", slog.Any("error", err))
		return err
	}

	if countToDelete == 0 {
		j.logger.Debug("No old query logs to clean up")
		return nil
	}

	totalDeleted, err := history.DeleteOlderThan(j.logger, db, cutoffDate, cleanupBatchSize)
	if err != nil {
		j.logger.Error("Failed to delete old query logs",
			slog.Any("error", err),
			slog.Int64("deleted_so_far", totalDeleted))
		return err
	}

	j.logger.Info("Cleaned up old query logs",
		slog.Int64("deleted_count", totalDeleted),
		slog.Int("retention_days", retentionDays))

	return nil
}
