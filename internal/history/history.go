// Package history keeps a log of the questions the assistant was asked.
package history

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"
)

const (
	DefaultLimit = 20
	MaxLimit     = 500
)

// QueryLog is one answered (or unrecognized) question.
type QueryLog struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Question   string    `gorm:"not null;size:1000" json:"question"`
	Intent     string    `gorm:"not null;size:50;index" json:"intent"`
	TopN       int       `json:"top_n"`
	RowCount   int       `json:"row_count"`
	DurationMs int64     `json:"duration_ms"`
	Source     string    `gorm:"size:20;default:'http'" json:"source"`
	CreatedAt  time.Time `gorm:"not null;index:idx_query_logs_created_at" json:"created_at"`
}

// TableName specifies the table name for GORM
func (QueryLog) TableName() string {
	return "query_logs"
}

// Record stores entry, filling in its ID and timestamp.
func Record(logger *slog.Logger, db *gorm.DB, entry *QueryLog) error {
	if entry.Question == "" {
		return errors.New("question is required")
	}
	if entry.Intent == "" {
		return errors.New("intent is required")
	}
	if entry.Source == "" {
		entry.Source = "http"
	}

	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now().UTC()

	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Create(entry).Error
	})
}

// Recent returns up to limit entries, newest first. Out of range limits fall back
// to DefaultLimit or are capped at MaxLimit.
func Recent(db *gorm.DB, limit int) ([]QueryLog, error) {
	limit = ClampLimit(limit)

	var logs []QueryLog
	err := db.Order("created_at DESC").Limit(limit).Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list query logs: %w", err)
	}
	return logs, nil
}

// ClampLimit normalizes a caller-supplied page size.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// CountOlderThan returns how many entries were created before cutoff.
func CountOlderThan(db *gorm.DB, cutoff time.Time) (int64, error) {
	var count int64
	err := db.Model(&QueryLog{}).Where("created_at < ?", cutoff.UTC()).Count(&count).Error
	return count, err
}

// DeleteOlderThan removes entries created before cutoff in batches of batchSize and
// returns the number deleted.
func DeleteOlderThan(logger *slog.Logger, db *gorm.DB, cutoff time.Time, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 1000
	}

	var total int64
	for {
		var affected int64
		err := sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
			result := tx.Exec(
				"DELETE FROM query_logs WHERE id IN (SELECT id FROM query_logs WHERE created_at < ? LIMIT ?)",
				cutoff.UTC(), batchSize)
			affected = result.RowsAffected
			return result.Error
		})
		if err != nil {
			return total, fmt.Errorf("failed to delete query logs: %w", err)
		}

		total += affected
		if affected < int64(batchSize) {
			return total, nil
		}
	}
}
