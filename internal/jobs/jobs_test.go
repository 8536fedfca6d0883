package jobs

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"salesbi/internal/config"
	"salesbi/internal/dataset"
	"salesbi/internal/history"
)

type testDBManager struct {
	db *gorm.DB
}

func (m testDBManager) GetConnection() *gorm.DB {
	return m.db
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:jobs_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&history.QueryLog{}))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func seedLogs(t *testing.T, db *gorm.DB, now time.Time, ages ...int) {
	t.Helper()
	for i, days := range ages {
		require.NoError(t, db.Create(&history.QueryLog{
			ID:        fmt.Sprintf("log-%d", i),
			Question:  "top products",
			Intent:    "top_products",
			CreatedAt: now.AddDate(0, 0, -days),
		}).Error)
	}
}

func TestCleanupJobRemovesExpiredLogs(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	seedLogs(t, db, now, 1, 30, 91, 120, 400)

	job := NewCleanupJob(testDBManager{db}, testLogger(), &config.Config{HistoryRetentionDays: 90})
	job.now = func() time.Time { return now }

	require.NoError(t, job.Run())

	var remaining int64
	require.NoError(t, db.Model(&history.QueryLog{}).Count(&remaining).Error)
	assert.Equal(t, int64(2), remaining)

	// Nothing left to delete on the next run.
	require.NoError(t, job.Run())
}

func TestCleanupJobZeroRetentionKeepsEverything(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now().UTC()
	seedLogs(t, db, now, 1000)

	job := NewCleanupJob(testDBManager{db}, testLogger(), &config.Config{HistoryRetentionDays: 0})
	require.NoError(t, job.Run())

	var remaining int64
	require.NoError(t, db.Model(&history.QueryLog{}).Count(&remaining).Error)
	assert.Equal(t, int64(1), remaining)
}

func TestWarmupJob(t *testing.T) {
	table := dataset.NewTable("warm.csv", []dataset.Record{{
		ItemID:    "A",
		OrderDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}})

	calls := 0
	store := dataset.NewStoreWithLoader("warm.csv", func(string) (*dataset.Table, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("not yet")
		}
		return table, nil
	})
	job := NewWarmupJob(store, testLogger())

	require.NoError(t, job.Run())
	assert.False(t, store.Loaded())

	require.NoError(t, job.Run())
	assert.True(t, store.Loaded())

	require.NoError(t, job.Run())
	assert.Equal(t, 2, calls)
}

func TestSchedulerStartStop(t *testing.T) {
	t.Setenv("SALESBI_ENV", config.Test)
	config.Reset()
	t.Cleanup(config.Reset)

	db := setupTestDB(t)
	dataset.SetDefault(dataset.NewStaticStore(dataset.NewTable("static", nil)))
	t.Cleanup(func() { dataset.SetDefault(nil) })

	s, err := NewScheduler(testDBManager{db}, testLogger())
	require.NoError(t, err)

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	require.NoError(t, s.Start())

	s.Stop()
	assert.False(t, s.IsRunning())
	require.NoError(t, s.RunCleanup())
}
