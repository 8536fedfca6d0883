package testsupport

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"
	ctestsupport "github.com/karloscodes/cartridge/testsupport"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"salesbi/internal"
	"salesbi/internal/config"
	"salesbi/internal/database"
	"salesbi/internal/dataset"
)

// testDBCache caches test databases by test name to allow multiple calls
// within the same test to share the same database
var testDBCache = make(map[string]*gorm.DB)
var testDBCacheMu sync.Mutex

// TestDBManager wraps cartridge's TestDBManager with salesbi's interface
type TestDBManager struct {
	*ctestsupport.TestDBManager
}

// NewTestDBManager creates a TestDBManager that implements cartridge.DBManager
func NewTestDBManager(db *gorm.DB) *TestDBManager {
	return &TestDBManager{
		TestDBManager: ctestsupport.NewTestDBManager(db),
	}
}

var _ cartridge.DBManager = (*TestDBManager)(nil)

// SetupTestDB creates a test database with all models migrated.
// Uses a named in-memory database with cache=shared so every connection in a
// test sees the same data. Cached by root test name.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	rootName := t.Name()
	if idx := strings.Index(rootName, "/"); idx > 0 {
		rootName = rootName[:idx]
	}

	testDBCacheMu.Lock()
	if db, exists := testDBCache[rootName]; exists {
		testDBCacheMu.Unlock()
		return db
	}
	testDBCacheMu.Unlock()

	sanitizedName := strings.ReplaceAll(rootName, "/", "_")
	dsn := fmt.Sprintf("file:test_%s_%d?mode=memory&cache=shared", sanitizedName, time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("testsupport: failed to open test database: %v", err)
	}

	db.Exec("PRAGMA journal_mode = WAL")

	if err := db.AutoMigrate(database.Models()...); err != nil {
		t.Fatalf("testsupport: failed to migrate models: %v", err)
	}

	testDBCacheMu.Lock()
	testDBCache[rootName] = db
	testDBCacheMu.Unlock()

	t.Cleanup(func() {
		testDBCacheMu.Lock()
		delete(testDBCache, rootName)
		testDBCacheMu.Unlock()
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// SetupTestDBManager creates a test DB manager using cartridge's testsupport
func SetupTestDBManager(t *testing.T) (*TestDBManager, *slog.Logger) {
	cfg := config.GetConfig()

	if cfg.Environment != config.Test {
		t.Fatalf("CRITICAL: Tests must run in test environment! Current: %s. Set SALESBI_ENV=test", cfg.Environment)
	}

	db := SetupTestDB(t)
	return NewTestDBManager(db), GetLogger()
}

// CleanAllTables clears all non-system tables in the database
func CleanAllTables(db *gorm.DB) {
	var tableNames []string
	db.Raw("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'").Scan(&tableNames)

	db.Transaction(func(tx *gorm.DB) error {
		for _, table := range tableNames {
			tx.Exec("DELETE FROM " + table)
		}
		return nil
	})
}

// GetLogger returns a test logger
func GetLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})
	return slog.New(handler)
}

// SalesRow is a fixture row in the column order of the sales workbook.
type SalesRow struct {
	ItemID      string
	CustomerID  string
	OrderDate   time.Time
	TotalPrice  float64
	QtyShipped  float64
	QtyReturned float64
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SampleSalesRows is a ten-row quarter of sales used across packages.
//
// Totals: products I-104 800, I-101 750, I-102 500, I-103 225, I-105 120;
// customers by sales C-4 800, C-1 700, C-2 550, C-3 225, C-5 120;
// returns C-3 3, C-4 3, C-1 1, C-6 1; months 2024-01 950, 2024-02 1170,
// 2024-03 425; shipped 40, returned 8.
func SampleSalesRows() []SalesRow {
	return []SalesRow{
		{"I-101", "C-1", day(2024, time.January, 5), 500, 10, 1},
		{"I-102", "C-2", day(2024, time.January, 12), 300, 5, 0},
		{"I-103", "C-3", day(2024, time.January, 20), 150, 3, 2},
		{"I-101", "C-2", day(2024, time.February, 2), 250, 5, 0},
		{"I-104", "C-4", day(2024, time.February, 14), 800, 8, 3},
		{"I-105", "C-5", day(2024, time.February, 21), 120, 2, 0},
		{"I-106", "C-6", day(2024, time.March, 3), 90, 1, 1},
		{"I-102", "C-1", day(2024, time.March, 9), 200, 4, 0},
		{"I-107", "C-7", day(2024, time.March, 15), 60, 1, 0},
		{"I-103", "C-3", day(2024, time.March, 28), 75, 1, 1},
	}
}

// NewTable builds an in-memory table from fixture rows.
func NewTable(rows []SalesRow) *dataset.Table {
	records := make([]dataset.Record, len(rows))
	for i, r := range rows {
		records[i] = dataset.Record{
			ItemID:      r.ItemID,
			CustomerID:  r.CustomerID,
			OrderDate:   r.OrderDate,
			TotalPrice:  decimal.NewFromFloat(r.TotalPrice),
			QtyShipped:  decimal.NewFromFloat(r.QtyShipped),
			QtyReturned: decimal.NewFromFloat(r.QtyReturned),
		}
	}
	return dataset.NewTable("memory://sales", records)
}

// SampleTable is NewTable(SampleSalesRows()).
func SampleTable() *dataset.Table {
	return NewTable(SampleSalesRows())
}

func header() []string {
	return append([]string(nil), dataset.RequiredColumns...)
}

func (r SalesRow) cells() []string {
	return []string{
		r.ItemID,
		r.CustomerID,
		r.OrderDate.Format("2006-01-02"),
		strconv.FormatFloat(r.TotalPrice, 'f', -1, 64),
		strconv.FormatFloat(r.QtyShipped, 'f', -1, 64),
		strconv.FormatFloat(r.QtyReturned, 'f', -1, 64),
	}
}

// WriteSalesWorkbook saves rows to an .xlsx file in a temp dir and returns its path.
// Order dates are written as real date cells, numbers as numeric cells.
func WriteSalesWorkbook(t *testing.T, rows []SalesRow) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	hdr := header()
	headerCells := make([]any, len(hdr))
	for i, h := range hdr {
		headerCells[i] = h
	}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &headerCells))

	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	require.NoError(t, err)

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		values := []any{r.ItemID, r.CustomerID, r.OrderDate, r.TotalPrice, r.QtyShipped, r.QtyReturned}
		require.NoError(t, f.SetSheetRow(sheet, cell, &values))

		dateCell, err := excelize.CoordinatesToCellName(3, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetCellStyle(sheet, dateCell, dateCell, dateStyle))
	}

	path := filepath.Join(t.TempDir(), "Sales_data.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

// WriteSalesCSV saves rows to a .csv file in a temp dir and returns its path.
func WriteSalesCSV(t *testing.T, rows []SalesRow) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sales.csv")
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()

	w := csv.NewWriter(file)
	require.NoError(t, w.Write(header()))
	for _, r := range rows {
		require.NoError(t, w.Write(r.cells()))
	}
	w.Flush()
	require.NoError(t, w.Error())
	return path
}

// InstallStore makes store the process-wide dataset for the duration of the test.
func InstallStore(t *testing.T, store *dataset.Store) {
	t.Helper()
	dataset.SetDefault(store)
	t.Cleanup(func() { dataset.SetDefault(nil) })
}

// CreateMinimalTestApp creates a test Fiber app with all routes, answering
// questions from store.
func CreateMinimalTestApp(t *testing.T, db *gorm.DB, store *dataset.Store) *fiber.App {
	t.Helper()

	InstallStore(t, store)

	dbManager := NewTestDBManager(db)
	appConfig := config.GetConfig()
	appConfig.Environment = config.Test

	cfg := cartridge.DefaultServerConfig()
	cfg.Config = appConfig
	cfg.Logger = GetLogger()
	cfg.DBManager = dbManager

	srv, err := cartridge.NewServer(cfg)
	require.NoError(t, err)

	internal.MountAppRoutes(srv)
	return srv.App()
}
