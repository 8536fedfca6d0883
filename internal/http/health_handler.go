package http

import (
	"log/slog"
	"time"

	"github.com/karloscodes/cartridge"

	"salesbi/internal/config"
	"salesbi/internal/dataset"
)

// HealthStatus represents the health check response
type HealthStatus struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	DBStatus      string    `json:"db_status"`
	DatasetStatus string    `json:"dataset_status"`
	DatasetRows   int       `json:"dataset_rows"`
}

// HealthIndexAction handles the health check endpoint. It never triggers a dataset
// load; a dataset that has not been read yet reports "pending".
func HealthIndexAction(ctx *cartridge.Context) error {
	dbStatus := "ok"

	db := ctx.DBManager.GetConnection()
	if db == nil {
		dbStatus = "error"
		ctx.Logger.Error("Database connection unavailable")
	} else {
		sqlDB, err := db.DB()
		if err != nil {
			dbStatus = "error"
			ctx.Logger.Error("Database connection error", slog.Any("error", err))
		} else if err := sqlDB.Ping(); err != nil {
			dbStatus = "error"
			ctx.Logger.Error("Database ping failed", slog.Any("error", err))
		}
	}

	health := HealthStatus{
		Status:        "ok",
		Timestamp:     time.Now(),
		DBStatus:      dbStatus,
		DatasetStatus: "pending",
	}

	cfg := ctx.Config.(*config.Config)
	store := dataset.Default(cfg.DatasetPath)
	if store.Loaded() {
		if t, err := store.Table(); err == nil {
			health.DatasetStatus = "loaded"
			health.DatasetRows = t.Len()
		}
	}

	if dbStatus != "ok" {
		health.Status = "degraded"
	}

	return ctx.JSON(health)
}
