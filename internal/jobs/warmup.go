package jobs

import (
	"log/slog"

	"salesbi/internal/dataset"
	"salesbi/internal/metrics"
)

// WarmupJob reads the dataset once at startup so the first question does not pay
// for the load. A failed load is logged; the next question retries it.
type WarmupJob struct {
	store  *dataset.Store
	logger *slog.Logger
}

func NewWarmupJob(store *dataset.Store, logger *slog.Logger) *WarmupJob {
	return &WarmupJob{store: store, logger: logger}
}

func (j *WarmupJob) Run() error {
	if j.store.Loaded() {
		return nil
	}

	t, err := j.store.Table()
	if err != nil {
		metrics.DatasetLoadErrors.Inc()
		j.logger.Warn("Dataset warm-up failed", slog.String("path", j.store.Path()), slog.Any("error", err))
		return nil
	}

	j.logger.Info("Dataset loaded",
		slog.String("path", j.store.Path()),
		slog.Int("rows", t.Len()),
		slog.Int("months", len(t.Months())))
	return nil
}
