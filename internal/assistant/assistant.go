// Package assistant answers a question end to end: it loads the dataset, dispatches
// the question and records the outcome in metrics and the query log.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"salesbi/internal/config"
	"salesbi/internal/dataset"
	"salesbi/internal/history"
	"salesbi/internal/intents"
	"salesbi/internal/metrics"
	"salesbi/internal/pkg/async"
)

// ErrEmptyQuestion is returned for blank questions.
var ErrEmptyQuestion = errors.New("question is empty")

// Sources recorded in the query log.
const (
	SourceHTTP = "http"
	SourceCLI  = "cli"
)

var (
	concatDispatcher = intents.NewDispatcher()
	firstDispatcher  = intents.NewDispatcher(intents.WithTopNMode(intents.FirstNumber))
)

// Dispatcher returns the dispatcher matching the configured top-N mode.
func Dispatcher(cfg *config.Config) *intents.Dispatcher {
	if cfg != nil && cfg.UseFirstNumber() {
		return firstDispatcher
	}
	return concatDispatcher
}

// Answer is an Outcome plus how long it took to produce.
type Answer struct {
	intents.Outcome
	Elapsed time.Duration
}

// Service answers questions against the process-wide dataset.
type Service struct {
	Logger *slog.Logger
	Config *config.Config
	// DB receives the query log. Nil disables logging.
	DB     *gorm.DB
	Source string
}

// Ask answers question. A dataset that cannot be loaded is reported as an error;
// an unrecognized question is not.
func (s *Service) Ask(question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	start := time.Now()

	table, err := s.store().Table()
	if err != nil {
		metrics.DatasetLoadErrors.Inc()
		s.Logger.Error("Failed to load dataset", slog.String("path", s.store().Path()), slog.Any("error", err))
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	outcome := Dispatcher(s.Config).Dispatch(question, table)
	elapsed := time.Since(start)

	metrics.ObserveQuestion(string(outcome.Intent), elapsed)
	s.Logger.Info("Question answered",
		slog.String("intent", string(outcome.Intent)),
		slog.Int("n", outcome.N),
		slog.Int("rows", outcome.Result.Len()),
		slog.Duration("elapsed", elapsed))

	s.record(outcome, elapsed)

	return &Answer{Outcome: outcome, Elapsed: elapsed}, nil
}

const overviewWorkers = 4

// Overview answers every example question concurrently, in example order. Overview
// answers are not written to the query log.
func (s *Service) Overview(ctx context.Context) ([]*Answer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	table, err := s.store().Table()
	if err != nil {
		metrics.DatasetLoadErrors.Inc()
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	dispatcher := Dispatcher(s.Config)
	tasks := make([]async.Task[*Answer], len(intents.Examples))
	for i, question := range intents.Examples {
		tasks[i] = async.Task[*Answer]{
			Name: question,
			Execute: func(context.Context) (*Answer, error) {
				start := time.Now()
				outcome := dispatcher.Dispatch(question, table)
				return &Answer{Outcome: outcome, Elapsed: time.Since(start)}, nil
			},
		}
	}

	results := async.NewPool[*Answer](overviewWorkers).Execute(ctx, tasks)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	answers := make([]*Answer, 0, len(tasks))
	for _, question := range intents.Examples {
		r, ok := results[question]
		if !ok || r.Err != nil {
			s.Logger.Warn("Overview question failed", slog.String("question", question), slog.Any("error", r.Err))
			continue
		}
		answers = append(answers, r.Data)
	}
	return answers, nil
}

// Reload rereads the dataset, keeping the current snapshot if that fails.
func (s *Service) Reload() (*dataset.Table, error) {
	t, err := s.store().Reload()
	if err != nil {
		metrics.DatasetLoadErrors.Inc()
		return nil, fmt.Errorf("failed to reload dataset: %w", err)
	}
	return t, nil
}

func (s *Service) store() *dataset.Store {
	path := ""
	if s.Config != nil {
		path = s.Config.DatasetPath
	}
	return dataset.Default(path)
}

func (s *Service) record(outcome intents.Outcome, elapsed time.Duration) {
	if s.DB == nil {
		return
	}

	entry := &history.QueryLog{
		Question:   outcome.Question,
		Intent:     string(outcome.Intent),
		TopN:       outcome.N,
		RowCount:   outcome.Result.Len(),
		DurationMs: elapsed.Milliseconds(),
		Source:     s.Source,
	}
	if err := history.Record(s.Logger, s.DB, entry); err != nil {
		s.Logger.Warn("Failed to record question", slog.Any("error", err))
	}
}

// LoadErrorMessage is the user-facing text for a dataset that failed to load.
func LoadErrorMessage(err error) string {
	var loadErr *dataset.LoadError
	if errors.As(err, &loadErr) {
		err = loadErr
	} else if inner := errors.Unwrap(err); inner != nil {
		err = inner
	}
	return "Error loading data: " + err.Error()
}
