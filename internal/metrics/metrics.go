// Package metrics exposes Prometheus instruments for question handling.
package metrics

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// QuestionsTotal counts questions by classified intent.
	QuestionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesbi_questions_total",
			Help: "Total number of questions asked, by intent",
		},
		[]string{"intent"},
	)
	// QuestionDuration is the time spent classifying and aggregating a question.
	QuestionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "salesbi_question_duration_seconds",
			Help:    "Question handling latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
	// DatasetLoadErrors counts failed dataset loads.
	DatasetLoadErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "salesbi_dataset_load_errors_total",
			Help: "Total number of failed dataset loads",
		},
	)
)

// ObserveQuestion records one handled question.
func ObserveQuestion(intent string, elapsed time.Duration) {
	QuestionsTotal.WithLabelValues(intent).Inc()
	QuestionDuration.Observe(elapsed.Seconds())
}

// Handler serves the default registry in the exposition format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
