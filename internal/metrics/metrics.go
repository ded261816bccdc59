// Package metrics exports Prometheus metrics for ingest and keyword generation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "recipescanner"

// Metrics holds all service metrics. A nil *Metrics is valid and records nothing.
type Metrics struct {
	RecipesUpserted   *prometheus.CounterVec
	RecipesFailed     *prometheus.CounterVec
	RowsSkipped       *prometheus.CounterVec
	FilesIngested     *prometheus.CounterVec
	KeywordsGenerated *prometheus.CounterVec
	UpsertDuration    prometheus.Histogram

	gatherer prometheus.Gatherer
}

// New registers every metric on reg. Pass a fresh registry in tests.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{gatherer: reg}

	m.RecipesUpserted = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recipes_upserted_total",
		Help:      "Recipe pages created in the remote store",
	}, []string{"website"})

	m.RecipesFailed = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recipes_failed_total",
		Help:      "Recipe page writes that failed",
	}, []string{"website"})

	m.RowsSkipped = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rows_skipped_total",
		Help:      "Export rows without a pin URL or a name",
	}, []string{"website"})

	m.FilesIngested = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "files_ingested_total",
		Help:      "Export files processed, by outcome",
	}, []string{"outcome"})

	m.KeywordsGenerated = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "keywords_generated_total",
		Help:      "Keyword variations returned, by mode",
	}, []string{"mode"})

	m.UpsertDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upsert_batch_duration_seconds",
		Help:      "Wall time of one upsert batch",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	})

	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveUpsert(website string, succeeded, failed int, took time.Duration) {
	if m == nil {
		return
	}
	m.RecipesUpserted.WithLabelValues(website).Add(float64(succeeded))
	m.RecipesFailed.WithLabelValues(website).Add(float64(failed))
	m.UpsertDuration.Observe(took.Seconds())
}

func (m *Metrics) ObserveSkipped(website string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.RowsSkipped.WithLabelValues(website).Add(float64(n))
}

func (m *Metrics) ObserveFile(success bool) {
	if m == nil {
		return
	}
	outcome := "failed"
	if success {
		outcome = "processed"
	}
	m.FilesIngested.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveKeywords(mode string, n int) {
	if m == nil {
		return
	}
	m.KeywordsGenerated.WithLabelValues(mode).Add(float64(n))
}
