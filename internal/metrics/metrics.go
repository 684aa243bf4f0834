// Package metrics exposes Prometheus collectors for wordbook exports.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles Prometheus collectors for the exporter and browser session.
// All methods are safe on a nil receiver.
type Metrics struct {
	Registry        *prometheus.Registry
	PagesTotal      *prometheus.CounterVec
	WordsTotal      prometheus.Counter
	AdvancesTotal   *prometheus.CounterVec
	SelectionsTotal *prometheus.CounterVec
	ErrorsTotal     *prometheus.CounterVec
	RunDuration     prometheus.Histogram
	ExtractDuration prometheus.Histogram
}

// New constructs and registers all metrics on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	pages := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordbook_pages_total",
			Help: "Pages visited by the export loop, by outcome.",
		},
		[]string{"outcome"},
	)
	words := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wordbook_words_total",
			Help: "Word cards extracted from the wordbook.",
		},
	)
	advances := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordbook_page_advances_total",
			Help: "Pagination attempts, by result.",
		},
		[]string{"result"},
	)
	selections := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordbook_collection_selections_total",
			Help: "Collection selection attempts, by result.",
		},
		[]string{"result"},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordbook_errors_total",
			Help: "Errors by type.",
		},
		[]string{"error_type"},
	)
	runDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wordbook_run_duration_seconds",
			Help:    "Wall time of export runs.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)
	extractDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wordbook_extract_duration_seconds",
			Help:    "Time spent parsing one page of markup.",
			Buckets: prometheus.DefBuckets,
		},
	)

	registry.MustRegister(pages, words, advances, selections, errorsTotal, runDuration, extractDuration)

	return &Metrics{
		Registry:        registry,
		PagesTotal:      pages,
		WordsTotal:      words,
		AdvancesTotal:   advances,
		SelectionsTotal: selections,
		ErrorsTotal:     errorsTotal,
		RunDuration:     runDuration,
		ExtractDuration: extractDuration,
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// IncPage counts a visited page. outcome is "rows" or "empty".
func (m *Metrics) IncPage(outcome string) {
	if m == nil {
		return
	}
	m.PagesTotal.WithLabelValues(outcome).Inc()
}

// AddWords adds n extracted words.
func (m *Metrics) AddWords(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.WordsTotal.Add(float64(n))
}

// IncAdvance counts a pagination attempt.
func (m *Metrics) IncAdvance(ok bool) {
	if m == nil {
		return
	}
	m.AdvancesTotal.WithLabelValues(result(ok)).Inc()
}

// IncSelection counts a collection selection attempt.
func (m *Metrics) IncSelection(ok bool) {
	if m == nil {
		return
	}
	m.SelectionsTotal.WithLabelValues(result(ok)).Inc()
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

// ObserveRun records the duration of an export run.
func (m *Metrics) ObserveRun(d time.Duration) {
	if m == nil {
		return
	}
	m.RunDuration.Observe(d.Seconds())
}

// ObserveExtract records the time spent extracting one page.
func (m *Metrics) ObserveExtract(d time.Duration) {
	if m == nil {
		return
	}
	m.ExtractDuration.Observe(d.Seconds())
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "miss"
}
