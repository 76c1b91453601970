package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Import row outcomes.
const (
	OutcomeProcessed = "processed"
	OutcomeSucceeded = "succeeded"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

// Metrics owns a dedicated registry so binaries and tests never collide on the
// default one.
type Metrics struct {
	Registry *prometheus.Registry

	importRows      *prometheus.CounterVec
	importChunk     prometheus.Histogram
	requestDuration *prometheus.HistogramVec
}

func New(serviceName string, defaultCollectors bool) *Metrics {
	registry := prometheus.NewRegistry()
	wrapped := prometheus.WrapRegistererWith(prometheus.Labels{"service": serviceName}, registry)

	m := &Metrics{
		Registry: registry,
		importRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_import_rows_total",
			Help: "Import rows by outcome.",
		}, []string{"outcome"}),
		importChunk: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "catalog_import_chunk_duration_seconds",
			Help:    "Time spent processing and writing one import chunk.",
			Buckets: prometheus.DefBuckets,
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "catalog_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}

	wrapped.MustRegister(m.importRows, m.importChunk, m.requestDuration)
	if defaultCollectors {
		wrapped.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

// ImportRows adds n rows with the given outcome. A nil Metrics records nothing.
func (m *Metrics) ImportRows(outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.importRows.WithLabelValues(outcome).Add(float64(n))
}

// ImportRowsCounter returns the row counter of outcome.
func (m *Metrics) ImportRowsCounter(outcome string) prometheus.Counter {
	return m.importRows.WithLabelValues(outcome)
}

func (m *Metrics) ObserveChunk(d time.Duration) {
	if m == nil {
		return
	}
	m.importChunk.Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Instrument records the duration of every request served by next under route.
func (m *Metrics) Instrument(route string, next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.requestDuration.
			WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}
