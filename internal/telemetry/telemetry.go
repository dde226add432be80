// Package telemetry exposes Prometheus metrics and an OpenTelemetry tracer for
// query execution, schema cache use and mirror sync runs.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "stayscope"

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeEmpty   = "empty"
	OutcomeError   = "error"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	QueriesTotal        *prometheus.CounterVec
	QueryDuration       *prometheus.HistogramVec
	SchemaCacheLookups  *prometheus.CounterVec
	SyncRunsTotal       *prometheus.CounterVec
	SyncRunDuration     prometheus.Histogram
	SyncDocumentsTotal  *prometheus.CounterVec
	IngestRowsTotal     prometheus.Counter
	IngestOutliersTotal *prometheus.CounterVec
}

// Provider bundles metrics, the registry they live in and a tracer.
type Provider struct {
	Tracer   trace.Tracer
	Metrics  *Metrics
	registry *prometheus.Registry
}

// NewProvider registers all metrics in a fresh registry, together with the Go
// runtime and process collectors.
func NewProvider() *Provider {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Provider{
		Tracer:   otel.Tracer(tracerName),
		Metrics:  initMetrics(promauto.With(reg)),
		registry: reg,
	}
}

func initMetrics(f promauto.Factory) *Metrics {
	return &Metrics{
		QueriesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stayscope_queries_total",
			Help: "Queries executed against the search engine",
		}, []string{"operation", "outcome"}),
		QueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stayscope_query_duration_seconds",
			Help:    "Round-trip time of search engine queries",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"operation"}),
		SchemaCacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stayscope_schema_cache_lookups_total",
			Help: "Field mapping cache lookups by result",
		}, []string{"result"}),
		SyncRunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stayscope_sync_runs_total",
			Help: "Mirror sync runs by outcome",
		}, []string{"outcome"}),
		SyncRunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "stayscope_sync_run_duration_seconds",
			Help:    "Wall time of a full mirror sync run",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		SyncDocumentsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stayscope_sync_documents_total",
			Help: "Documents written by the mirror sync",
		}, []string{"outcome"}),
		IngestRowsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "stayscope_ingest_rows_total",
			Help: "Booking rows inserted by CSV ingestion",
		}),
		IngestOutliersTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stayscope_ingest_outliers_clamped_total",
			Help: "Values clamped by outlier suppression, by column",
		}, []string{"column"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (p *Provider) Registry() *prometheus.Registry {
	return p.registry
}

// RecordQuery counts one query and observes its latency.
func (p *Provider) RecordQuery(operation, outcome string, elapsed time.Duration) {
	p.Metrics.QueriesTotal.WithLabelValues(operation, outcome).Inc()
	p.Metrics.QueryDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// RecordCacheLookup counts a schema cache hit or miss.
func (p *Provider) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	p.Metrics.SchemaCacheLookups.WithLabelValues(result).Inc()
}

// RecordSyncRun counts a finished sync run.
func (p *Provider) RecordSyncRun(outcome string, elapsed time.Duration, indexed, failed int) {
	p.Metrics.SyncRunsTotal.WithLabelValues(outcome).Inc()
	p.Metrics.SyncRunDuration.Observe(elapsed.Seconds())
	p.Metrics.SyncDocumentsTotal.WithLabelValues("indexed").Add(float64(indexed))
	p.Metrics.SyncDocumentsTotal.WithLabelValues("failed").Add(float64(failed))
}

// RecordIngest counts inserted rows and clamped outliers per column.
func (p *Provider) RecordIngest(rows int, clamped map[string]int) {
	p.Metrics.IngestRowsTotal.Add(float64(rows))
	for column, n := range clamped {
		p.Metrics.IngestOutliersTotal.WithLabelValues(column).Add(float64(n))
	}
}

// StartSpan starts a span; the caller ends it.
//
//nolint:spancheck // caller ends the span
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return p.Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
