package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds all prometheus metrics for gridcast.
// uses a custom registry to avoid polluting the global namespace.
type Metrics struct {
	Registry *prometheus.Registry

	// http_request_duration_seconds - histogram for api latency
	HTTPRequestDuration *prometheus.HistogramVec

	// gridcast_events_ingested_total - counter for accepted events
	EventsIngestedTotal *prometheus.CounterVec

	// gridcast_events_skipped_total - counter for records dropped during parsing
	EventsSkippedTotal *prometheus.CounterVec

	// gridcast_grids_built_total - counter for grid computations
	GridsBuiltTotal prometheus.Counter

	// gridcast_report_build_duration_seconds - histogram for full report builds
	ReportBuildDuration prometheus.Histogram

	// gridcast_report_cache_hits_total / misses - cache effectiveness
	ReportCacheHits   prometheus.Counter
	ReportCacheMisses prometheus.Counter
}

// New creates and registers all prometheus metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	// add standard go runtime and process collectors
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		Registry: reg,

		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),

		EventsIngestedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gridcast_events_ingested_total",
				Help: "Total number of post events accepted into storage",
			},
			[]string{"format"},
		),

		EventsSkippedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gridcast_events_skipped_total",
				Help: "Total number of source records skipped as unparseable",
			},
			[]string{"format"},
		),

		GridsBuiltTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gridcast_grids_built_total",
			Help: "Total number of hour-by-day grids computed",
		}),

		ReportBuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gridcast_report_build_duration_seconds",
			Help:    "Duration of full report computations in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		}),

		ReportCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gridcast_report_cache_hits_total",
			Help: "Report requests served from cache",
		}),

		ReportCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gridcast_report_cache_misses_total",
			Help: "Report requests that required a fresh computation",
		}),
	}

	// register all custom metrics
	reg.MustRegister(
		m.HTTPRequestDuration,
		m.EventsIngestedTotal,
		m.EventsSkippedTotal,
		m.GridsBuiltTotal,
		m.ReportBuildDuration,
		m.ReportCacheHits,
		m.ReportCacheMisses,
	)

	return m
}

// RecordHTTPRequest records the duration of an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, durationSeconds float64) {
	m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
}

// RecordIngestBatch records the outcome of one ingestion batch.
func (m *Metrics) RecordIngestBatch(format string, accepted, skipped int) {
	m.EventsIngestedTotal.WithLabelValues(format).Add(float64(accepted))
	m.EventsSkippedTotal.WithLabelValues(format).Add(float64(skipped))
}

// RecordReportBuild records one report computation.
func (m *Metrics) RecordReportBuild(durationSeconds float64) {
	m.GridsBuiltTotal.Inc()
	m.ReportBuildDuration.Observe(durationSeconds)
}

// RecordCacheHit and RecordCacheMiss track report cache effectiveness.
func (m *Metrics) RecordCacheHit()  { m.ReportCacheHits.Inc() }
func (m *Metrics) RecordCacheMiss() { m.ReportCacheMisses.Inc() }
