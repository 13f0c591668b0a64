package metrics

import (
	"database/sql"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"pinmap/internal/platform/logger"
)

const (
	metricPrefix = "pinmap_"

	resultSuccess = "success"
	resultError   = "error"

	requestResultApplied    = "applied"
	requestResultUnresolved = "unresolved"
	requestResultFailed     = "failed"
)

var (
	registerOnce sync.Once

	pipelineRequests *prometheus.CounterVec
	pipelineQueue    prometheus.Gauge
	refreshTotal     prometheus.Counter
	refreshLatency   prometheus.Histogram
	refreshEntries   prometheus.Histogram

	importTotal   *prometheus.CounterVec
	importLatency *prometheus.HistogramVec
	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec
	reportTotal   *prometheus.CounterVec
	reportLatency *prometheus.HistogramVec

	streamClients prometheus.Gauge
)

// Init registers pipeline and backend metrics. A non-nil db adds the stored-session gauge
// for the given table.
func Init(db *sql.DB, table string, log *logger.Logger) {
	registerOnce.Do(func() {
		pipelineRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "pipeline_requests_total",
				Help: "Total change requests processed by kind and result",
			},
			[]string{"kind", "result"},
		)
		pipelineQueue = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "pipeline_queue_depth",
				Help: "Change requests waiting for the consumer",
			},
		)
		refreshTotal = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "pipeline_refresh_total",
				Help: "Total coalesced option recomputations",
			},
		)
		refreshLatency = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "pipeline_refresh_latency_seconds",
				Help:    "Coalesced option recomputation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
		)
		refreshEntries = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "pipeline_refresh_batch_requests",
				Help:    "Change requests coalesced into one recomputation",
				Buckets: prometheus.ExponentialBuckets(1, 2, 8),
			},
		)

		importTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "import_total",
				Help: "Total session imports by backend and result",
			},
			[]string{"backend", "result"},
		)
		importLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "import_latency_seconds",
				Help:    "Session import latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"backend", "result"},
		)
		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total session exports by backend and result",
			},
			[]string{"backend", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Session export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"backend", "result"},
		)
		reportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_total",
				Help: "Total report renders by backend and result",
			},
			[]string{"backend", "result"},
		)
		reportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_latency_seconds",
				Help:    "Report render latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"backend", "result"},
		)

		streamClients = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "stream_clients",
				Help: "Connected grid stream clients",
			},
		)

		prometheus.MustRegister(
			pipelineRequests,
			pipelineQueue,
			refreshTotal,
			refreshLatency,
			refreshEntries,
			importTotal,
			importLatency,
			exportTotal,
			exportLatency,
			reportTotal,
			reportLatency,
			streamClients,
		)

		if db != nil {
			registerDBMetrics(db, table, log)
		}
	})
}

// IncPipelineRequest counts a processed change request.
func IncPipelineRequest(kind, result string) {
	if kind == "" {
		kind = "unknown"
	}
	if result == "" {
		result = requestResultApplied
	}
	if pipelineRequests != nil {
		pipelineRequests.WithLabelValues(kind, result).Inc()
	}
}

// SetPipelineQueue sets the number of queued change requests.
func SetPipelineQueue(depth int) {
	if depth < 0 {
		depth = 0
	}
	if pipelineQueue != nil {
		pipelineQueue.Set(float64(depth))
	}
}

// ObserveRefresh records one coalesced recomputation covering batch requests.
func ObserveRefresh(batch int, duration time.Duration) {
	if refreshTotal != nil {
		refreshTotal.Inc()
	}
	if refreshLatency != nil {
		refreshLatency.Observe(duration.Seconds())
	}
	if refreshEntries != nil && batch > 0 {
		refreshEntries.Observe(float64(batch))
	}
}

// ObserveImport records import latency and result.
func ObserveImport(backend, result string, duration time.Duration) {
	observeBackend(importTotal, importLatency, backend, result, duration)
}

// ObserveExport records export latency and result.
func ObserveExport(backend, result string, duration time.Duration) {
	observeBackend(exportTotal, exportLatency, backend, result, duration)
}

// ObserveReport records report latency and result.
func ObserveReport(backend, result string, duration time.Duration) {
	observeBackend(reportTotal, reportLatency, backend, result, duration)
}

func observeBackend(total *prometheus.CounterVec, latency *prometheus.HistogramVec, backend, result string, duration time.Duration) {
	if backend == "" {
		backend = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if total != nil {
		total.WithLabelValues(backend, result).Inc()
	}
	if latency != nil {
		latency.WithLabelValues(backend, result).Observe(duration.Seconds())
	}
}

// AddStreamClients adjusts the connected stream client gauge.
func AddStreamClients(delta int) {
	if streamClients != nil {
		streamClients.Add(float64(delta))
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError

	RequestApplied    = requestResultApplied
	RequestUnresolved = requestResultUnresolved
	RequestFailed     = requestResultFailed
)
