// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	TicksIngested    prometheus.Counter
	PriceFilesFailed prometheus.Counter

	// Feature metrics
	AssetsProcessed *prometheus.CounterVec
	RowsEmitted     prometheus.Counter
	RowsDropped     *prometheus.CounterVec
	AssetDuration   prometheus.Histogram

	// Change-point metrics
	ChangepointFiles         *prometheus.CounterVec
	ChangepointDuplicateKeys *prometheus.CounterVec

	// Pipeline metrics
	PipelineRunsTotal *prometheus.CounterVec
	PipelineDuration  prometheus.Histogram

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulPipeline prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered with reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "momentum_feature_lab"
	}
	f := promauto.With(reg)

	return &Metrics{
		TicksIngested: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "ticks_ingested_total",
			Help:      "Total number of price ticks stored",
		}),
		PriceFilesFailed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "price_files_failed_total",
			Help:      "Total number of price files that could not be read",
		}),

		AssetsProcessed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "features",
			Name:      "assets_processed_total",
			Help:      "Total number of assets assembled by status",
		}, []string{"status"}),
		RowsEmitted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "features",
			Name:      "rows_emitted_total",
			Help:      "Total number of feature rows written to the output table",
		}),
		RowsDropped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "features",
			Name:      "rows_dropped_total",
			Help:      "Total number of rows dropped by reason",
		}, []string{"reason"}),
		AssetDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "features",
			Name:      "asset_duration_seconds",
			Help:      "Time to assemble one asset in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		ChangepointFiles: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "changepoint",
			Name:      "files_total",
			Help:      "Total number of change-point files by lookback window and status",
		}, []string{"lbw", "status"}),
		ChangepointDuplicateKeys: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "changepoint",
			Name:      "duplicate_keys_total",
			Help:      "Total number of superseded change-point records",
		}, []string{"lbw"}),

		PipelineRunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by status",
		}, []string{"status"}),
		PipelineDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Pipeline execution duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		}),

		DBQueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		LastSuccessfulPipeline: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_pipeline_timestamp",
			Help:      "Unix timestamp of last successful pipeline run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", prometheus.DefaultRegisterer)

// RecordTicksIngested adds stored ticks.
func RecordTicksIngested(ticks int) {
	DefaultMetrics.TicksIngested.Add(float64(ticks))
}

// RecordPriceFilesFailed adds price files that could not be read.
func RecordPriceFilesFailed(n int) {
	DefaultMetrics.PriceFilesFailed.Add(float64(n))
}

// RecordAsset records one assembled asset.
func RecordAsset(err error, badTicks, incomplete int, d time.Duration) {
	m := DefaultMetrics
	m.AssetDuration.Observe(d.Seconds())
	if err != nil {
		m.AssetsProcessed.WithLabelValues("failed").Inc()
		return
	}
	m.AssetsProcessed.WithLabelValues("ok").Inc()
	m.RowsDropped.WithLabelValues("bad_tick").Add(float64(badTicks))
	m.RowsDropped.WithLabelValues("incomplete").Add(float64(incomplete))
}

// RecordRowsEmitted counts rows in the final table.
func RecordRowsEmitted(n int) {
	DefaultMetrics.RowsEmitted.Add(float64(n))
}

// RecordChangepointMerge records one lookback window's read and merge.
func RecordChangepointMerge(lookbackWindow, filesRead, filesFailed, dropped, duplicates int) {
	lbw := strconv.Itoa(lookbackWindow)
	m := DefaultMetrics
	m.ChangepointFiles.WithLabelValues(lbw, "ok").Add(float64(filesRead))
	m.ChangepointFiles.WithLabelValues(lbw, "failed").Add(float64(filesFailed))
	m.ChangepointDuplicateKeys.WithLabelValues(lbw).Add(float64(duplicates))
	m.RowsDropped.WithLabelValues("changepoint_merge").Add(float64(dropped))
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, d time.Duration, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(d.Seconds())
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordPipelineRun records a pipeline run.
func RecordPipelineRun(status string, d time.Duration) {
	DefaultMetrics.PipelineRunsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.PipelineDuration.Observe(d.Seconds())
	if status == "success" {
		DefaultMetrics.LastSuccessfulPipeline.SetToCurrentTime()
	}
}
