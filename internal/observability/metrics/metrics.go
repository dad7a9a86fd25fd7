package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "maintenance_"

	resultSuccess  = "success"
	resultError    = "error"
	resultNoData   = "no_data"
	resultInvalid  = "invalid"
	resultConflict = "conflict"
	resultNotFound = "not_found"
)

var (
	registerOnce sync.Once

	kpiQueryTotal   *prometheus.CounterVec
	kpiQueryLatency *prometheus.HistogramVec

	completionTotal   *prometheus.CounterVec
	completionLatency *prometheus.HistogramVec

	schedulesByStatus *prometheus.GaugeVec
	sweepTotal        *prometheus.CounterVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec

	auditWriteErrors prometheus.Counter
)

// Init registers metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		kpiQueryTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "kpi_query_total",
				Help: "Total KPI queries by kpi and result",
			},
			[]string{"kpi", "result"},
		)
		kpiQueryLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "kpi_query_latency_seconds",
				Help:    "KPI query latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kpi"},
		)

		completionTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "schedule_completion_total",
				Help: "Total schedule completions by result",
			},
			[]string{"result"},
		)
		completionLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "schedule_completion_latency_seconds",
				Help:    "Schedule completion latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		schedulesByStatus = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "schedules",
				Help: "Schedules by due status at the last sweep",
			},
			[]string{"status"},
		)
		sweepTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "sweep_total",
				Help: "Total overdue sweeps by result",
			},
			[]string{"result"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "kpi_export_total",
				Help: "Total KPI exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "kpi_export_latency_seconds",
				Help:    "KPI export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		)

		auditWriteErrors = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "audit_write_errors_total",
				Help: "Audit log writes that failed",
			},
		)

		prometheus.MustRegister(
			kpiQueryTotal,
			kpiQueryLatency,
			completionTotal,
			completionLatency,
			schedulesByStatus,
			sweepTotal,
			exportTotal,
			exportLatency,
			auditWriteErrors,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveKPIQuery records a KPI query duration and result.
func ObserveKPIQuery(kpi, result string, duration time.Duration) {
	if kpi == "" {
		kpi = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if kpiQueryTotal != nil {
		kpiQueryTotal.WithLabelValues(kpi, result).Inc()
	}
	if kpiQueryLatency != nil {
		kpiQueryLatency.WithLabelValues(kpi).Observe(duration.Seconds())
	}
}

// ObserveCompletion records a schedule completion duration and result.
func ObserveCompletion(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if completionTotal != nil {
		completionTotal.WithLabelValues(result).Inc()
	}
	if completionLatency != nil {
		completionLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// SetSchedulesByStatus publishes the schedule count for one due status.
func SetSchedulesByStatus(status string, count int) {
	if status == "" {
		return
	}
	if count < 0 {
		count = 0
	}
	if schedulesByStatus != nil {
		schedulesByStatus.WithLabelValues(status).Set(float64(count))
	}
}

// IncSweep increments the sweep counter.
func IncSweep(result string) {
	if result == "" {
		result = resultSuccess
	}
	if sweepTotal != nil {
		sweepTotal.WithLabelValues(result).Inc()
	}
}

// ObserveExport records export latency and result.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format).Observe(duration.Seconds())
	}
}

// IncAuditWriteError increments the audit failure counter.
func IncAuditWriteError() {
	if auditWriteErrors != nil {
		auditWriteErrors.Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess  = resultSuccess
	ResultError    = resultError
	ResultNoData   = resultNoData
	ResultInvalid  = resultInvalid
	ResultConflict = resultConflict
	ResultNotFound = resultNotFound
)
