package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "lumengrid_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	calculateTotal   *prometheus.CounterVec
	calculateLatency *prometheus.HistogramVec

	daylightFetchTotal   *prometheus.CounterVec
	daylightFetchLatency *prometheus.HistogramVec
	fallbackDays         prometheus.Counter
	skippedDays          prometheus.Counter

	reportExportTotal   *prometheus.CounterVec
	reportExportLatency *prometheus.HistogramVec

	publishTotal *prometheus.CounterVec
)

// Init registers observability metrics and, when an audit database is
// configured, its connection-pool gauge.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		calculateTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "calculate_requests_total",
				Help: "Total usage calculation requests by result",
			},
			[]string{"result"},
		)
		calculateLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "calculate_latency_seconds",
				Help:    "Usage calculation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		daylightFetchTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "daylight_fetch_total",
				Help: "Total day-length fetches by source and result",
			},
			[]string{"source", "result"},
		)
		daylightFetchLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "daylight_fetch_latency_seconds",
				Help:    "Day-length fetch latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source", "result"},
		)
		fallbackDays = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "daylight_fallback_days_total",
				Help: "Days filled from the seasonal fallback model",
			},
		)
		skippedDays = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "calculate_skipped_days_total",
				Help: "Days excluded from monthly sums for missing data",
			},
		)

		reportExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_export_total",
				Help: "Total usage report exports by format and result",
			},
			[]string{"format", "result"},
		)
		reportExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_export_latency_seconds",
				Help:    "Usage report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		publishTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "result_publish_total",
				Help: "Total published calculation results by result",
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			calculateTotal,
			calculateLatency,
			daylightFetchTotal,
			daylightFetchLatency,
			fallbackDays,
			skippedDays,
			reportExportTotal,
			reportExportLatency,
			publishTotal,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

func registerDBMetrics(db *sql.DB, logger *log.Logger) {
	_ = logger
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "audit_db_open_connections",
			Help: "Open audit database connections",
		},
		func() float64 {
			if db == nil {
				return 0
			}
			return float64(db.Stats().OpenConnections)
		},
	))
}

// ObserveCalculate records calculation request duration and result.
func ObserveCalculate(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if calculateTotal != nil {
		calculateTotal.WithLabelValues(result).Inc()
	}
	if calculateLatency != nil {
		calculateLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveDaylightFetch records a day-length fetch by source and result.
func ObserveDaylightFetch(source, result string, duration time.Duration) {
	if source == "" {
		source = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if daylightFetchTotal != nil {
		daylightFetchTotal.WithLabelValues(source, result).Inc()
	}
	if daylightFetchLatency != nil {
		daylightFetchLatency.WithLabelValues(source, result).Observe(duration.Seconds())
	}
}

// AddFallbackDays counts days served by the seasonal fallback model.
func AddFallbackDays(count int) {
	if count <= 0 {
		return
	}
	if fallbackDays != nil {
		fallbackDays.Add(float64(count))
	}
}

// AddSkippedDays counts days excluded from monthly sums.
func AddSkippedDays(count int) {
	if count <= 0 {
		return
	}
	if skippedDays != nil {
		skippedDays.Add(float64(count))
	}
}

// ObserveReportExport records export latency by format and result.
func ObserveReportExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if reportExportTotal != nil {
		reportExportTotal.WithLabelValues(format, result).Inc()
	}
	if reportExportLatency != nil {
		reportExportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// IncPublish counts a published calculation result.
func IncPublish(result string) {
	if result == "" {
		result = resultSuccess
	}
	if publishTotal != nil {
		publishTotal.WithLabelValues(result).Inc()
	}
}

// Exported result constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
