package metrics

import (
	"database/sql"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	metricPrefix = "uplatnice_"

	resultSuccess = "success"
	resultError   = "error"
	resultPartial = "partial"
)

var (
	registerOnce sync.Once

	slipGenerateTotal   *prometheus.CounterVec
	slipGenerateLatency *prometheus.HistogramVec
	slipsRendered       prometheus.Counter

	qrFetchTotal   *prometheus.CounterVec
	qrFetchLatency *prometheus.HistogramVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec
)

// Init registers service metrics and, when db is set, connection pool stats.
func Init(db *sql.DB) {
	registerOnce.Do(func() {
		slipGenerateTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "slip_generate_total",
				Help: "Total slip document generations by result",
			},
			[]string{"result"},
		)
		slipGenerateLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "slip_generate_latency_seconds",
				Help:    "Slip document generation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		slipsRendered = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "slips_rendered_total",
				Help: "Total slips drawn into documents",
			},
		)

		qrFetchTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "qr_fetch_total",
				Help: "Total QR image fetches by source and result",
			},
			[]string{"source", "result"},
		)
		qrFetchLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "qr_fetch_latency_seconds",
				Help:    "QR image fetch latency in seconds",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"source"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			slipGenerateTotal,
			slipGenerateLatency,
			slipsRendered,
			qrFetchTotal,
			qrFetchLatency,
			exportTotal,
			exportLatency,
		)

		if db != nil {
			prometheus.MustRegister(collectors.NewDBStatsCollector(db, "uplatnice"))
		}
	})
}

// ObserveSlipGenerate records document generation latency and result.
func ObserveSlipGenerate(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if slipGenerateTotal != nil {
		slipGenerateTotal.WithLabelValues(result).Inc()
	}
	if slipGenerateLatency != nil {
		slipGenerateLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// AddSlipsRendered counts slips drawn into a document.
func AddSlipsRendered(count int) {
	if count <= 0 {
		return
	}
	if slipsRendered != nil {
		slipsRendered.Add(float64(count))
	}
}

// ObserveQRFetch records one QR image fetch.
func ObserveQRFetch(source, result string, duration time.Duration) {
	if source == "" {
		source = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if qrFetchTotal != nil {
		qrFetchTotal.WithLabelValues(source, result).Inc()
	}
	if qrFetchLatency != nil {
		qrFetchLatency.WithLabelValues(source).Observe(duration.Seconds())
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
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
	ResultPartial = resultPartial
)
