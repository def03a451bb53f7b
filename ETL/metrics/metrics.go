package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "etl",
		Name:      "runs_total",
		Help:      "Total number of ETL runs broken down by final status.",
	}, []string{"status"})

	runDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "etl",
		Name:      "run_duration_seconds",
		Help:      "Duration of ETL runs from extraction start to audit record.",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
	}, []string{"status"})

	rowsLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "etl",
		Name:      "rows_loaded",
		Help:      "Rows written to employee_profile by the last successful run.",
	})

	fetchAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "etl",
		Subsystem: "fetch",
		Name:      "attempts_total",
		Help:      "Report fetch attempts broken down by source and result.",
	}, []string{"source", "result"})

	validationViolations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "etl",
		Subsystem: "validation",
		Name:      "violations_total",
		Help:      "Fatal data-quality violations broken down by rule.",
	}, []string{"rule"})

	auditWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "etl",
		Name:      "audit_write_failures_total",
		Help:      "Failed attempts to record a failed run in etl_runs.",
	})
)

// ObserveRun записывает итог запуска
func ObserveRun(status string, duration time.Duration, rows int) {
	runsTotal.WithLabelValues(status).Inc()
	runDuration.WithLabelValues(status).Observe(duration.Seconds())
	if status == "SUCCESS" {
		rowsLoaded.Set(float64(rows))
	}
}

// ObserveFetchAttempt учитывает одну попытку получения отчёта
func ObserveFetchAttempt(source, result string) {
	fetchAttempts.WithLabelValues(source, result).Inc()
}

// ObserveViolation учитывает нарушение правила проверки данных
func ObserveViolation(rule string) {
	validationViolations.WithLabelValues(rule).Inc()
}

// ObserveAuditWriteFailure учитывает неудачную запись журнала
func ObserveAuditWriteFailure() {
	auditWriteFailures.Inc()
}
