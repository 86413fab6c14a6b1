package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Database metrics
	DBQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kbmetrics_db_queries_total",
			Help: "Total number of database operations",
		},
		[]string{"database", "operation", "status"}, // database: metrics|workspace|auth2|userjobstate|exec_engine
	)

	DBQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kbmetrics_db_query_duration_seconds",
			Help:    "Database operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"database", "operation"},
	)

	// Cache metrics
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kbmetrics_cache_lookups_total",
			Help: "Total number of report cache lookups",
		},
		[]string{"method", "result"}, // result: hit|miss|error
	)

	// Bulk insert metrics
	BulkInsertDocuments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kbmetrics_bulk_insert_documents_total",
			Help: "Documents submitted through bulk inserts by outcome",
		},
		[]string{"collection", "status"}, // status: inserted|duplicate|failed
	)

	// Worker metrics
	WorkerRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kbmetrics_worker_runs_total",
			Help: "Maintenance worker runs by outcome",
		},
		[]string{"worker", "status"},
	)

	WorkerRunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kbmetrics_worker_run_duration_seconds",
			Help:    "Maintenance worker run duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		},
		[]string{"worker"},
	)
)

// Init registers all metrics with Prometheus
func Init() {
	// Database metrics
	prometheus.MustRegister(DBQueries)
	prometheus.MustRegister(DBQueryDuration)

	// Cache metrics
	prometheus.MustRegister(CacheLookups)

	// Bulk insert metrics
	prometheus.MustRegister(BulkInsertDocuments)

	// Worker metrics
	prometheus.MustRegister(WorkerRuns)
	prometheus.MustRegister(WorkerRunDuration)
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordDBQuery records a database query
func RecordDBQuery(database, operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	DBQueries.WithLabelValues(database, operation, status).Inc()
	DBQueryDuration.WithLabelValues(database, operation).Observe(duration.Seconds())
}

// RecordCacheLookup records the result of a report cache lookup
func RecordCacheLookup(method, result string) {
	CacheLookups.WithLabelValues(method, result).Inc()
}

// RecordBulkInsert records per-status document counts of one bulk insert
func RecordBulkInsert(collection string, inserted, duplicates, failed int) {
	BulkInsertDocuments.WithLabelValues(collection, "inserted").Add(float64(inserted))
	BulkInsertDocuments.WithLabelValues(collection, "duplicate").Add(float64(duplicates))
	BulkInsertDocuments.WithLabelValues(collection, "failed").Add(float64(failed))
}

// RecordWorkerRun records one maintenance worker run
func RecordWorkerRun(worker string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	WorkerRuns.WithLabelValues(worker, status).Inc()
	WorkerRunDuration.WithLabelValues(worker).Observe(duration.Seconds())
}
