package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label value constants to prevent typos
const (
	// Run and park results
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultAborted = "aborted"

	// Entities
	EntityPark = "park"
	EntityLand = "land"
	EntityRide = "ride"

	// Tables
	TableParks     = "parks"
	TableLands     = "lands"
	TableRides     = "rides"
	TableWaitTimes = "wait_times"

	// Queue-Times API operations
	OpFetchPark = "fetch_park"

	// Fetch attempt outcomes
	AttemptTimeout   = "timeout"
	AttemptHTTPError = "http_error"
	AttemptTransport = "transport_error"
	AttemptDecode    = "decode_error"

	// Database operations
	DBOpInit              = "init"
	DBOpUpsertPark        = "upsert_park"
	DBOpUpsertLand        = "upsert_land"
	DBOpUpsertRide        = "upsert_ride"
	DBOpRecordReading     = "record_reading"
	DBOpCount             = "count"
	DBOpLatestCollectedAt = "latest_collected_at"
	DBOpGetEntity         = "get_entity"
	DBOpListRides         = "list_rides"
)

// Queue-Times API Metrics
var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_times_api_requests_total",
			Help: "Total number of Queue-Times API requests",
		},
		[]string{"operation", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "queue_times_api_request_duration_seconds",
			Help:    "Queue-Times API request latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"operation", "status_code"},
	)

	FetchAttemptFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_times_fetch_attempt_failures_total",
			Help: "Failed fetch attempts by failure kind",
		},
		[]string{"kind"},
	)

	FetchRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "queue_times_fetch_retries_total",
			Help: "Total number of fetch retries after a failed attempt",
		},
	)
)

// Collection Metrics
var (
	CollectionRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collection_runs_total",
			Help: "Total number of collection runs by result",
		},
		[]string{"result"},
	)

	CollectionRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "collection_run_duration_seconds",
			Help:    "Wall time of a full collection run",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
	)

	LastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "collection_last_run_timestamp_seconds",
			Help: "Unix time of the shared collected_at of the last run",
		},
	)

	ParkCollectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "park_collections_total",
			Help: "Total number of per-park collections by result",
		},
		[]string{"park", "result"},
	)

	ReadingsWrittenTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readings_written_total",
			Help: "Total number of wait time readings written",
		},
		[]string{"park"},
	)

	LastRunReadings = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "park_last_run_readings",
			Help: "Readings written for a park in the last run (-1 when the park failed)",
		},
		[]string{"park"},
	)

	EntitiesUpsertedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entities_upserted_total",
			Help: "Total number of park/land/ride upserts by insert result (inserted, already_present, stale)",
		},
		[]string{"entity", "result"},
	)
)

// Database Metrics
var (
	DBOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_operation_duration_seconds",
			Help:    "Database operation latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation"},
	)

	DBOperationErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_operation_errors_total",
			Help: "Total number of database operation errors",
		},
		[]string{"operation"},
	)

	StoreRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "store_rows_total",
			Help: "Number of rows per table at the end of the last run",
		},
		[]string{"table"},
	)
)
