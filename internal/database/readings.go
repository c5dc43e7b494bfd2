package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"parkwait-collector/internal/metrics"
)

// TimestampLayout is the stored format of wait_times.collected_at (local wall time)
const TimestampLayout = "2006-01-02 15:04:05"

// Reading is one observation of a ride's queue
type Reading struct {
	RideID         int64
	WaitTime       *int // nil when upstream reports no wait time
	IsOpen         bool
	CollectedAt    time.Time
	APILastUpdated *string
}

// TimeFields are the calendar fields derived from a collection timestamp
type TimeFields struct {
	DayOfWeek int // 0 = Monday, 6 = Sunday
	Hour      int
	IsWeekend bool
}

// DeriveTimeFields computes the derived calendar fields for t in t's own location
func DeriveTimeFields(t time.Time) TimeFields {
	dow := (int(t.Weekday()) + 6) % 7
	return TimeFields{
		DayOfWeek: dow,
		Hour:      t.Hour(),
		IsWeekend: dow >= 5,
	}
}

// RecordReading appends a wait time row. The derived calendar fields are
// always computed from CollectedAt. Fails if the ride does not exist.
func (db *DB) RecordReading(r Reading) (int64, error) {
	timer := prometheus.NewTimer(metrics.DBOperationDuration.WithLabelValues(metrics.DBOpRecordReading))
	defer timer.ObserveDuration()

	tf := DeriveTimeFields(r.CollectedAt)

	result, err := db.conn.Exec(`
		INSERT INTO wait_times
		(ride_id, wait_time, is_open, collected_at, api_last_updated, day_of_week, hour, is_weekend)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.RideID, r.WaitTime, r.IsOpen, r.CollectedAt.Format(TimestampLayout), r.APILastUpdated,
		tf.DayOfWeek, tf.Hour, tf.IsWeekend)
	if err != nil {
		metrics.DBOperationErrorsTotal.WithLabelValues(metrics.DBOpRecordReading).Inc()
		return 0, fmt.Errorf("failed to record reading for ride %d: %w", r.RideID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get reading id: %w", err)
	}

	return id, nil
}

// StoredReading is a wait_times row as persisted. Timestamps are returned
// as the stored text; the driver would otherwise coerce TIMESTAMP columns.
type StoredReading struct {
	ID             int64
	RideID         int64
	WaitTime       *int
	IsOpen         bool
	CollectedAt    string
	APILastUpdated *string
	TimeFields
}

// GetReading retrieves a reading by ID. Returns nil if absent.
func (db *DB) GetReading(id int64) (*StoredReading, error) {
	timer := prometheus.NewTimer(metrics.DBOperationDuration.WithLabelValues(metrics.DBOpGetEntity))
	defer timer.ObserveDuration()

	var r StoredReading
	err := db.conn.QueryRow(`
		SELECT id, ride_id, wait_time, is_open,
		       CAST(collected_at AS TEXT), CAST(api_last_updated AS TEXT),
		       day_of_week, hour, is_weekend
		FROM wait_times WHERE id = ?
	`, id).Scan(
		&r.ID, &r.RideID, &r.WaitTime, &r.IsOpen, &r.CollectedAt, &r.APILastUpdated,
		&r.DayOfWeek, &r.Hour, &r.IsWeekend,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		metrics.DBOperationErrorsTotal.WithLabelValues(metrics.DBOpGetEntity).Inc()
		return nil, fmt.Errorf("failed to get reading: %w", err)
	}
	return &r, nil
}
