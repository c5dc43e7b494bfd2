package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"parkwait-collector/internal/metrics"
)

// CountParks returns the number of parks in the database
func (db *DB) CountParks() (int, error) {
	return db.count(metrics.TableParks)
}

// CountLands returns the number of lands in the database
func (db *DB) CountLands() (int, error) {
	return db.count(metrics.TableLands)
}

// CountRides returns the number of rides in the database
func (db *DB) CountRides() (int, error) {
	return db.count(metrics.TableRides)
}

// CountReadings returns the number of wait time readings in the database
func (db *DB) CountReadings() (int, error) {
	return db.count(metrics.TableWaitTimes)
}

// count only ever receives one of the fixed table name constants
func (db *DB) count(table string) (int, error) {
	timer := prometheus.NewTimer(metrics.DBOperationDuration.WithLabelValues(metrics.DBOpCount))
	defer timer.ObserveDuration()

	var count int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&count); err != nil {
		metrics.DBOperationErrorsTotal.WithLabelValues(metrics.DBOpCount).Inc()
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return count, nil
}

// LatestCollectedAt returns the most recent collection timestamp, or nil if
// no readings have been recorded yet
func (db *DB) LatestCollectedAt() (*time.Time, error) {
	timer := prometheus.NewTimer(metrics.DBOperationDuration.WithLabelValues(metrics.DBOpLatestCollectedAt))
	defer timer.ObserveDuration()

	var latest sql.NullString
	if err := db.conn.QueryRow(`SELECT CAST(MAX(collected_at) AS TEXT) FROM wait_times`).Scan(&latest); err != nil {
		metrics.DBOperationErrorsTotal.WithLabelValues(metrics.DBOpLatestCollectedAt).Inc()
		return nil, fmt.Errorf("failed to get latest collection time: %w", err)
	}
	if !latest.Valid {
		return nil, nil
	}

	t, err := time.ParseInLocation(TimestampLayout, latest.String, time.Local)
	if err != nil {
		return nil, fmt.Errorf("failed to parse collected_at %q: %w", latest.String, err)
	}
	return &t, nil
}

// RideStatus is a ride with its land name and most recent reading
type RideStatus struct {
	Ride
	LandName          *string
	LatestWaitTime    *int
	LatestIsOpen      *bool
	LatestCollectedAt *string
}

// ListRides returns all rides of a park with their latest reading, grouped
// by land (standalone rides last)
func (db *DB) ListRides(parkID int64) ([]*RideStatus, error) {
	timer := prometheus.NewTimer(metrics.DBOperationDuration.WithLabelValues(metrics.DBOpListRides))
	defer timer.ObserveDuration()

	rows, err := db.conn.Query(`
		SELECT r.id, r.park_id, r.land_id, r.name, l.name,
		       w.wait_time, w.is_open, CAST(w.collected_at AS TEXT)
		FROM rides r
		LEFT JOIN lands l ON l.id = r.land_id
		LEFT JOIN wait_times w ON w.id = (
			SELECT MAX(id) FROM wait_times WHERE ride_id = r.id
		)
		WHERE r.park_id = ?
		ORDER BY l.name IS NULL, l.name, r.name
	`, parkID)
	if err != nil {
		metrics.DBOperationErrorsTotal.WithLabelValues(metrics.DBOpListRides).Inc()
		return nil, fmt.Errorf("failed to list rides: %w", err)
	}
	defer rows.Close()

	var rides []*RideStatus
	for rows.Next() {
		var r RideStatus
		err := rows.Scan(
			&r.ID, &r.ParkID, &r.LandID, &r.Name, &r.LandName,
			&r.LatestWaitTime, &r.LatestIsOpen, &r.LatestCollectedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ride: %w", err)
		}
		rides = append(rides, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rides: %w", err)
	}

	return rides, nil
}
