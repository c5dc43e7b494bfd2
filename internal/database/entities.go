package database

import (
	"database/sql"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"parkwait-collector/internal/metrics"
)

// InsertResult tags the outcome of an insert-if-absent write
type InsertResult int

const (
	// Inserted means the row did not exist and was created
	Inserted InsertResult = iota + 1
	// AlreadyPresent means a row with the same id and attributes already existed
	AlreadyPresent
	// Stale means a row with the same id existed with different attributes.
	// The stored row is kept as first seen; later sightings are never written.
	Stale
)

func (r InsertResult) String() string {
	switch r {
	case Inserted:
		return "inserted"
	case AlreadyPresent:
		return "already_present"
	case Stale:
		return "stale"
	default:
		return "unknown"
	}
}

// Park represents a tracked venue
type Park struct {
	ID   int64
	Name string
}

// Land represents a themed area within a park
type Land struct {
	ID     int64
	ParkID int64
	Name   string
}

// Ride represents an attraction. LandID is nil for rides outside any land.
type Ride struct {
	ID     int64
	ParkID int64
	LandID *int64
	Name   string
}

// UpsertPark inserts a park if its id is not already present
func (db *DB) UpsertPark(id int64, name string) (InsertResult, error) {
	return db.insertOrIgnore(metrics.DBOpUpsertPark,
		`INSERT OR IGNORE INTO parks (id, name) VALUES (?, ?)`,
		`SELECT COUNT(*) FROM parks WHERE id = ? AND name = ?`,
		[]any{id, name}, []any{id, name})
}

// UpsertLand inserts a land if its id is not already present.
// The park must already exist.
func (db *DB) UpsertLand(id, parkID int64, name string) (InsertResult, error) {
	return db.insertOrIgnore(metrics.DBOpUpsertLand,
		`INSERT OR IGNORE INTO lands (id, park_id, name) VALUES (?, ?, ?)`,
		`SELECT COUNT(*) FROM lands WHERE id = ? AND park_id = ? AND name = ?`,
		[]any{id, parkID, name}, []any{id, parkID, name})
}

// UpsertRide inserts a ride if its id is not already present.
// The park, and the land when landID is non-nil, must already exist.
func (db *DB) UpsertRide(id, parkID int64, name string, landID *int64) (InsertResult, error) {
	return db.insertOrIgnore(metrics.DBOpUpsertRide,
		`INSERT OR IGNORE INTO rides (id, land_id, park_id, name) VALUES (?, ?, ?, ?)`,
		`SELECT COUNT(*) FROM rides WHERE id = ? AND park_id = ? AND name = ? AND land_id IS ?`,
		[]any{id, landID, parkID, name}, []any{id, parkID, name, landID})
}

// insertOrIgnore runs an INSERT OR IGNORE and, when nothing was inserted,
// checks whether the existing row matches the attributes of this sighting
func (db *DB) insertOrIgnore(op, insertQuery, matchQuery string, insertArgs, matchArgs []any) (InsertResult, error) {
	timer := prometheus.NewTimer(metrics.DBOperationDuration.WithLabelValues(op))
	defer timer.ObserveDuration()

	result, err := db.conn.Exec(insertQuery, insertArgs...)
	if err != nil {
		metrics.DBOperationErrorsTotal.WithLabelValues(op).Inc()
		return 0, fmt.Errorf("failed to %s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		metrics.DBOperationErrorsTotal.WithLabelValues(op).Inc()
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows > 0 {
		return Inserted, nil
	}

	var matching int
	if err := db.conn.QueryRow(matchQuery, matchArgs...).Scan(&matching); err != nil {
		metrics.DBOperationErrorsTotal.WithLabelValues(op).Inc()
		return 0, fmt.Errorf("failed to compare existing row: %w", err)
	}
	if matching == 0 {
		return Stale, nil
	}
	return AlreadyPresent, nil
}

// GetPark retrieves a park by ID. Returns nil if absent.
func (db *DB) GetPark(id int64) (*Park, error) {
	timer := prometheus.NewTimer(metrics.DBOperationDuration.WithLabelValues(metrics.DBOpGetEntity))
	defer timer.ObserveDuration()

	var p Park
	err := db.conn.QueryRow(`SELECT id, name FROM parks WHERE id = ?`, id).Scan(&p.ID, &p.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		metrics.DBOperationErrorsTotal.WithLabelValues(metrics.DBOpGetEntity).Inc()
		return nil, fmt.Errorf("failed to get park: %w", err)
	}
	return &p, nil
}

// GetLand retrieves a land by ID. Returns nil if absent.
func (db *DB) GetLand(id int64) (*Land, error) {
	timer := prometheus.NewTimer(metrics.DBOperationDuration.WithLabelValues(metrics.DBOpGetEntity))
	defer timer.ObserveDuration()

	var l Land
	err := db.conn.QueryRow(`SELECT id, park_id, name FROM lands WHERE id = ?`, id).Scan(&l.ID, &l.ParkID, &l.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		metrics.DBOperationErrorsTotal.WithLabelValues(metrics.DBOpGetEntity).Inc()
		return nil, fmt.Errorf("failed to get land: %w", err)
	}
	return &l, nil
}

// GetRide retrieves a ride by ID. Returns nil if absent.
func (db *DB) GetRide(id int64) (*Ride, error) {
	timer := prometheus.NewTimer(metrics.DBOperationDuration.WithLabelValues(metrics.DBOpGetEntity))
	defer timer.ObserveDuration()

	var r Ride
	err := db.conn.QueryRow(`SELECT id, park_id, land_id, name FROM rides WHERE id = ?`, id).Scan(
		&r.ID, &r.ParkID, &r.LandID, &r.Name,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		metrics.DBOperationErrorsTotal.WithLabelValues(metrics.DBOpGetEntity).Inc()
		return nil, fmt.Errorf("failed to get ride: %w", err)
	}
	return &r, nil
}
