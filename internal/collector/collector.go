package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"parkwait-collector/internal/config"
	"parkwait-collector/internal/database"
	"parkwait-collector/internal/metrics"
	"parkwait-collector/internal/queuetimes"
)

// Store is the persistence used by a collection run
type Store interface {
	Init() error
	UpsertPark(id int64, name string) (database.InsertResult, error)
	UpsertLand(id, parkID int64, name string) (database.InsertResult, error)
	UpsertRide(id, parkID int64, name string, landID *int64) (database.InsertResult, error)
	RecordReading(r database.Reading) (int64, error)
}

// Fetcher retrieves the current queue times of one park
type Fetcher interface {
	FetchPark(ctx context.Context, parkID int64) (*queuetimes.ParkResponse, error)
}

// FetchError reports a park whose data could not be fetched.
// It fails that park only; the run continues.
type FetchError struct {
	ParkID int64
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch park %d: %v", e.ParkID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Collector runs collection passes over the configured parks
type Collector struct {
	store   Store
	fetcher Fetcher
	parks   []config.Park
	logger  *slog.Logger
	now     func() time.Time
	dryRun  bool
}

// Option configures a Collector
type Option func(*Collector)

// WithClock sets the source of the run timestamp
func WithClock(now func() time.Time) Option {
	return func(c *Collector) { c.now = now }
}

// WithDryRun fetches and parses without writing to the store
func WithDryRun(dryRun bool) Option {
	return func(c *Collector) { c.dryRun = dryRun }
}

// New creates a collector for the given parks, processed in order
func New(store Store, fetcher Fetcher, parks []config.Park, logger *slog.Logger, opts ...Option) *Collector {
	c := &Collector{
		store:   store,
		fetcher: fetcher,
		parks:   parks,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CollectPark fetches one park and writes park, lands, rides and one reading
// per ride, in that order. It returns the number of readings written.
// A fetch failure is returned as *FetchError; any other error is a store failure.
func (c *Collector) CollectPark(ctx context.Context, park config.Park, collectedAt time.Time) (int, error) {
	return c.collectPark(ctx, c.logger, park, collectedAt)
}

func (c *Collector) collectPark(ctx context.Context, logger *slog.Logger, park config.Park, collectedAt time.Time) (int, error) {
	logger = logger.With("park", park.Name, "park_id", park.ID)
	logger.Info("Collecting park data")

	data, err := c.fetcher.FetchPark(ctx, park.ID)
	if err != nil {
		return 0, &FetchError{ParkID: park.ID, Err: err}
	}

	rides := validRides(logger, queuetimes.ParseRides(data, park.ID))
	logger.Info("Found rides", "count", len(rides))

	if c.dryRun {
		logger.Info("Dry run: skipping writes", "readings", len(rides))
		return len(rides), nil
	}

	result, err := c.store.UpsertPark(park.ID, park.Name)
	if err != nil {
		return 0, err
	}
	c.recordUpsert(logger, metrics.EntityPark, park.ID, result)

	written := 0
	for _, ride := range rides {
		if ride.LandID != nil {
			result, err := c.store.UpsertLand(*ride.LandID, park.ID, deref(ride.LandName))
			if err != nil {
				return written, err
			}
			c.recordUpsert(logger, metrics.EntityLand, *ride.LandID, result)
		}

		result, err := c.store.UpsertRide(ride.ID, park.ID, ride.Name, ride.LandID)
		if err != nil {
			return written, err
		}
		c.recordUpsert(logger, metrics.EntityRide, ride.ID, result)

		if _, err := c.store.RecordReading(database.Reading{
			RideID:         ride.ID,
			WaitTime:       ride.WaitTime,
			IsOpen:         ride.IsOpen,
			CollectedAt:    collectedAt,
			APILastUpdated: ride.LastUpdated,
		}); err != nil {
			return written, err
		}
		written++
	}

	metrics.ReadingsWrittenTotal.WithLabelValues(park.Name).Add(float64(written))
	return written, nil
}

func (c *Collector) recordUpsert(logger *slog.Logger, entity string, id int64, result database.InsertResult) {
	metrics.EntitiesUpsertedTotal.WithLabelValues(entity, result.String()).Inc()
	if result == database.Stale {
		// First-seen values win; upstream renames and land moves are not applied
		logger.Warn("Stored record differs from upstream, keeping first-seen values", "entity", entity, "id", id)
	}
}

// CollectAll runs one collection pass. Every reading in the run shares a
// single collected_at captured at the start. Fetch failures are recorded per
// park and the run continues; store failures abort the run and are returned
// along with the outcomes gathered so far.
func (c *Collector) CollectAll(ctx context.Context) (*RunResult, error) {
	start := time.Now()
	run := &RunResult{
		RunID:       uuid.NewString(),
		CollectedAt: c.now(),
	}
	logger := c.logger.With("run_id", run.RunID)

	logger.Info("Starting data collection for all parks",
		"parks", len(c.parks),
		"collected_at", run.CollectedAt.Format(time.RFC3339),
		"dry_run", c.dryRun)

	if !c.dryRun {
		if err := c.store.Init(); err != nil {
			metrics.CollectionRunsTotal.WithLabelValues(metrics.ResultAborted).Inc()
			return run, fmt.Errorf("failed to initialize store: %w", err)
		}
	}

	for _, park := range c.parks {
		if err := ctx.Err(); err != nil {
			metrics.CollectionRunsTotal.WithLabelValues(metrics.ResultAborted).Inc()
			return run, err
		}

		count, err := c.collectPark(ctx, logger, park, run.CollectedAt)

		var fetchErr *FetchError
		switch {
		case errors.As(err, &fetchErr):
			run.Outcomes = append(run.Outcomes, ParkOutcome{Park: park, Err: err})
			metrics.ParkCollectionsTotal.WithLabelValues(park.Name, metrics.ResultFailure).Inc()
			metrics.LastRunReadings.WithLabelValues(park.Name).Set(-1)
			logger.Error("Failed to collect data", "park", park.Name, "error", err)
		case err != nil:
			metrics.CollectionRunsTotal.WithLabelValues(metrics.ResultAborted).Inc()
			logger.Error("Collection aborted",
				"park", park.Name,
				"readings_written", count,
				"integrity_violation", database.IsForeignKeyViolation(err),
				"error", err)
			return run, fmt.Errorf("collection aborted at park %s: %w", park.Name, err)
		default:
			run.Outcomes = append(run.Outcomes, ParkOutcome{Park: park, Count: count})
			metrics.ParkCollectionsTotal.WithLabelValues(park.Name, metrics.ResultSuccess).Inc()
			metrics.LastRunReadings.WithLabelValues(park.Name).Set(float64(count))
			logger.Info("Inserted records", "park", park.Name, "records", count)
		}
	}

	failed := run.FailedParks()
	logger.Info("Collection complete", "total_records", run.TotalReadings(), "duration_ms", time.Since(start).Milliseconds())
	if len(failed) > 0 {
		logger.Warn("Some parks failed to collect", "failed_parks", len(failed), "parks", failed)
	}

	runResult := metrics.ResultSuccess
	if run.Failed() {
		runResult = metrics.ResultFailure
	}
	metrics.CollectionRunsTotal.WithLabelValues(runResult).Inc()
	metrics.CollectionRunDuration.Observe(time.Since(start).Seconds())
	metrics.LastRunTimestamp.Set(float64(run.CollectedAt.Unix()))

	return run, nil
}

// validRides drops rides that carry no usable id
func validRides(logger *slog.Logger, rides []queuetimes.RideRecord) []queuetimes.RideRecord {
	valid := rides[:0]
	for _, ride := range rides {
		if ride.ID <= 0 {
			logger.Warn("Skipping ride without id", "name", ride.Name)
			continue
		}
		valid = append(valid, ride)
	}
	return valid
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
