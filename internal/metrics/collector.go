package metrics

import (
	"log/slog"
)

// DB interface for row count queries
type DB interface {
	CountParks() (int, error)
	CountLands() (int, error)
	CountRides() (int, error)
	CountReadings() (int, error)
}

// CollectStoreGauges sets the store_rows_total gauge for every table.
// Failures are logged and leave the previous gauge value in place.
func CollectStoreGauges(db DB, logger *slog.Logger) {
	counts := []struct {
		table string
		count func() (int, error)
	}{
		{TableParks, db.CountParks},
		{TableLands, db.CountLands},
		{TableRides, db.CountRides},
		{TableWaitTimes, db.CountReadings},
	}

	for _, c := range counts {
		n, err := c.count()
		if err != nil {
			logger.Error("Failed to count rows", "table", c.table, "error", err)
			continue
		}
		StoreRows.WithLabelValues(c.table).Set(float64(n))
	}
}
