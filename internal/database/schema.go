package database

// Schema contains all SQL statements for creating tables and indexes.
// Ids of parks, lands and rides are the Queue-Times ids, not generated locally.
const Schema = `
-- Parks table: tracked venues
CREATE TABLE IF NOT EXISTS parks (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL
);

-- Lands table: themed areas within a park
CREATE TABLE IF NOT EXISTS lands (
    id INTEGER PRIMARY KEY,
    park_id INTEGER NOT NULL,
    name TEXT NOT NULL,
    FOREIGN KEY (park_id) REFERENCES parks(id)
);

-- Rides table: attractions, optionally grouped in a land
CREATE TABLE IF NOT EXISTS rides (
    id INTEGER PRIMARY KEY,
    land_id INTEGER,
    park_id INTEGER NOT NULL,
    name TEXT NOT NULL,
    FOREIGN KEY (land_id) REFERENCES lands(id),
    FOREIGN KEY (park_id) REFERENCES parks(id)
);

-- Wait times table: append-only readings, one per ride per collection run
CREATE TABLE IF NOT EXISTS wait_times (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    ride_id INTEGER NOT NULL,
    wait_time INTEGER,
    is_open BOOLEAN NOT NULL,
    collected_at TIMESTAMP NOT NULL,  -- local time, TimestampLayout
    api_last_updated TIMESTAMP,       -- as reported upstream
    day_of_week INTEGER NOT NULL,     -- 0 = Monday
    hour INTEGER NOT NULL,
    is_weekend BOOLEAN NOT NULL,
    FOREIGN KEY (ride_id) REFERENCES rides(id)
);

CREATE INDEX IF NOT EXISTS idx_wait_times_collected_at ON wait_times(collected_at);
CREATE INDEX IF NOT EXISTS idx_wait_times_ride_id ON wait_times(ride_id);
`
