package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"parkwait-collector/internal/config"
	"parkwait-collector/internal/database"
)

const islandsResponse = `{"lands": [{"id": 100, "name": "Jurassic Park", "rides": [
	{"id": 1001, "name": "VelociCoaster", "is_open": true, "wait_time": 60},
	{"id": 1002, "name": "Pteranodon Flyers", "is_open": false, "wait_time": null}
]}], "rides": [{"id": 2001, "name": "VelociCoaster - Single Rider", "is_open": true, "wait_time": 0}]}`

// setupTestAPI serves park 64 and fails every other park with a 500
func setupTestAPI(t *testing.T) string {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/parks/64/queue_times.json" {
			w.Write([]byte(islandsResponse))
			return
		}
		http.Error(w, "unavailable", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	return server.URL + "/parks"
}

func testConfig(t *testing.T, baseURL string, parks ...config.Park) *config.Config {
	t.Helper()

	return &config.Config{
		DatabasePath:   filepath.Join(t.TempDir(), "data", "wait_times.db"),
		BaseURL:        baseURL,
		Parks:          parks,
		RequestTimeout: 5 * time.Second,
		MaxRetries:     1,
		LogLevel:       "error",
		LogFormat:      "json",
	}
}

func countReadings(t *testing.T, path string) int {
	t.Helper()

	db, err := database.Open(path)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	n, err := db.CountReadings()
	if err != nil {
		t.Fatalf("Failed to count readings: %v", err)
	}
	return n
}

func TestRunCollectSucceeds(t *testing.T) {
	cfg := testConfig(t, setupTestAPI(t), config.Park{ID: 64, Name: "Islands of Adventure"})

	if err := runCollect(context.Background(), cfg); err != nil {
		t.Fatalf("Expected successful run, got %v", err)
	}
	if got := countReadings(t, cfg.DatabasePath); got != 3 {
		t.Errorf("Expected 3 readings, got %d", got)
	}
}

func TestRunCollectFailsWhenAnyParkFails(t *testing.T) {
	cfg := testConfig(t, setupTestAPI(t),
		config.Park{ID: 64, Name: "Islands of Adventure"},
		config.Park{ID: 65, Name: "Universal Studios Florida"},
	)

	err := runCollect(context.Background(), cfg)
	if !errors.Is(err, errParksFailed) {
		t.Fatalf("Expected errParksFailed, got %v", err)
	}

	// Data from the healthy park is still committed
	if got := countReadings(t, cfg.DatabasePath); got != 3 {
		t.Errorf("Expected 3 readings from the healthy park, got %d", got)
	}
}

func TestRunCollectDryRunLeavesNoDatabase(t *testing.T) {
	cfg := testConfig(t, setupTestAPI(t), config.Park{ID: 64, Name: "Islands of Adventure"})
	cfg.DryRun = true

	if err := runCollect(context.Background(), cfg); err != nil {
		t.Fatalf("Expected dry run to succeed, got %v", err)
	}
	if _, err := os.Stat(filepath.Dir(cfg.DatabasePath)); !os.IsNotExist(err) {
		t.Errorf("Expected dry run to create nothing on disk, got %v", err)
	}
}
