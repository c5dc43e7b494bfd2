package collector

import (
	"errors"
	"testing"

	"parkwait-collector/internal/config"
)

func TestRunResultSummaries(t *testing.T) {
	run := &RunResult{Outcomes: []ParkOutcome{
		{Park: config.Park{ID: 64, Name: "Islands of Adventure"}, Count: 40},
		{Park: config.Park{ID: 65, Name: "Universal Studios Florida"}, Err: errors.New("timeout")},
		{Park: config.Park{ID: 334, Name: "Epic Universe"}, Count: 0},
	}}

	if run.TotalReadings() != 40 {
		t.Errorf("Expected 40 readings, got %d", run.TotalReadings())
	}
	if !run.Failed() {
		t.Error("Expected failed run")
	}
	if got := run.ByName()["Epic Universe"]; got != 0 {
		t.Errorf("Expected 0 for a park with no rides, got %d", got)
	}
	if got := run.ByName()["Universal Studios Florida"]; got != -1 {
		t.Errorf("Expected -1 for failed park, got %d", got)
	}
}

func TestRunResultAllSucceeded(t *testing.T) {
	run := &RunResult{Outcomes: []ParkOutcome{
		{Park: config.Park{ID: 64, Name: "Islands of Adventure"}, Count: 3},
	}}

	if run.Failed() {
		t.Error("Expected successful run")
	}
	if len(run.FailedParks()) != 0 {
		t.Errorf("Expected no failed parks, got %v", run.FailedParks())
	}
}
