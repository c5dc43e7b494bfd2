package collector

import (
	"time"

	"parkwait-collector/internal/config"
)

// ParkOutcome is the result of collecting one park: Count readings on
// success, or Err when the park could not be fetched
type ParkOutcome struct {
	Park  config.Park
	Count int
	Err   error
}

// OK reports whether the park was collected
func (o ParkOutcome) OK() bool {
	return o.Err == nil
}

// RunResult is the outcome of one collection run, in park order
type RunResult struct {
	RunID       string
	CollectedAt time.Time
	Outcomes    []ParkOutcome
}

// TotalReadings sums the readings of all successful parks
func (r *RunResult) TotalReadings() int {
	total := 0
	for _, o := range r.Outcomes {
		if o.OK() {
			total += o.Count
		}
	}
	return total
}

// FailedParks returns the names of parks that could not be collected
func (r *RunResult) FailedParks() []string {
	var failed []string
	for _, o := range r.Outcomes {
		if !o.OK() {
			failed = append(failed, o.Park.Name)
		}
	}
	return failed
}

// Failed reports whether any park failed
func (r *RunResult) Failed() bool {
	return len(r.FailedParks()) > 0
}

// ByName maps park name to readings written, with -1 for failed parks
func (r *RunResult) ByName() map[string]int {
	out := make(map[string]int, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if o.OK() {
			out[o.Park.Name] = o.Count
		} else {
			out[o.Park.Name] = -1
		}
	}
	return out
}
