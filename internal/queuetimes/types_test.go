package queuetimes

import (
	"testing"

	json "github.com/goccy/go-json"
)

// Matches the Queue-Times response shape
const sampleResponse = `{
	"lands": [
		{
			"id": 100,
			"name": "The Wizarding World of Harry Potter",
			"rides": [
				{"id": 1001, "name": "Hagrid's Magical Creatures Motorbike Adventure", "is_open": true, "wait_time": 120, "last_updated": "2025-12-30T14:30:00.000Z"},
				{"id": 1002, "name": "Harry Potter and the Forbidden Journey", "is_open": true, "wait_time": 45, "last_updated": "2025-12-30T14:30:00.000Z"}
			]
		},
		{
			"id": 101,
			"name": "Jurassic Park",
			"rides": [
				{"id": 1003, "name": "VelociCoaster", "is_open": false, "wait_time": null, "last_updated": "2025-12-30T14:30:00.000Z"}
			]
		}
	],
	"rides": [
		{"id": 2001, "name": "Hagrid's - Single Rider", "is_open": true, "wait_time": 0, "last_updated": "2025-12-30T14:30:00.000Z"}
	]
}`

func decode(t *testing.T, body string) *ParkResponse {
	t.Helper()

	var resp ParkResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("Failed to decode fixture: %v", err)
	}
	return &resp
}

func findRide(t *testing.T, rides []RideRecord, id int64) RideRecord {
	t.Helper()

	for _, r := range rides {
		if r.ID == id {
			return r
		}
	}
	t.Fatalf("Ride %d not found", id)
	return RideRecord{}
}

func TestParseRidesFromLands(t *testing.T) {
	rides := ParseRides(decode(t, sampleResponse), 64)

	hagrids := findRide(t, rides, 1001)
	if hagrids.Name != "Hagrid's Magical Creatures Motorbike Adventure" {
		t.Errorf("Unexpected name %s", hagrids.Name)
	}
	if !hagrids.IsOpen {
		t.Error("Expected is_open true")
	}
	if hagrids.WaitTime == nil || *hagrids.WaitTime != 120 {
		t.Errorf("Expected wait time 120, got %v", hagrids.WaitTime)
	}
	if hagrids.LandID == nil || *hagrids.LandID != 100 {
		t.Errorf("Expected land id 100, got %v", hagrids.LandID)
	}
	if hagrids.LandName == nil || *hagrids.LandName != "The Wizarding World of Harry Potter" {
		t.Errorf("Expected land name, got %v", hagrids.LandName)
	}
	if hagrids.ParkID != 64 {
		t.Errorf("Expected park id 64, got %d", hagrids.ParkID)
	}
	if hagrids.LastUpdated == nil || *hagrids.LastUpdated != "2025-12-30T14:30:00.000Z" {
		t.Errorf("Expected last_updated, got %v", hagrids.LastUpdated)
	}
}

func TestParseStandaloneRides(t *testing.T) {
	rides := ParseRides(decode(t, sampleResponse), 64)

	singleRider := findRide(t, rides, 2001)
	if singleRider.Name != "Hagrid's - Single Rider" {
		t.Errorf("Unexpected name %s", singleRider.Name)
	}
	if singleRider.LandID != nil {
		t.Errorf("Expected nil land id, got %d", *singleRider.LandID)
	}
	if singleRider.LandName != nil {
		t.Errorf("Expected nil land name, got %s", *singleRider.LandName)
	}
	if singleRider.WaitTime == nil || *singleRider.WaitTime != 0 {
		t.Errorf("Expected wait time 0 (not nil), got %v", singleRider.WaitTime)
	}
	if singleRider.ParkID != 64 {
		t.Errorf("Expected park id 64, got %d", singleRider.ParkID)
	}
}

func TestParseClosedRides(t *testing.T) {
	rides := ParseRides(decode(t, sampleResponse), 64)

	velocicoaster := findRide(t, rides, 1003)
	if velocicoaster.IsOpen {
		t.Error("Expected is_open false")
	}
	if velocicoaster.WaitTime != nil {
		t.Errorf("Expected nil wait time, got %d", *velocicoaster.WaitTime)
	}
}

func TestParseRidesCountAndOrder(t *testing.T) {
	resp := decode(t, sampleResponse)
	rides := ParseRides(resp, 64)

	want := 0
	for _, land := range resp.Lands {
		want += len(land.Rides)
	}
	want += len(resp.Rides)

	if len(rides) != want || want != 4 {
		t.Fatalf("Expected 4 rides, got %d", len(rides))
	}

	wantOrder := []int64{1001, 1002, 1003, 2001}
	for i, id := range wantOrder {
		if rides[i].ID != id {
			t.Errorf("Position %d: expected ride %d, got %d", i, id, rides[i].ID)
		}
	}
}

func TestParseRidesEmptyInputs(t *testing.T) {
	tests := []struct {
		name string
		resp *ParkResponse
	}{
		{"nil response", nil},
		{"empty object", decode(t, `{}`)},
		{"empty lands", decode(t, `{"lands": []}`)},
		{"land without rides", decode(t, `{"lands": [{"id": 1, "name": "Empty Land"}]}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rides := ParseRides(tt.resp, 64)
			if rides == nil {
				t.Error("Expected empty slice, got nil")
			}
			if len(rides) != 0 {
				t.Errorf("Expected no rides, got %d", len(rides))
			}
		})
	}
}

func TestParseRidesMissingLands(t *testing.T) {
	rides := ParseRides(decode(t, `{"rides": [{"id": 1, "name": "Test Ride", "is_open": true, "wait_time": 10}]}`), 64)

	if len(rides) != 1 {
		t.Fatalf("Expected 1 ride, got %d", len(rides))
	}
	if rides[0].Name != "Test Ride" {
		t.Errorf("Expected 'Test Ride', got %s", rides[0].Name)
	}
	if rides[0].LandID != nil {
		t.Errorf("Expected nil land id, got %d", *rides[0].LandID)
	}
	if rides[0].LastUpdated != nil {
		t.Errorf("Expected nil last_updated, got %s", *rides[0].LastUpdated)
	}
}

func TestParseRidesDefaults(t *testing.T) {
	rides := ParseRides(decode(t, `{"lands": [{"name": "No Id", "rides": [{"id": 7, "name": "Bare"}]}]}`), 64)

	if len(rides) != 1 {
		t.Fatalf("Expected 1 ride, got %d", len(rides))
	}
	if rides[0].IsOpen {
		t.Error("Expected is_open to default to false")
	}
	if rides[0].WaitTime != nil {
		t.Errorf("Expected nil wait time, got %d", *rides[0].WaitTime)
	}
	if rides[0].LandID != nil {
		t.Errorf("Expected nil land id for land without id, got %d", *rides[0].LandID)
	}
}

func TestParseRidesMistypedOptionalFields(t *testing.T) {
	body := `{
		"lands": [
			{"id": "north", "name": 5, "rides": [
				{"id": 11, "name": "Mistyped Land Ride", "is_open": true, "wait_time": 20}
			]}
		],
		"rides": [
			{"id": 1, "name": "Unknown Wait", "is_open": true, "wait_time": "n/a"},
			{"id": 2, "name": "Fractional Wait", "is_open": true, "wait_time": 12.5},
			{"id": 3, "name": "String Flag", "is_open": "true", "wait_time": 15, "last_updated": 0},
			{"id": "x", "name": "Bad Id"},
			42,
			{"id": 4, "name": "Healthy", "is_open": true, "wait_time": 30, "last_updated": "2025-12-30T14:30:00.000Z"}
		]
	}`

	rides := ParseRides(decode(t, body), 64)
	if len(rides) != 7 {
		t.Fatalf("Expected 7 rides, got %d", len(rides))
	}

	inLand := findRide(t, rides, 11)
	if inLand.LandID != nil || inLand.LandName != nil {
		t.Errorf("Expected mistyped land id and name to be dropped, got %v, %v", inLand.LandID, inLand.LandName)
	}
	if inLand.WaitTime == nil || *inLand.WaitTime != 20 {
		t.Errorf("Expected wait time 20, got %v", inLand.WaitTime)
	}

	unknown := findRide(t, rides, 1)
	if unknown.WaitTime != nil {
		t.Errorf("Expected nil wait time for \"n/a\", got %d", *unknown.WaitTime)
	}
	if !unknown.IsOpen {
		t.Error("Expected other fields of the ride to survive")
	}

	if fractional := findRide(t, rides, 2); fractional.WaitTime != nil {
		t.Errorf("Expected nil wait time for 12.5, got %d", *fractional.WaitTime)
	}

	flag := findRide(t, rides, 3)
	if flag.IsOpen {
		t.Error("Expected string is_open to default to false")
	}
	if flag.LastUpdated != nil {
		t.Errorf("Expected nil last_updated for numeric value, got %s", *flag.LastUpdated)
	}
	if flag.WaitTime == nil || *flag.WaitTime != 15 {
		t.Errorf("Expected wait time 15, got %v", flag.WaitTime)
	}

	// Unreadable ids and non-object entries decode with id 0
	zeroIDs := 0
	for _, r := range rides {
		if r.ID == 0 {
			zeroIDs++
		}
	}
	if zeroIDs != 2 {
		t.Errorf("Expected 2 rides without a usable id, got %d", zeroIDs)
	}

	healthy := findRide(t, rides, 4)
	if healthy.WaitTime == nil || *healthy.WaitTime != 30 || healthy.LastUpdated == nil {
		t.Errorf("Expected healthy ride intact, got %+v", healthy)
	}
}
