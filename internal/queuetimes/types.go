package queuetimes

import (
	json "github.com/goccy/go-json"
)

// ParkResponse is the body of GET /parks/{id}/queue_times.json.
// Either array may be absent.
type ParkResponse struct {
	Lands []Land `json:"lands"`
	Rides []Ride `json:"rides"`
}

// Land is a themed area and the rides inside it
type Land struct {
	ID    *int64  `json:"id"`
	Name  *string `json:"name"`
	Rides []Ride  `json:"rides"`
}

// Ride is a single queue as reported upstream
type Ride struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	IsOpen      *bool   `json:"is_open"`
	WaitTime    *int    `json:"wait_time"`
	LastUpdated *string `json:"last_updated"`
}

// UnmarshalJSON decodes a land, leaving any field whose value has an
// unexpected type at its zero value. An entry that is not an object
// decodes as an empty land.
func (l *Land) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID    json.RawMessage `json:"id"`
		Name  json.RawMessage `json:"name"`
		Rides json.RawMessage `json:"rides"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		*l = Land{}
		return nil
	}

	*l = Land{
		ID:   decodeOptional[int64](raw.ID),
		Name: decodeOptional[string](raw.Name),
	}
	if rides := decodeOptional[[]Ride](raw.Rides); rides != nil {
		l.Rides = *rides
	}
	return nil
}

// UnmarshalJSON decodes a ride, leaving any field whose value has an
// unexpected type at its zero value. A ride whose id cannot be read keeps
// ID 0 and is skipped by the collector, as does an entry that is not an object.
func (r *Ride) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          json.RawMessage `json:"id"`
		Name        json.RawMessage `json:"name"`
		IsOpen      json.RawMessage `json:"is_open"`
		WaitTime    json.RawMessage `json:"wait_time"`
		LastUpdated json.RawMessage `json:"last_updated"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		*r = Ride{}
		return nil
	}

	*r = Ride{
		IsOpen:      decodeOptional[bool](raw.IsOpen),
		WaitTime:    decodeOptional[int](raw.WaitTime),
		LastUpdated: decodeOptional[string](raw.LastUpdated),
	}
	if id := decodeOptional[int64](raw.ID); id != nil {
		r.ID = *id
	}
	if name := decodeOptional[string](raw.Name); name != nil {
		r.Name = *name
	}
	return nil
}

// decodeOptional returns nil for absent, null or mistyped values
func decodeOptional[T any](raw json.RawMessage) *T {
	if len(raw) == 0 {
		return nil
	}
	var v *T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

// RideRecord is a flattened ride with its parent land (if any)
type RideRecord struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	IsOpen      bool    `json:"is_open"`
	WaitTime    *int    `json:"wait_time"`
	LastUpdated *string `json:"last_updated"`
	LandID      *int64  `json:"land_id"`
	LandName    *string `json:"land_name"`
	ParkID      int64   `json:"park_id"`
}

// ParseRides flattens a park response into ride records: rides nested in
// lands first (land then ride order), followed by the standalone rides.
// A nil response or missing arrays contribute nothing.
func ParseRides(resp *ParkResponse, parkID int64) []RideRecord {
	rides := []RideRecord{}
	if resp == nil {
		return rides
	}

	for _, land := range resp.Lands {
		for _, ride := range land.Rides {
			rides = append(rides, newRideRecord(ride, land.ID, land.Name, parkID))
		}
	}

	// Top-level rides belong to no land, usually single rider queues
	for _, ride := range resp.Rides {
		rides = append(rides, newRideRecord(ride, nil, nil, parkID))
	}

	return rides
}

func newRideRecord(ride Ride, landID *int64, landName *string, parkID int64) RideRecord {
	return RideRecord{
		ID:          ride.ID,
		Name:        ride.Name,
		IsOpen:      ride.IsOpen != nil && *ride.IsOpen,
		WaitTime:    ride.WaitTime,
		LastUpdated: ride.LastUpdated,
		LandID:      landID,
		LandName:    landName,
		ParkID:      parkID,
	}
}
