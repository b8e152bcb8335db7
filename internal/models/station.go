package models

import "time"

// DefaultStationName is shown for stations the feed publishes without a name.
const DefaultStationName = "Station inconnue"

// Location is a point in degrees, latitude first.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// StationDetails holds the optional feed fields carried through untouched.
type StationDetails struct {
	Code            string `json:"code,omitempty"`
	Commune         string `json:"commune,omitempty"`
	Capacity        int    `json:"capacity"`
	DocksAvailable  int    `json:"docks_available"`
	MechanicalBikes int    `json:"mechanical_bikes"`
	EBikes          int    `json:"ebikes"`
	IsRenting       bool   `json:"is_renting"`
	IsReturning     bool   `json:"is_returning"`
	DueDate         string `json:"due_date,omitempty"`
}

// RawStation is a station as decoded from the feed, before validation.
// Coordinates hold the decoded JSON values in feed order: longitude, latitude.
type RawStation struct {
	StationDetails
	Name              *string
	Coordinates       []any
	AvailabilityCount *int
}

// StationRecord is a validated station.
type StationRecord struct {
	StationDetails
	Name              string   `json:"name"`
	Coordinates       Location `json:"coordinates"`
	AvailabilityCount int      `json:"availability_count"`
}

type RankedStation struct {
	StationRecord
	DistanceMeters float64 `json:"distance_meters"`
}

// Snapshot is a station as it was observed by one poll of the feed.
type Snapshot struct {
	StationRecord
	FetchedAt time.Time `json:"fetched_at"`
}
