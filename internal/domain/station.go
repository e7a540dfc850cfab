package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Station identifies an NWS observation station.
type Station struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	State string `json:"state,omitempty"`
}

// Observation holds the latest raw observation payload for a station, exactly
// as returned by the NWS API.
type Observation struct {
	StationID   string
	Payload     json.RawMessage
	RetrievedAt time.Time
}

// NewObservation stamps a raw payload with the current clock time.
func NewObservation(stationID string, payload json.RawMessage) Observation {
	return Observation{
		StationID:   stationID,
		Payload:     payload,
		RetrievedAt: clock.Now(),
	}
}

// StationResolver maps a coordinate to its nearest observation station.
// A zero-ID station with a nil error means the API knew no station for the
// point; callers skip the coordinate.
type StationResolver interface {
	NearestStation(ctx context.Context, lat, lon float64) (Station, error)
}

// ObservationFetcher retrieves the latest observation for a station.
type ObservationFetcher interface {
	LatestObservation(ctx context.Context, stationID string) (Observation, error)
}
