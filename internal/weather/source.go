package weather

import (
	"context"
	"time"
)

// Snapshot is the current weather at one place.
type Snapshot struct {
	Condition     Condition
	Latitude      float64
	Longitude     float64
	IsDay         bool
	Temperature   float64 // °C
	WindSpeed     float64 // km/h
	WindDirection string
	ObservedAt    time.Time
}

// Source looks up the current weather at a coordinate.
type Source interface {
	Current(ctx context.Context, lat, lng float64) (Snapshot, error)
}

// Static is a Source that always reports the same condition and daylight.
type Static struct {
	Condition Condition
	IsDay     bool
}

// Current implements Source.
func (s Static) Current(_ context.Context, lat, lng float64) (Snapshot, error) {
	cond := s.Condition
	if cond == "" {
		cond = Clear
	}
	return Snapshot{
		Condition:     cond,
		Latitude:      lat,
		Longitude:     lng,
		IsDay:         s.IsDay,
		WindDirection: "N",
	}, nil
}
