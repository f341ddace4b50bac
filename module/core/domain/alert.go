package domain

import (
	"fmt"
	"time"
)

type DistanceUnit string

const (
	Meters     DistanceUnit = "meters"
	Kilometers DistanceUnit = "kilometers"
)

// EarthRadius returns the mean earth radius expressed in the unit.
func (u DistanceUnit) EarthRadius() (float64, error) {
	switch u {
	case Meters:
		return 6371000, nil
	case Kilometers:
		return 6371, nil
	default:
		return 0, fmt.Errorf("unknown distance unit %q", string(u))
	}
}

type AlertMode string

const (
	// PerLandmark emits one alert for every newly reached landmark.
	PerLandmark AlertMode = "per_landmark"
	// Batched emits a single alert listing every newly reached landmark.
	Batched AlertMode = "batched"
)

func (m AlertMode) Valid() bool {
	return m == PerLandmark || m == Batched
}

type AlertLandmark struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Distance float64 `json:"distance"`
}

type ProximityAlert struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id"`
	Mode      AlertMode       `json:"mode"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Unit      DistanceUnit    `json:"unit"`
	Landmarks []AlertLandmark `json:"landmarks"`
	Position  Position        `json:"position"`
	Timestamp time.Time       `json:"timestamp"`
}
