package domain

import (
	"time"

	"github.com/paulmach/orb"
)

type Position struct {
	Lat       float64   `json:"latitude"`
	Lon       float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (p Position) Point() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

type HistoryQuery struct {
	Start time.Time
	End   time.Time
}

// Region is the visible map window around a center point.
type Region struct {
	Lat      float64 `json:"latitude"`
	Lon      float64 `json:"longitude"`
	LatDelta float64 `json:"latitudeDelta"`
	LonDelta float64 `json:"longitudeDelta"`
}

// Bound converts the region into an orb bound.
func (r Region) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{r.Lon - r.LonDelta/2, r.Lat - r.LatDelta/2},
		Max: orb.Point{r.Lon + r.LonDelta/2, r.Lat + r.LatDelta/2},
	}
}
