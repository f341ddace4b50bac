package domain

import "github.com/paulmach/orb"

type Landmark struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Location    string  `json:"location,omitempty"`
	Lat         float64 `json:"latitude"`
	Lon         float64 `json:"longitude"`
}

// Point returns the landmark as an orb point (lon, lat order).
func (l Landmark) Point() orb.Point {
	return orb.Point{l.Lon, l.Lat}
}
