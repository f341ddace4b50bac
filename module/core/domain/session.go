package domain

import "time"

// Session describes one monitoring run, from construction of the monitor to
// its Close.
type Session struct {
	ID        string       `json:"id"`
	StartedAt time.Time    `json:"started_at"`
	Radius    float64      `json:"radius"`
	Unit      DistanceUnit `json:"unit"`
	Landmarks int          `json:"landmarks"`
	Notified  []string     `json:"notified"`
	Closed    bool         `json:"closed"`
}
