// Package position produces device position fixes for the publisher binary.
package position

import (
	"context"
	"errors"
	"time"
)

var ErrNoFix = errors.New("no valid position fix")

// Fix is a single position reading. Accuracy is an estimated horizontal error
// in meters, zero when unknown.
type Fix struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
	Time      time.Time
}

// Provider returns the device's current position.
type Provider interface {
	Next(ctx context.Context) (Fix, error)
}
