package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nandanugg/landmark-radar/module/core/domain"
)

func TestFormatAlert(t *testing.T) {
	alert := &domain.ProximityAlert{
		Title:     "Nearby Landmark",
		Message:   "You're near Liberty Bell",
		Unit:      domain.Meters,
		Landmarks: []domain.AlertLandmark{{ID: "1", Name: "Liberty Bell", Distance: 12.34}},
		Timestamp: time.Date(2024, 5, 6, 13, 50, 56, 0, time.UTC),
	}

	want := "[13:50:56] Nearby Landmark\nYou're near Liberty Bell\n  - Liberty Bell (1): 12.3 meters"
	assert.Equal(t, want, formatAlert(alert))
}
