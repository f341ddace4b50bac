package service

import (
	"fmt"
	"strings"

	"github.com/nandanugg/landmark-radar/module/core/domain"
)

const (
	nearbyTitle = "Nearby Landmark"
	batchTitle  = "Landmarks Nearby"
)

// NearbyMessage is the text of a single-landmark alert.
func NearbyMessage(lm domain.Landmark) (title, body string) {
	return nearbyTitle, fmt.Sprintf("You're near %s", lm.Name)
}

// BatchMessage lists every landmark in one alert, one paragraph each.
func BatchMessage(landmarks []domain.Landmark) (title, body string) {
	entries := make([]string, 0, len(landmarks))
	for _, lm := range landmarks {
		heading := "• " + lm.Name
		if lm.Location != "" {
			heading += " (" + lm.Location + ")"
		}
		entry := heading
		if lm.Description != "" {
			entry += "\n" + lm.Description
		}
		entries = append(entries, entry)
	}
	return batchTitle, strings.Join(entries, "\n\n")
}
