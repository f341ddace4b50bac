package main

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nandanugg/landmark-radar/pkg/position"
)

func TestEncodeFix(t *testing.T) {
	payload, err := encodeFix(position.Fix{Latitude: 40.0, Longitude: -75.0, Accuracy: 5, Time: time.Unix(1715003456, 0)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"latitude":40,"longitude":-75,"accuracy":5,"timestamp":1715003456}`, string(payload))
}

func TestEncodeFix_OmitsZeroAccuracy(t *testing.T) {
	payload, err := encodeFix(position.Fix{Latitude: 1.5, Longitude: 2.5, Time: time.Unix(10, 0)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"latitude":1.5,"longitude":2.5,"timestamp":10}`, string(payload))
}

func TestEncodeFix_NonFiniteRejected(t *testing.T) {
	for _, fix := range []position.Fix{
		{Latitude: math.NaN(), Longitude: -75.0},
		{Latitude: 40.0, Longitude: math.Inf(1)},
	} {
		payload, err := encodeFix(fix)
		assert.Error(t, err)
		assert.Nil(t, payload)
	}
}
