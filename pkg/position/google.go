package position

import (
	"context"
	"fmt"
	"time"

	"googlemaps.github.io/maps"
)

type geolocator interface {
	Geolocate(ctx context.Context, r *maps.GeolocationRequest) (*maps.GeolocationResult, error)
}

// GoogleProvider asks the Google Geolocation API for the device position,
// based on its public IP.
type GoogleProvider struct {
	client  geolocator
	timeout time.Duration
	now     func() time.Time
}

func NewGoogleProvider(apiKey string) (*GoogleProvider, error) {
	c, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("google maps client: %w", err)
	}
	return &GoogleProvider{client: c, timeout: 10 * time.Second, now: time.Now}, nil
}

func (g *GoogleProvider) Next(ctx context.Context) (Fix, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Geolocate(ctx, &maps.GeolocationRequest{ConsiderIP: true})
	if err != nil {
		return Fix{}, fmt.Errorf("geolocate: %w", err)
	}
	return Fix{
		Latitude:  resp.Location.Lat,
		Longitude: resp.Location.Lng,
		Accuracy:  resp.Accuracy,
		Time:      g.now(),
	}, nil
}
