package dataset

import "errors"

var (
	ErrDuplicateID   = errors.New("duplicate id")
	ErrUnknownFormat = errors.New("unknown dataset format: expected a JSON array or a GeoJSON FeatureCollection")
	ErrNotPoint      = errors.New("geometry: must be a Point")
)
