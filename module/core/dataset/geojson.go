package dataset

import (
	"fmt"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/nandanugg/landmark-radar/module/core/domain"
)

func parseGeoJSON(data []byte) (*Result, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, err
	}

	records := make([]Record, len(fc.Features))
	var badGeometry []RecordError
	for i, f := range fc.Features {
		rec := Record{
			ID:          featureID(f, i),
			Name:        stringProp(f.Properties, "name"),
			Description: stringProp(f.Properties, "description"),
			Location:    stringProp(f.Properties, "location"),
		}
		if pt, ok := f.Geometry.(orb.Point); ok {
			lat, lon := pt.Lat(), pt.Lon()
			rec.Latitude, rec.Longitude = &lat, &lon
		} else {
			badGeometry = append(badGeometry, RecordError{Index: i, ID: rec.ID, Err: ErrNotPoint})
		}
		records[i] = rec
	}

	return mergeRejected(Build(records), badGeometry), nil
}

func featureID(f *geojson.Feature, index int) string {
	id := f.ID
	if id == nil {
		id = f.Properties["id"]
	}
	switch v := id.(type) {
	case nil:
		return indexID(index)
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func stringProp(props geojson.Properties, key string) string {
	s, _ := props[key].(string)
	return s
}

// ToFeatureCollection renders landmarks as Point features for map markers.
func ToFeatureCollection(landmarks []domain.Landmark) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, lm := range landmarks {
		f := geojson.NewFeature(lm.Point())
		f.ID = lm.ID
		f.Properties["name"] = lm.Name
		f.Properties["description"] = lm.Description
		if lm.Location != "" {
			f.Properties["location"] = lm.Location
		}
		fc.Append(f)
	}
	return fc
}
