package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
)

var _ Source = (*FileSource)(nil)

// FileSource reads landmarks from a JSON array or a GeoJSON FeatureCollection.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Load(_ context.Context) (*Result, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	res, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", s.path, err)
	}
	return res, nil
}

// Parse detects the format from the first non-blank byte.
func Parse(data []byte) (*Result, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrUnknownFormat
	}
	switch trimmed[0] {
	case '[':
		return parseJSON(trimmed)
	case '{':
		return parseGeoJSON(trimmed)
	default:
		return nil, ErrUnknownFormat
	}
}

type jsonRecord struct {
	ID          recordID `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

// recordID accepts both string and numeric ids.
type recordID string

func (id *recordID) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = recordID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: must be a string or a number")
	}
	*id = recordID(n.String())
	return nil
}

func parseJSON(data []byte) (*Result, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, err
	}

	records := make([]Record, len(raws))
	var undecodable []RecordError
	for i, raw := range raws {
		var jr jsonRecord
		if err := json.Unmarshal(raw, &jr); err != nil {
			undecodable = append(undecodable, RecordError{Index: i, Err: err})
			records[i] = Record{}
			continue
		}
		// records without an id are keyed by their position
		if jr.ID == "" {
			jr.ID = recordID(indexID(i))
		}
		records[i] = Record{
			ID:          string(jr.ID),
			Name:        jr.Name,
			Description: jr.Description,
			Location:    jr.Location,
			Latitude:    jr.Latitude,
			Longitude:   jr.Longitude,
		}
	}

	return mergeRejected(Build(records), undecodable), nil
}

// mergeRejected replaces the generic validation failure of undecodable
// records with their decode error.
func mergeRejected(res *Result, undecodable []RecordError) *Result {
	if len(undecodable) == 0 {
		return res
	}
	byIndex := make(map[int]RecordError, len(undecodable))
	for _, re := range undecodable {
		byIndex[re.Index] = re
	}
	for i, re := range res.Rejected {
		if replacement, ok := byIndex[re.Index]; ok {
			res.Rejected[i] = replacement
		}
	}
	return res
}
