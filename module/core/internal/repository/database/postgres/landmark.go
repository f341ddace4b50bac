package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nandanugg/landmark-radar/module/core/dataset"
)

var _ dataset.Source = (*LandmarkRepo)(nil)

// LandmarkRepo reads the landmark dataset from the landmarks table, ordered by
// its ordinal column.
type LandmarkRepo struct {
	db *sql.DB
}

func NewLandmarkRepo(db *sql.DB) *LandmarkRepo {
	return &LandmarkRepo{db: db}
}

func (r *LandmarkRepo) Load(ctx context.Context) (*dataset.Result, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, location, latitude, longitude FROM landmarks ORDER BY ordinal ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query landmarks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []dataset.Record
	for rows.Next() {
		var (
			id, name              string
			description, location sql.NullString
			lat, lon              sql.NullFloat64
		)
		if err := rows.Scan(&id, &name, &description, &location, &lat, &lon); err != nil {
			return nil, fmt.Errorf("scan landmark: %w", err)
		}
		rec := dataset.Record{
			ID:          id,
			Name:        name,
			Description: description.String,
			Location:    location.String,
		}
		if lat.Valid {
			rec.Latitude = &lat.Float64
		}
		if lon.Valid {
			rec.Longitude = &lon.Float64
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate landmarks: %w", err)
	}

	return dataset.Build(records), nil
}
