package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/nandanugg/landmark-radar/module/core/domain"
	"github.com/nandanugg/landmark-radar/module/core/internal/repository/database"
)

var _ database.PositionRepository = (*PositionRepo)(nil)

// PositionRepo stores the samples of one monitoring session.
type PositionRepo struct {
	db        *sql.DB
	sessionID string
}

func NewPositionRepo(db *sql.DB, sessionID string) *PositionRepo {
	return &PositionRepo{db: db, sessionID: sessionID}
}

func (r *PositionRepo) Insert(ctx context.Context, pos *domain.Position) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO positions (session_id, latitude, longitude, accuracy, recorded_at) VALUES ($1, $2, $3, $4, $5)`,
		r.sessionID, pos.Lat, pos.Lon, pos.Accuracy, pos.Timestamp,
	)
	return err
}

func (r *PositionRepo) GetLatest(ctx context.Context) (*domain.Position, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT latitude, longitude, accuracy, recorded_at FROM positions WHERE session_id = $1 ORDER BY recorded_at DESC LIMIT 1`,
		r.sessionID,
	)

	var pos domain.Position
	if err := row.Scan(&pos.Lat, &pos.Lon, &pos.Accuracy, &pos.Timestamp); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrNotFound
		}
		return nil, err
	}
	return &pos, nil
}

func (r *PositionRepo) GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.Position, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT latitude, longitude, accuracy, recorded_at FROM positions WHERE session_id = $1 AND recorded_at >= $2 AND recorded_at <= $3 ORDER BY recorded_at ASC`,
		r.sessionID, query.Start, query.End,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.Position
	for rows.Next() {
		var pos domain.Position
		if err := rows.Scan(&pos.Lat, &pos.Lon, &pos.Accuracy, &pos.Timestamp); err != nil {
			return nil, err
		}
		results = append(results, pos)
	}
	return results, rows.Err()
}
