package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestLandmarkLoad_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	rows := sqlmock.NewRows([]string{"id", "name", "description", "location", "latitude", "longitude"}).
		AddRow("1", "Liberty Bell", "Bell", "Philadelphia", 39.9496, -75.1503).
		AddRow("2", "Unplaced", nil, nil, nil, -75.0).
		AddRow("3", "Tubman Home", nil, "Auburn, NY", 42.9106, -76.5663)

	mock.ExpectQuery(`SELECT id, name, description, location, latitude, longitude FROM landmarks ORDER BY ordinal`).
		WillReturnRows(rows)

	repo := NewLandmarkRepo(db)
	res, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Landmarks) != 2 {
		t.Fatalf("expected 2 landmarks, got %d", len(res.Landmarks))
	}
	if res.Landmarks[1].Location != "Auburn, NY" {
		t.Errorf("expected Auburn, NY, got %s", res.Landmarks[1].Location)
	}
	if len(res.Rejected) != 1 || res.Rejected[0].ID != "2" {
		t.Fatalf("expected record 2 to be rejected, got %v", res.Rejected)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestLandmarkLoad_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`SELECT id, name, description, location, latitude, longitude FROM landmarks`).
		WillReturnError(sqlmock.ErrCancelled)

	repo := NewLandmarkRepo(db)
	if _, err := repo.Load(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestLandmarkLoad_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`SELECT id, name, description, location, latitude, longitude FROM landmarks`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "location", "latitude", "longitude"}))

	repo := NewLandmarkRepo(db)
	res, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Landmarks) != 0 {
		t.Fatalf("expected no landmarks, got %d", len(res.Landmarks))
	}
}
