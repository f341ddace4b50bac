package core

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nandanugg/landmark-radar/module/core/domain"
	"github.com/nandanugg/landmark-radar/module/core/service"
)

const testDataset = `[
  {"id": 1, "name": "Liberty Bell", "description": "Symbol of freedom", "location": "Philadelphia, PA", "latitude": 40.0, "longitude": -75.0},
  {"id": 2, "name": "Broken", "description": "No coordinates"},
  {"id": 3, "name": "Far Away", "description": "Elsewhere", "latitude": 41.0, "longitude": -75.0}
]`

func buildTestModule(t *testing.T) *Module {
	t.Helper()
	path := filepath.Join(t.TempDir(), "landmarks.json")
	require.NoError(t, os.WriteFile(path, []byte(testDataset), 0o600))

	m, err := Build(context.Background(), Options{
		DatasetSource: DatasetFile,
		DatasetPath:   path,
		Proximity:     service.ProximityConfig{Radius: 200, Unit: domain.Meters},
		Tracking:      service.TrackingConfig{Mode: domain.PerLandmark, LatDelta: 0.05, LonDelta: 0.05},
		Logger:        zerolog.Nop(),
	})
	require.NoError(t, err)
	return m
}

func TestBuild_EndToEnd(t *testing.T) {
	m := buildTestModule(t)
	assert.Len(t, m.Monitor.Landmarks(), 2)

	alerts, err := m.TrackingSvc.ProcessPosition(context.Background(), &domain.Position{Lat: 40.0, Lon: -75.0, Timestamp: time.Unix(1715003456, 0)})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "You're near Liberty Bell", alerts[0].Message)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	m.RegisterRoutes(r.Group(""))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/session", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var session domain.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	assert.Equal(t, []string{"1"}, session.Notified)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/region", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBuild_MissingDataset(t *testing.T) {
	_, err := Build(context.Background(), Options{
		DatasetSource: DatasetFile,
		DatasetPath:   filepath.Join(t.TempDir(), "missing.json"),
		Proximity:     service.ProximityConfig{Radius: 200, Unit: domain.Meters},
		Logger:        zerolog.Nop(),
	})
	assert.Error(t, err)
}

func TestBuild_PostgresSourceWithoutDB(t *testing.T) {
	_, err := Build(context.Background(), Options{
		DatasetSource: DatasetPostgres,
		Proximity:     service.ProximityConfig{Radius: 200, Unit: domain.Meters},
		Logger:        zerolog.Nop(),
	})
	assert.Error(t, err)
}
