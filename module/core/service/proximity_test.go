package service

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nandanugg/landmark-radar/module/core/domain"
)

var libertyBell = domain.Landmark{ID: "1", Name: "Liberty Bell", Lat: 40.0, Lon: -75.0}

func newTestMonitor(t *testing.T, radius float64, unit domain.DistanceUnit, landmarks ...domain.Landmark) *ProximityMonitor {
	t.Helper()
	m, err := NewProximityMonitor(ProximityConfig{Radius: radius, Unit: unit}, landmarks, zerolog.Nop())
	require.NoError(t, err)
	return m
}

func TestHaversineDistance_SamePoint(t *testing.T) {
	d := HaversineDistance(40.0, -75.0, 40.0, -75.0, 6371000)
	assert.Equal(t, 0.0, d)
	assert.False(t, math.IsNaN(d))
}

func TestHaversineDistance_Symmetric(t *testing.T) {
	pairs := [][4]float64{
		{40.0, -75.0, 40.005, -75.0},
		{-6.2088, 106.8456, -6.2100, 106.8500},
		{51.5, -0.12, -33.86, 151.2},
	}
	for _, p := range pairs {
		ab := HaversineDistance(p[0], p[1], p[2], p[3], 6371000)
		ba := HaversineDistance(p[2], p[3], p[0], p[1], 6371000)
		assert.InDelta(t, ab, ba, 1e-9)
	}
}

func TestHaversineDistance_HundredthOfDegree(t *testing.T) {
	d := HaversineDistance(40.0, -75.0, 40.01, -75.0, 6371000)
	assert.InEpsilon(t, 1110.0, d, 0.05)
}

func TestHaversineDistance_Kilometers(t *testing.T) {
	m := HaversineDistance(40.0, -75.0, 41.0, -75.0, 6371000)
	km := HaversineDistance(40.0, -75.0, 41.0, -75.0, 6371)
	assert.InDelta(t, m/1000, km, 1e-6)
}

func TestHaversineDistance_Antipodal(t *testing.T) {
	d := HaversineDistance(0, 0, 0, 180, 6371)
	assert.False(t, math.IsNaN(d))
	assert.InDelta(t, math.Pi*6371, d, 1e-6)
}

func TestNewProximityMonitor_InvalidConfig(t *testing.T) {
	_, err := NewProximityMonitor(ProximityConfig{Radius: 0, Unit: domain.Meters}, nil, zerolog.Nop())
	assert.ErrorIs(t, err, ErrInvalidRadius)

	_, err = NewProximityMonitor(ProximityConfig{Radius: math.NaN(), Unit: domain.Meters}, nil, zerolog.Nop())
	assert.ErrorIs(t, err, ErrInvalidRadius)

	_, err = NewProximityMonitor(ProximityConfig{Radius: 200, Unit: "miles"}, nil, zerolog.Nop())
	assert.Error(t, err)
}

func TestEvaluate_AlertsOnce(t *testing.T) {
	m := newTestMonitor(t, 200, domain.Meters, libertyBell)
	pos := domain.Position{Lat: 40.0, Lon: -75.0}

	got := m.Evaluate(pos)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)

	assert.Empty(t, m.Evaluate(pos))
	assert.Empty(t, m.Evaluate(pos))
}

func TestEvaluate_OutsideRadius(t *testing.T) {
	m := newTestMonitor(t, 200, domain.Meters, libertyBell)

	assert.Empty(t, m.Evaluate(domain.Position{Lat: 40.005, Lon: -75.0}))
	assert.Empty(t, m.Snapshot().Notified)
}

func TestEvaluate_NoRealertAfterLeaving(t *testing.T) {
	m := newTestMonitor(t, 200, domain.Meters, libertyBell)

	require.Len(t, m.Evaluate(domain.Position{Lat: 40.0, Lon: -75.0}), 1)
	assert.Empty(t, m.Evaluate(domain.Position{Lat: 40.05, Lon: -75.0}))
	assert.Empty(t, m.Evaluate(domain.Position{Lat: 40.0001, Lon: -75.0}))
}

func TestEvaluate_EmptyDataset(t *testing.T) {
	m := newTestMonitor(t, 200, domain.Meters)

	for _, pos := range []domain.Position{
		{Lat: 0, Lon: 0},
		{Lat: 40.0, Lon: -75.0},
		{Lat: 95, Lon: 200},
	} {
		assert.Empty(t, m.Evaluate(pos))
	}
}

func TestEvaluate_DatasetOrder(t *testing.T) {
	far := domain.Landmark{ID: "a", Name: "Far", Lat: 40.001, Lon: -75.0}
	near := domain.Landmark{ID: "b", Name: "Near", Lat: 40.0, Lon: -75.0}
	outside := domain.Landmark{ID: "c", Name: "Outside", Lat: 41.0, Lon: -75.0}
	m := newTestMonitor(t, 200, domain.Meters, far, outside, near)

	got := m.Evaluate(domain.Position{Lat: 40.0, Lon: -75.0})
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
}

func TestEvaluate_RegionalKilometers(t *testing.T) {
	philly := domain.Landmark{ID: "1", Name: "Philadelphia", Lat: 39.9526, Lon: -75.1652}
	nyc := domain.Landmark{ID: "2", Name: "New York", Lat: 40.7128, Lon: -74.0060}
	dc := domain.Landmark{ID: "3", Name: "Washington", Lat: 38.9072, Lon: -77.0369}
	m := newTestMonitor(t, 96.5, domain.Kilometers, philly, nyc, dc)

	// Trenton is ~45 km from Philadelphia, ~90 km from New York.
	got := m.Matches(domain.Position{Lat: 40.2171, Lon: -74.7429})
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].Landmark.ID)
	assert.Equal(t, "2", got[1].Landmark.ID)
	assert.Less(t, got[0].Distance, 96.5)
}

func TestEvaluate_SkipsBadRecords(t *testing.T) {
	m := newTestMonitor(t, 200, domain.Meters,
		domain.Landmark{ID: "", Name: "No id", Lat: 40.0, Lon: -75.0},
		domain.Landmark{ID: "nan", Name: "NaN", Lat: math.NaN(), Lon: -75.0},
		domain.Landmark{ID: "range", Name: "Out of range", Lat: 40.0, Lon: -190},
		libertyBell,
		domain.Landmark{ID: "1", Name: "Duplicate", Lat: 40.0, Lon: -75.0},
	)

	assert.Len(t, m.Landmarks(), 1)
	got := m.Evaluate(domain.Position{Lat: 40.0, Lon: -75.0})
	require.Len(t, got, 1)
	assert.Equal(t, "Liberty Bell", got[0].Name)
}

func TestNearby_DoesNotNotify(t *testing.T) {
	m := newTestMonitor(t, 200, domain.Meters, libertyBell)
	pos := domain.Position{Lat: 40.005, Lon: -75.0}

	assert.Empty(t, m.Nearby(pos, 0))
	got := m.Nearby(pos, 1000)
	require.Len(t, got, 1)
	assert.InDelta(t, 556, got[0].Distance, 5)

	assert.Empty(t, m.Snapshot().Notified)
	assert.Len(t, m.Evaluate(domain.Position{Lat: 40.0, Lon: -75.0}), 1)
}

func TestSnapshotAndClose(t *testing.T) {
	other := domain.Landmark{ID: "2", Name: "Other", Lat: 40.0005, Lon: -75.0}
	m := newTestMonitor(t, 200, domain.Meters, libertyBell, other)

	m.Evaluate(domain.Position{Lat: 40.0, Lon: -75.0})
	snap := m.Snapshot()
	assert.Equal(t, m.SessionID(), snap.ID)
	assert.Equal(t, []string{"1", "2"}, snap.Notified)
	assert.Equal(t, 2, snap.Landmarks)
	assert.False(t, snap.Closed)

	m.Close()
	m.Close()
	assert.True(t, m.Snapshot().Closed)
	assert.Empty(t, m.Evaluate(domain.Position{Lat: 40.0, Lon: -75.0}))
}

func TestEvaluate_ConcurrentCallsAlertOnce(t *testing.T) {
	m := newTestMonitor(t, 200, domain.Meters, libertyBell)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n := len(m.Evaluate(domain.Position{Lat: 40.0, Lon: -75.0}))
			mu.Lock()
			total += n
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, total)
}

func TestNotifiedSet(t *testing.T) {
	s := NewNotifiedSet()
	now := time.Unix(1715003456, 0)

	assert.True(t, s.Add("b", now))
	assert.True(t, s.Add("a", now))
	assert.False(t, s.Add("b", now))

	assert.True(t, s.Has("a"))
	assert.False(t, s.Has("c"))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"b", "a"}, s.IDs())

	at, ok := s.NotifiedAt("a")
	assert.True(t, ok)
	assert.True(t, at.Equal(now))
}
