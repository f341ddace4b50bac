package service

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nandanugg/landmark-radar/module/core/domain"
)

var ErrInvalidRadius = errors.New("proximity radius must be a positive number")

type ProximityConfig struct {
	Radius float64
	Unit   domain.DistanceUnit
}

// Match is a landmark found within the radius of a sample, with its distance
// in the monitor's unit.
type Match struct {
	Landmark domain.Landmark
	Distance float64
}

// ProximityMonitor alerts at most once per landmark per session. It owns the
// session's NotifiedSet.
type ProximityMonitor struct {
	radius      float64
	unit        domain.DistanceUnit
	earthRadius float64
	landmarks   []domain.Landmark
	logger      zerolog.Logger
	now         func() time.Time

	mu        sync.Mutex
	notified  *NotifiedSet
	sessionID string
	startedAt time.Time
	closed    bool
}

func NewProximityMonitor(cfg ProximityConfig, landmarks []domain.Landmark, logger zerolog.Logger) (*ProximityMonitor, error) {
	if !(cfg.Radius > 0) || math.IsInf(cfg.Radius, 0) {
		return nil, ErrInvalidRadius
	}
	earthRadius, err := cfg.Unit.EarthRadius()
	if err != nil {
		return nil, fmt.Errorf("proximity monitor: %w", err)
	}

	m := &ProximityMonitor{
		radius:      cfg.Radius,
		unit:        cfg.Unit,
		earthRadius: earthRadius,
		logger:      logger,
		now:         time.Now,
		notified:    NewNotifiedSet(),
		sessionID:   uuid.NewString(),
	}
	m.landmarks = m.usableLandmarks(landmarks)
	m.startedAt = m.now()

	m.logger.Info().
		Str("session_id", m.sessionID).
		Float64("radius", m.radius).
		Str("unit", string(m.unit)).
		Int("landmarks", len(m.landmarks)).
		Msg("proximity monitoring started")
	return m, nil
}

// usableLandmarks drops records the monitor cannot evaluate and keeps the rest
// in dataset order.
func (m *ProximityMonitor) usableLandmarks(landmarks []domain.Landmark) []domain.Landmark {
	seen := make(map[string]struct{}, len(landmarks))
	usable := make([]domain.Landmark, 0, len(landmarks))
	for i, lm := range landmarks {
		var reason string
		switch _, dup := seen[lm.ID]; {
		case lm.ID == "":
			reason = "missing id"
		case dup:
			reason = "duplicate id"
		case !validCoordinate(lm.Lat, 90) || !validCoordinate(lm.Lon, 180):
			reason = "invalid coordinates"
		}
		if reason != "" {
			m.logger.Warn().
				Int("index", i).
				Str("landmark_id", lm.ID).
				Str("reason", reason).
				Msg("skipping landmark")
			continue
		}
		seen[lm.ID] = struct{}{}
		usable = append(usable, lm)
	}
	return usable
}

func validCoordinate(v, limit float64) bool {
	return !math.IsNaN(v) && v >= -limit && v <= limit
}

// Evaluate returns the landmarks within the radius of pos that were not
// alerted before in this session, in dataset order, and marks them notified.
func (m *ProximityMonitor) Evaluate(pos domain.Position) []domain.Landmark {
	matches := m.Matches(pos)
	if len(matches) == 0 {
		return nil
	}
	landmarks := make([]domain.Landmark, len(matches))
	for i, match := range matches {
		landmarks[i] = match.Landmark
	}
	return landmarks
}

// Matches is Evaluate with the distance of every returned landmark.
func (m *ProximityMonitor) Matches(pos domain.Position) []Match {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}

	var matches []Match
	for _, lm := range m.landmarks {
		if m.notified.Has(lm.ID) {
			continue
		}
		dist := HaversineDistance(pos.Lat, pos.Lon, lm.Lat, lm.Lon, m.earthRadius)
		if dist <= m.radius {
			matches = append(matches, Match{Landmark: lm, Distance: dist})
		}
	}

	now := m.now()
	for _, match := range matches {
		m.notified.Add(match.Landmark.ID, now)
	}
	return matches
}

// Nearby lists landmarks within radius of pos without touching the session
// state. A non-positive radius falls back to the configured one.
func (m *ProximityMonitor) Nearby(pos domain.Position, radius float64) []Match {
	if !(radius > 0) {
		radius = m.radius
	}
	var matches []Match
	for _, lm := range m.landmarks {
		dist := HaversineDistance(pos.Lat, pos.Lon, lm.Lat, lm.Lon, m.earthRadius)
		if dist <= radius {
			matches = append(matches, Match{Landmark: lm, Distance: dist})
		}
	}
	return matches
}

// Landmarks returns a copy of the landmarks being monitored.
func (m *ProximityMonitor) Landmarks() []domain.Landmark {
	out := make([]domain.Landmark, len(m.landmarks))
	copy(out, m.landmarks)
	return out
}

func (m *ProximityMonitor) Unit() domain.DistanceUnit {
	return m.unit
}

func (m *ProximityMonitor) SessionID() string {
	return m.sessionID
}

func (m *ProximityMonitor) Snapshot() domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.Session{
		ID:        m.sessionID,
		StartedAt: m.startedAt,
		Radius:    m.radius,
		Unit:      m.unit,
		Landmarks: len(m.landmarks),
		Notified:  m.notified.IDs(),
		Closed:    m.closed,
	}
}

// Close ends the session. Later evaluations return nothing.
func (m *ProximityMonitor) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	m.logger.Info().
		Str("session_id", m.sessionID).
		Int("notified", m.notified.Len()).
		Msg("proximity monitoring stopped")
}

// HaversineDistance returns the great-circle distance between two points given
// in degrees, in the unit of earthRadius.
func HaversineDistance(lat1, lon1, lat2, lon2, earthRadius float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	a := sinLat*sinLat + math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*sinLon*sinLon
	// rounding can push a slightly outside [0, 1]
	a = math.Max(0, math.Min(1, a))
	return earthRadius * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
