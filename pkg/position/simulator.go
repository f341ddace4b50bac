package position

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

type SimulatorConfig struct {
	// Anchors are the points the walk is pulled towards, usually the landmarks.
	Anchors []orb.Point
	// NearChance is the probability that a fix lands within NearRadius meters
	// of a random anchor.
	NearChance float64
	NearRadius float64
	// Step is the largest distance in meters between two wandering fixes.
	Step float64
	Seed uint64
}

// Simulator is a random walk that now and then jumps next to an anchor.
type Simulator struct {
	cfg SimulatorConfig
	now func() time.Time

	mu      sync.Mutex
	rnd     *rand.Rand
	current orb.Point
}

func NewSimulator(cfg SimulatorConfig) *Simulator {
	if cfg.NearRadius <= 0 {
		cfg.NearRadius = 50
	}
	if cfg.Step <= 0 {
		cfg.Step = 500
	}
	s := &Simulator{
		cfg: cfg,
		now: time.Now,
		rnd: rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
	}
	if len(cfg.Anchors) > 0 {
		s.current = cfg.Anchors[0]
	}
	return s
}

func (s *Simulator) Next(ctx context.Context) (Fix, error) {
	if err := ctx.Err(); err != nil {
		return Fix{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.cfg.Anchors) > 0 && s.rnd.Float64() < s.cfg.NearChance {
		anchor := s.cfg.Anchors[s.rnd.IntN(len(s.cfg.Anchors))]
		s.current = s.jitter(anchor, s.cfg.NearRadius)
	} else {
		s.current = s.jitter(s.current, s.cfg.Step)
	}

	return Fix{
		Latitude:  s.current.Lat(),
		Longitude: s.current.Lon(),
		Accuracy:  10,
		Time:      s.now(),
	}, nil
}

func (s *Simulator) jitter(p orb.Point, maxDistance float64) orb.Point {
	bearing := s.rnd.Float64() * 360
	distance := s.rnd.Float64() * maxDistance
	next := geo.PointAtBearingAndDistance(p, bearing, distance)
	if next.Lat() > 90 || next.Lat() < -90 {
		return p
	}
	if next.Lon() > 180 {
		next[0] -= 360
	} else if next.Lon() < -180 {
		next[0] += 360
	}
	return next
}
