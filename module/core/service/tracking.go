package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nandanugg/landmark-radar/module/core/domain"
	"github.com/nandanugg/landmark-radar/module/core/internal/repository/database"
	"github.com/nandanugg/landmark-radar/module/core/internal/repository/publisher"
)

type TrackingConfig struct {
	Mode     domain.AlertMode
	LatDelta float64
	LonDelta float64
}

// TrackingService records position samples, runs them through the proximity
// monitor and hands new alerts to the notification sinks.
type TrackingService struct {
	repo      database.PositionRepository
	monitor   *ProximityMonitor
	publisher publisher.AlertPublisher
	cfg       TrackingConfig
	logger    zerolog.Logger

	newID func() string
	now   func() time.Time
}

func NewTrackingService(repo database.PositionRepository, monitor *ProximityMonitor, pub publisher.AlertPublisher,
	cfg TrackingConfig, logger zerolog.Logger) *TrackingService {
	return &TrackingService{
		repo:      repo,
		monitor:   monitor,
		publisher: pub,
		cfg:       cfg,
		logger:    logger,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// ProcessPosition handles one sample. A sample whose context is already
// cancelled is dropped before it is stored or evaluated. Sink failures are returned but the
// landmarks stay notified.
func (s *TrackingService) ProcessPosition(ctx context.Context, pos *domain.Position) ([]domain.ProximityAlert, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, pos); err != nil {
		s.logger.Error().Err(err).Msg("failed to store position")
	}

	matches := s.monitor.Matches(*pos)
	if len(matches) == 0 {
		return nil, nil
	}

	alerts := s.buildAlerts(matches, *pos)
	var errs []error
	for i := range alerts {
		s.logger.Info().
			Str("alert_id", alerts[i].ID).
			Str("mode", string(alerts[i].Mode)).
			Int("landmarks", len(alerts[i].Landmarks)).
			Msg(alerts[i].Message)
		if err := s.publisher.PublishAlert(ctx, &alerts[i]); err != nil {
			errs = append(errs, fmt.Errorf("publish alert %s: %w", alerts[i].ID, err))
		}
	}
	return alerts, errors.Join(errs...)
}

func (s *TrackingService) buildAlerts(matches []Match, pos domain.Position) []domain.ProximityAlert {
	now := s.now()
	base := domain.ProximityAlert{
		SessionID: s.monitor.SessionID(),
		Mode:      s.cfg.Mode,
		Unit:      s.monitor.Unit(),
		Position:  pos,
		Timestamp: now,
	}

	if s.cfg.Mode == domain.Batched {
		landmarks := make([]domain.Landmark, len(matches))
		for i, m := range matches {
			landmarks[i] = m.Landmark
		}
		alert := base
		alert.ID = s.newID()
		alert.Title, alert.Message = BatchMessage(landmarks)
		alert.Landmarks = toAlertLandmarks(matches)
		return []domain.ProximityAlert{alert}
	}

	alerts := make([]domain.ProximityAlert, 0, len(matches))
	for _, m := range matches {
		alert := base
		alert.ID = s.newID()
		alert.Title, alert.Message = NearbyMessage(m.Landmark)
		alert.Landmarks = toAlertLandmarks([]Match{m})
		alerts = append(alerts, alert)
	}
	return alerts
}

func toAlertLandmarks(matches []Match) []domain.AlertLandmark {
	out := make([]domain.AlertLandmark, len(matches))
	for i, m := range matches {
		out[i] = domain.AlertLandmark{ID: m.Landmark.ID, Name: m.Landmark.Name, Distance: m.Distance}
	}
	return out
}

func (s *TrackingService) GetLatest(ctx context.Context) (*domain.Position, error) {
	return s.repo.GetLatest(ctx)
}

func (s *TrackingService) GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.Position, error) {
	return s.repo.GetHistory(ctx, query)
}

// GetRegion centers the configured map window on the latest sample.
func (s *TrackingService) GetRegion(ctx context.Context) (*domain.Region, error) {
	pos, err := s.repo.GetLatest(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.Region{
		Lat:      pos.Lat,
		Lon:      pos.Lon,
		LatDelta: s.cfg.LatDelta,
		LonDelta: s.cfg.LonDelta,
	}, nil
}

func (s *TrackingService) Session() domain.Session {
	return s.monitor.Snapshot()
}

func (s *TrackingService) Landmarks() []domain.Landmark {
	return s.monitor.Landmarks()
}

func (s *TrackingService) Nearby(pos domain.Position, radius float64) []Match {
	return s.monitor.Nearby(pos, radius)
}
