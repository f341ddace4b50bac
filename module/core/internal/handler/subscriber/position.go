package subscriber

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/nandanugg/landmark-radar/module/core/domain"
)

const DefaultTopic = "/landmark/device/position"

type trackingService interface {
	ProcessPosition(ctx context.Context, pos *domain.Position) ([]domain.ProximityAlert, error)
}

type positionMessage struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	Timestamp int64   `json:"timestamp"`
}

// PositionSubscriber feeds samples from the MQTT position topic into the
// tracking service.
type PositionSubscriber struct {
	client      mqtt.Client
	topic       string
	trackingSvc trackingService
	logger      zerolog.Logger
	now         func() time.Time

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

func NewPositionSubscriber(client mqtt.Client, topic string, trackingSvc trackingService, logger zerolog.Logger) *PositionSubscriber {
	if topic == "" {
		topic = DefaultTopic
	}
	return &PositionSubscriber{
		client:      client,
		topic:       topic,
		trackingSvc: trackingSvc,
		logger:      logger.With().Str("topic", topic).Logger(),
		now:         time.Now,
		ctx:         context.Background(),
	}
}

func (s *PositionSubscriber) Start(ctx context.Context) error {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	token := s.client.Subscribe(s.topic, 1, s.handleMessage)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %w", s.topic, err)
	}
	s.logger.Info().Msg("subscribed to position stream")
	return nil
}

// Stop cancels in-flight handling and unsubscribes. Samples delivered after
// Stop are discarded.
func (s *PositionSubscriber) Stop() error {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	token := s.client.Unsubscribe(s.topic)
	token.Wait()
	return token.Error()
}

func (s *PositionSubscriber) currentContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

func (s *PositionSubscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var raw positionMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		s.logger.Warn().Err(err).Msg("invalid position message")
		return
	}

	if err := validatePositionMessage(&raw); err != nil {
		s.logger.Warn().Err(err).Msg("validation error")
		return
	}

	pos := &domain.Position{
		Lat:       raw.Latitude,
		Lon:       raw.Longitude,
		Accuracy:  raw.Accuracy,
		Timestamp: s.now(),
	}
	if raw.Timestamp > 0 {
		pos.Timestamp = time.Unix(raw.Timestamp, 0)
	}

	alerts, err := s.trackingSvc.ProcessPosition(s.currentContext(), pos)
	switch {
	case errors.Is(err, context.Canceled):
		s.logger.Debug().Msg("subscriber stopped, sample discarded")
	case err != nil:
		s.logger.Error().Err(err).Int("alerts", len(alerts)).Msg("process position error")
	}
}

func validatePositionMessage(msg *positionMessage) error {
	if math.IsNaN(msg.Latitude) || msg.Latitude < -90 || msg.Latitude > 90 {
		return fmt.Errorf("latitude: must be between -90 and 90")
	}
	if math.IsNaN(msg.Longitude) || msg.Longitude < -180 || msg.Longitude > 180 {
		return fmt.Errorf("longitude: must be between -180 and 180")
	}
	if msg.Accuracy < 0 {
		return fmt.Errorf("accuracy: must not be negative")
	}
	if msg.Timestamp < 0 {
		return fmt.Errorf("timestamp: must not be negative")
	}
	return nil
}
