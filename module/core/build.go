package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/nandanugg/landmark-radar/module/core/dataset"
	handler "github.com/nandanugg/landmark-radar/module/core/internal/handler/http"
	"github.com/nandanugg/landmark-radar/module/core/internal/handler/subscriber"
	"github.com/nandanugg/landmark-radar/module/core/internal/handler/ws"
	"github.com/nandanugg/landmark-radar/module/core/internal/repository/database"
	"github.com/nandanugg/landmark-radar/module/core/internal/repository/database/memory"
	"github.com/nandanugg/landmark-radar/module/core/internal/repository/database/postgres"
	"github.com/nandanugg/landmark-radar/module/core/internal/repository/publisher"
	"github.com/nandanugg/landmark-radar/module/core/internal/repository/publisher/firebase"
	"github.com/nandanugg/landmark-radar/module/core/internal/repository/publisher/rabbitmq"
	"github.com/nandanugg/landmark-radar/module/core/service"
)

const (
	DatasetFile     = "file"
	DatasetPostgres = "postgres"
)

// Options wires the module. DB and AMQPConn may be nil: positions are then
// kept in memory and alerts skip the queue.
type Options struct {
	DatasetSource string
	DatasetPath   string

	Proximity       service.ProximityConfig
	Tracking        service.TrackingConfig
	MQTTTopic       string
	HistoryCapacity int

	FirebaseCredentials string
	FirebaseDeviceToken string

	DB         *sql.DB
	AMQPConn   *amqp.Connection
	MQTTClient mqtt.Client
	Logger     zerolog.Logger
}

type Module struct {
	Monitor     *service.ProximityMonitor
	TrackingSvc *service.TrackingService
	handler     *handler.TrackingHandler
	hub         *ws.AlertHub
	subscriber  *subscriber.PositionSubscriber
	logger      zerolog.Logger
}

func Build(ctx context.Context, opts Options) (*Module, error) {
	logger := opts.Logger

	source, err := landmarkSource(opts)
	if err != nil {
		return nil, err
	}
	loaded, err := source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load landmarks: %w", err)
	}
	for _, rej := range loaded.Rejected {
		logger.Warn().Err(rej).Msg("rejected landmark record")
	}

	monitor, err := service.NewProximityMonitor(opts.Proximity, loaded.Landmarks, logger)
	if err != nil {
		return nil, fmt.Errorf("proximity monitor: %w", err)
	}

	var positionRepo database.PositionRepository
	if opts.DB != nil {
		positionRepo = postgres.NewPositionRepo(opts.DB, monitor.SessionID())
	} else {
		positionRepo = memory.NewPositionRepo(opts.HistoryCapacity)
	}

	hub := ws.NewAlertHub(logger)
	sinks := publisher.NewFanout()
	sinks.Add("websocket", hub)

	if opts.AMQPConn != nil {
		alertPub, err := rabbitmq.NewAlertPublisher(opts.AMQPConn)
		if err != nil {
			return nil, fmt.Errorf("alert publisher: %w", err)
		}
		sinks.Add("rabbitmq", alertPub)
	}

	if opts.FirebaseCredentials != "" {
		pushPub, err := firebase.NewAlertPublisher(ctx, opts.FirebaseCredentials, opts.FirebaseDeviceToken)
		if err != nil {
			return nil, fmt.Errorf("push publisher: %w", err)
		}
		sinks.Add("firebase", pushPub)
	}

	trackingSvc := service.NewTrackingService(positionRepo, monitor, sinks, opts.Tracking, logger)

	h := handler.NewTrackingHandler(trackingSvc)
	sub := subscriber.NewPositionSubscriber(opts.MQTTClient, opts.MQTTTopic, trackingSvc, logger)

	logger.Info().
		Int("landmarks", len(loaded.Landmarks)).
		Int("rejected", len(loaded.Rejected)).
		Int("sinks", sinks.Len()).
		Bool("postgres_history", opts.DB != nil).
		Msg("core module built")

	return &Module{
		Monitor:     monitor,
		TrackingSvc: trackingSvc,
		handler:     h,
		hub:         hub,
		subscriber:  sub,
		logger:      logger,
	}, nil
}

func landmarkSource(opts Options) (dataset.Source, error) {
	switch opts.DatasetSource {
	case DatasetFile, "":
		return dataset.NewFileSource(opts.DatasetPath), nil
	case DatasetPostgres:
		if opts.DB == nil {
			return nil, errors.New("landmark source postgres: no database configured")
		}
		return postgres.NewLandmarkRepo(opts.DB), nil
	default:
		return nil, fmt.Errorf("unknown landmark source %q", opts.DatasetSource)
	}
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	m.handler.Register(r)
	m.hub.Register(r)
}

func (m *Module) StartSubscribers(ctx context.Context) error {
	return m.subscriber.Start(ctx)
}

// Stop unsubscribes from the position stream, disconnects WebSocket clients
// and ends the monitoring session.
func (m *Module) Stop() error {
	err := m.subscriber.Stop()
	m.hub.Close()
	m.Monitor.Close()
	return err
}
