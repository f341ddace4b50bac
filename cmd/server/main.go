package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/nandanugg/landmark-radar/config"
	"github.com/nandanugg/landmark-radar/module/core"
	"github.com/nandanugg/landmark-radar/module/core/domain"
	"github.com/nandanugg/landmark-radar/module/core/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg, "server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *sql.DB
	if cfg.PostgresDSN != "" {
		db, err = config.NewPostgres(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres")
		}
		defer func() { _ = db.Close() }()
	}

	var amqpConn *amqp.Connection
	if cfg.RabbitMQURL != "" {
		amqpConn, err = config.NewRabbitMQ(cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("rabbitmq")
		}
		defer func() { _ = amqpConn.Close() }()
	}

	mqttClient, err := config.NewMQTT(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("mqtt")
	}
	defer mqttClient.Disconnect(250)

	opts := coreOptions(cfg)
	opts.DB = db
	opts.AMQPConn = amqpConn
	opts.MQTTClient = mqttClient
	opts.Logger = logger

	coreModule, err := core.Build(ctx, opts)
	if err != nil {
		logger.Fatal().Err(err).Msg("core module")
	}

	if err := coreModule.StartSubscribers(ctx); err != nil {
		logger.Fatal().Err(err).Msg("start subscribers")
	}

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	health := config.NewHealthChecker(db, amqpConn, mqttClient)
	health.Register(r)

	coreModule.RegisterRoutes(&r.RouterGroup)

	srv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: r}
	go func() {
		logger.Info().Str("port", cfg.HTTPPort).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	if err := coreModule.Stop(); err != nil {
		logger.Warn().Err(err).Msg("stop subscribers")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown")
	}
}

// coreOptions maps the loaded configuration onto the module options. Push
// notifications stay off unless Firebase credentials are configured.
func coreOptions(cfg *config.Config) core.Options {
	opts := core.Options{
		DatasetSource: cfg.DatasetSource,
		DatasetPath:   cfg.DatasetPath,
		Proximity: service.ProximityConfig{
			Radius: cfg.ProximityRadius,
			Unit:   domain.DistanceUnit(cfg.ProximityUnit),
		},
		Tracking: service.TrackingConfig{
			Mode:     domain.AlertMode(cfg.ProximityMode),
			LatDelta: cfg.RegionLatitudeDelta,
			LonDelta: cfg.RegionLongitudeDelta,
		},
		MQTTTopic:       cfg.MQTTTopic,
		HistoryCapacity: cfg.HistoryCapacity,
	}
	if cfg.FirebaseEnabled() {
		opts.FirebaseCredentials = cfg.FirebaseCredentials
		opts.FirebaseDeviceToken = cfg.FirebaseDeviceToken
	}
	return opts
}
