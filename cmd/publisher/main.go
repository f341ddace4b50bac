package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog"

	"github.com/nandanugg/landmark-radar/config"
	"github.com/nandanugg/landmark-radar/module/core/dataset"
	"github.com/nandanugg/landmark-radar/pkg/position"
)

type positionMessage struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy,omitempty"`
	Timestamp int64   `json:"timestamp"`
}

func main() {
	source := flag.String("source", "simulator", "position source: simulator, nmea or google")
	interval := flag.Duration("interval", 5*time.Second, "time between samples")
	datasetPath := flag.String("dataset", "", "landmark file the simulator walks around (defaults to DATASET_PATH)")
	nearChance := flag.Float64("near", 0.3, "simulator: chance of a sample next to a landmark")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "simulator: random seed")
	serialPort := flag.String("port", "/dev/ttyUSB0", "nmea: serial port of the GPS receiver")
	baud := flag.Int("baud", 9600, "nmea: baud rate")
	apiKey := flag.String("api-key", os.Getenv("GOOGLE_MAPS_API_KEY"), "google: Maps API key")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *interval <= 0 {
		fmt.Fprintln(os.Stderr, "error: interval must be positive")
		os.Exit(1)
	}
	cfg.MQTTClientID = "landmark-publisher"
	logger := config.NewLogger(cfg, "publisher")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var provider position.Provider
	switch *source {
	case "simulator":
		path := *datasetPath
		if path == "" {
			path = cfg.DatasetPath
		}
		anchors, err := loadAnchors(ctx, path)
		if err != nil {
			logger.Fatal().Err(err).Msg("simulator anchors")
		}
		provider = position.NewSimulator(position.SimulatorConfig{
			Anchors:    anchors,
			NearChance: *nearChance,
			Seed:       *seed,
		})
		logger.Info().Int("anchors", len(anchors)).Msg("simulating positions")
	case "nmea":
		sp := position.NewSerialProvider(*serialPort, *baud)
		defer func() { _ = sp.Close() }()
		provider = sp
	case "google":
		gp, err := position.NewGoogleProvider(*apiKey)
		if err != nil {
			logger.Fatal().Err(err).Msg("google provider")
		}
		provider = gp
	default:
		logger.Fatal().Str("source", *source).Msg("unknown position source")
	}

	client, err := config.NewMQTT(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("mqtt")
	}
	defer client.Disconnect(250)

	logger.Info().
		Str("broker", cfg.MQTTBroker).
		Str("topic", cfg.MQTTTopic).
		Dur("interval", *interval).
		Msg("publishing positions")

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("shutting down")
			return
		case <-ticker.C:
		}

		fix, err := provider.Next(ctx)
		if errors.Is(err, context.Canceled) {
			continue
		}
		if err != nil {
			logger.Warn().Err(err).Msg("no position")
			continue
		}

		payload, err := encodeFix(fix)
		if err != nil {
			logger.Warn().Err(err).Msg("skipping position")
			continue
		}

		token := client.Publish(cfg.MQTTTopic, 1, false, payload)
		token.Wait()
		if err := token.Error(); err != nil {
			logger.Error().Err(err).Msg("publish")
			continue
		}

		logEvent(logger, fix)
	}
}

// encodeFix builds the MQTT payload. Non-finite coordinates fail to encode.
func encodeFix(fix position.Fix) ([]byte, error) {
	payload, err := json.Marshal(positionMessage{
		Latitude:  fix.Latitude,
		Longitude: fix.Longitude,
		Accuracy:  fix.Accuracy,
		Timestamp: fix.Time.Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("encode position: %w", err)
	}
	return payload, nil
}

func loadAnchors(ctx context.Context, path string) ([]orb.Point, error) {
	res, err := dataset.NewFileSource(path).Load(ctx)
	if err != nil {
		return nil, err
	}
	anchors := make([]orb.Point, len(res.Landmarks))
	for i, lm := range res.Landmarks {
		anchors[i] = lm.Point()
	}
	return anchors, nil
}

func logEvent(logger zerolog.Logger, fix position.Fix) {
	logger.Debug().
		Float64("latitude", fix.Latitude).
		Float64("longitude", fix.Longitude).
		Float64("accuracy", fix.Accuracy).
		Msg("published position")
}
