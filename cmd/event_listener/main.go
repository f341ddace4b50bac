package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/nandanugg/landmark-radar/config"
	"github.com/nandanugg/landmark-radar/module/core/domain"
)

const (
	exchangeName = "landmark.events"
	queueName    = "proximity_alerts"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg, "event_listener")

	conn, err := config.NewRabbitMQ(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("rabbitmq")
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal().Err(err).Msg("rabbitmq channel")
	}
	defer func() { _ = ch.Close() }()

	if err := ch.ExchangeDeclare(exchangeName, "fanout", true, false, false, false, nil); err != nil {
		logger.Fatal().Err(err).Msg("declare exchange")
	}

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		logger.Fatal().Err(err).Msg("declare queue")
	}

	if err := ch.QueueBind(queueName, "", exchangeName, false, nil); err != nil {
		logger.Fatal().Err(err).Msg("bind queue")
	}

	msgs, err := ch.Consume(queueName, "", true, false, false, false, nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("consume")
	}

	logger.Info().Str("queue", queueName).Msg("waiting for proximity alerts")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("shutting down")
			return
		case msg, ok := <-msgs:
			if !ok {
				logger.Warn().Msg("delivery channel closed")
				return
			}
			var alert domain.ProximityAlert
			if err := json.Unmarshal(msg.Body, &alert); err != nil {
				logger.Warn().Err(err).Msg("invalid alert")
				continue
			}
			fmt.Println(formatAlert(&alert))
		}
	}
}

func formatAlert(alert *domain.ProximityAlert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s\n", alert.Timestamp.Format("15:04:05"), alert.Title)
	b.WriteString(alert.Message)
	for _, lm := range alert.Landmarks {
		fmt.Fprintf(&b, "\n  - %s (%s): %.1f %s", lm.Name, lm.ID, lm.Distance, alert.Unit)
	}
	return b.String()
}
