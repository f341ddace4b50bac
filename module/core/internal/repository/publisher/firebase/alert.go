package firebase

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/nandanugg/landmark-radar/module/core/domain"
	"github.com/nandanugg/landmark-radar/module/core/internal/repository/publisher"
)

var _ publisher.AlertPublisher = (*AlertPublisher)(nil)

var ErrNoDeviceToken = errors.New("firebase: device token is required")

type messagingClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// AlertPublisher pushes alerts to the monitored device through Firebase Cloud
// Messaging.
type AlertPublisher struct {
	client messagingClient
	token  string
}

func NewAlertPublisher(ctx context.Context, credentialsPath, deviceToken string) (*AlertPublisher, error) {
	if deviceToken == "" {
		return nil, ErrNoDeviceToken
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	return &AlertPublisher{client: client, token: deviceToken}, nil
}

func (p *AlertPublisher) PublishAlert(ctx context.Context, alert *domain.ProximityAlert) error {
	_, err := p.client.Send(ctx, toMessage(p.token, alert))
	if err != nil {
		if messaging.IsUnregistered(err) {
			return fmt.Errorf("device token no longer registered: %w", err)
		}
		return fmt.Errorf("failed to send notification: %w", err)
	}
	return nil
}

func toMessage(token string, alert *domain.ProximityAlert) *messaging.Message {
	data := map[string]string{
		"alert_id":   alert.ID,
		"session_id": alert.SessionID,
		"mode":       string(alert.Mode),
		"count":      strconv.Itoa(len(alert.Landmarks)),
	}
	if len(alert.Landmarks) == 1 {
		data["landmark_id"] = alert.Landmarks[0].ID
	}

	return &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: alert.Title,
			Body:  alert.Message,
		},
		Data: data,
	}
}
