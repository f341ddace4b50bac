package publisher

import (
	"context"

	"github.com/nandanugg/landmark-radar/module/core/domain"
)

type AlertPublisher interface {
	PublishAlert(ctx context.Context, alert *domain.ProximityAlert) error
}
