package publisher

import (
	"context"
	"errors"
	"fmt"

	"github.com/nandanugg/landmark-radar/module/core/domain"
)

var _ AlertPublisher = (*Fanout)(nil)

// Fanout delivers every alert to all named sinks. A failing sink does not stop
// delivery to the others.
type Fanout struct {
	names []string
	sinks []AlertPublisher
}

func NewFanout() *Fanout {
	return &Fanout{}
}

func (f *Fanout) Add(name string, sink AlertPublisher) {
	f.names = append(f.names, name)
	f.sinks = append(f.sinks, sink)
}

func (f *Fanout) Len() int {
	return len(f.sinks)
}

func (f *Fanout) PublishAlert(ctx context.Context, alert *domain.ProximityAlert) error {
	var errs []error
	for i, sink := range f.sinks {
		if err := sink.PublishAlert(ctx, alert); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.names[i], err))
		}
	}
	return errors.Join(errs...)
}
