package publisher

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nandanugg/landmark-radar/module/core/domain"
)

type recordingSink struct {
	err   error
	calls []*domain.ProximityAlert
}

func (s *recordingSink) PublishAlert(_ context.Context, alert *domain.ProximityAlert) error {
	s.calls = append(s.calls, alert)
	return s.err
}

func TestFanout_DeliversToAll(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	f := NewFanout()
	f.Add("a", a)
	f.Add("b", b)

	err := f.PublishAlert(context.Background(), &domain.ProximityAlert{ID: "x"})

	assert.NoError(t, err)
	assert.Equal(t, 2, f.Len())
	assert.Len(t, a.calls, 1)
	assert.Len(t, b.calls, 1)
}

func TestFanout_ContinuesPastFailure(t *testing.T) {
	down := errors.New("broker down")
	a, b := &recordingSink{err: down}, &recordingSink{}
	f := NewFanout()
	f.Add("rabbitmq", a)
	f.Add("websocket", b)

	err := f.PublishAlert(context.Background(), &domain.ProximityAlert{ID: "x"})

	assert.ErrorIs(t, err, down)
	assert.Contains(t, err.Error(), "rabbitmq: broker down")
	assert.Len(t, b.calls, 1)
}

func TestFanout_Empty(t *testing.T) {
	assert.NoError(t, NewFanout().PublishAlert(context.Background(), &domain.ProximityAlert{}))
}
