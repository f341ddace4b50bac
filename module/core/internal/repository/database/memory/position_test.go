package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nandanugg/landmark-radar/module/core/domain"
	"github.com/nandanugg/landmark-radar/module/core/internal/repository/database"
)

func sample(sec int64, lat float64) *domain.Position {
	return &domain.Position{Lat: lat, Lon: -75.0, Timestamp: time.Unix(sec, 0)}
}

func TestPositionRepo_Empty(t *testing.T) {
	repo := NewPositionRepo(4)

	_, err := repo.GetLatest(context.Background())
	assert.ErrorIs(t, err, database.ErrNotFound)

	history, err := repo.GetHistory(context.Background(), &domain.HistoryQuery{Start: time.Unix(0, 0), End: time.Unix(1<<40, 0)})
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestPositionRepo_LatestAndHistory(t *testing.T) {
	ctx := context.Background()
	repo := NewPositionRepo(4)
	for i := int64(0); i < 3; i++ {
		require.NoError(t, repo.Insert(ctx, sample(100+i, 40+float64(i))))
	}

	latest, err := repo.GetLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 42.0, latest.Lat)

	history, err := repo.GetHistory(ctx, &domain.HistoryQuery{Start: time.Unix(101, 0), End: time.Unix(102, 0)})
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 41.0, history[0].Lat)
	assert.Equal(t, 42.0, history[1].Lat)
}

func TestPositionRepo_Wraps(t *testing.T) {
	ctx := context.Background()
	repo := NewPositionRepo(3)
	for i := int64(0); i < 5; i++ {
		require.NoError(t, repo.Insert(ctx, sample(100+i, float64(i))))
	}

	latest, err := repo.GetLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4.0, latest.Lat)

	history, err := repo.GetHistory(ctx, &domain.HistoryQuery{Start: time.Unix(0, 0), End: time.Unix(1000, 0)})
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, []float64{2, 3, 4}, []float64{history[0].Lat, history[1].Lat, history[2].Lat})
}
