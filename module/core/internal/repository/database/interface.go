package database

import (
	"context"
	"errors"

	"github.com/nandanugg/landmark-radar/module/core/domain"
)

var ErrNotFound = errors.New("not found")

type PositionRepository interface {
	Insert(ctx context.Context, pos *domain.Position) error
	GetLatest(ctx context.Context) (*domain.Position, error)
	GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.Position, error)
}
