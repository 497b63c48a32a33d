package tours

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

type Repository interface {
	ListTours(ctx context.Context) ([]Tour, error)
	GetTour(ctx context.Context, id int64) (*Tour, error)
	CreateTour(ctx context.Context, t *Tour) error
	UpdateTour(ctx context.Context, t *Tour) error
	DeleteTour(ctx context.Context, id int64) error
	UpdateAggregates(ctx context.Context, tourID int64, popularity int, childFriendliness *float64) error

	ListLogs(ctx context.Context, tourID int64) ([]TourLog, error)
	GetLog(ctx context.Context, id int64) (*TourLog, error)
	CreateLog(ctx context.Context, l *TourLog) error
	UpdateLog(ctx context.Context, l *TourLog) error
	DeleteLog(ctx context.Context, id int64) error
}
