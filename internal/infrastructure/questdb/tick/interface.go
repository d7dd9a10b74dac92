package tick

import (
	"context"
	"time"
)

// TickRepository is the interface for the stored tick repository.
//
//go:generate mockgen -source=interface.go -destination=mock/repository_mock.go -package=mock
type TickRepository interface {
	GetByFilter(ctx context.Context, filter Filter) ([]*Record, error)
	GetLatestByPair(ctx context.Context, broker, symbol string) (*Record, error)
	CountInWindow(ctx context.Context, broker, symbol string, from time.Time, to time.Time) (int64, error)
	Store(ctx context.Context, record *Record) error
	StoreBatch(ctx context.Context, records []*Record) error
}
