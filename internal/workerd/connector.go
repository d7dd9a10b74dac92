package workerd

import (
	"context"
	"time"

	"github.com/muhammadchandra19/tick-extractor/internal/domain/extraction"
	"github.com/muhammadchandra19/tick-extractor/internal/worker"
)

// Connector is the trading platform session a worker daemon drives. One
// connector serves exactly one (broker, symbol) pair for the lifetime of
// its process.
//
//go:generate mockgen -source=connector.go -destination=mock/connector_mock.go -package=workerd_mock
type Connector interface {
	// Initialize logs the platform session in with the given credentials.
	// Calling it on an initialized session re-logs in.
	Initialize(ctx context.Context, req worker.InitRequest) error

	// HealthCheck reports whether the platform session is usable.
	HealthCheck(ctx context.Context) bool

	// TickData returns every tick with windowStart <= timestamp < windowEnd.
	TickData(ctx context.Context, symbol string, windowStart, windowEnd time.Time) ([]extraction.Tick, error)

	// Shutdown closes the platform session.
	Shutdown(ctx context.Context) error
}
