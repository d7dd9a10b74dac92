package workerd

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/muhammadchandra19/tick-extractor/internal/domain/extraction"
	"github.com/muhammadchandra19/tick-extractor/internal/worker"
	pkgerrors "github.com/muhammadchandra19/tick-extractor/pkg/errors"
)

// SimulatedConnector synthesizes a tick stream with a random walk instead of
// driving a real platform terminal. It backs local development and tests.
type SimulatedConnector struct {
	mu          sync.Mutex
	initialized bool
	broker      string
	basePrice   float64
	spread      float64
	interval    time.Duration
	rng         *rand.Rand
}

// NewSimulatedConnector creates a connector emitting one tick per interval
// around basePrice.
func NewSimulatedConnector(basePrice float64, interval time.Duration, seed int64) *SimulatedConnector {
	if interval <= 0 {
		interval = time.Second
	}
	return &SimulatedConnector{
		basePrice: basePrice,
		spread:    basePrice * 0.0001,
		interval:  interval,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

func (c *SimulatedConnector) Initialize(ctx context.Context, req worker.InitRequest) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.broker = req.Broker
	c.initialized = true
	return nil
}

func (c *SimulatedConnector) HealthCheck(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized
}

// TickData walks the price from basePrice across the window, one tick per
// interval. The window end is exclusive.
func (c *SimulatedConnector) TickData(ctx context.Context, symbol string, windowStart, windowEnd time.Time) ([]extraction.Tick, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return nil, pkgerrors.NewErrorDetails(
			"session not initialized",
			string(pkgerrors.ConnectionUnavailableError),
			"session",
		)
	}

	price := c.basePrice
	var ticks []extraction.Tick
	for ts := windowStart; ts.Before(windowEnd); ts = ts.Add(c.interval) {
		price += (c.rng.Float64() - 0.5) * 0.001 * c.basePrice
		ticks = append(ticks, extraction.Tick{
			Timestamp: ts,
			Bid:       price,
			Ask:       price + c.spread,
			Last:      price,
			Volume:    c.rng.Float64() * 10,
		})
	}
	return ticks, nil
}

func (c *SimulatedConnector) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initialized = false
	return nil
}
