package extractor

import (
	"context"
	"time"

	"github.com/muhammadchandra19/tick-extractor/internal/dispatcher"
	"github.com/muhammadchandra19/tick-extractor/internal/domain/extraction"
	"github.com/muhammadchandra19/tick-extractor/internal/infrastructure/questdb/tick"
	"github.com/muhammadchandra19/tick-extractor/internal/routing"
	"github.com/muhammadchandra19/tick-extractor/pkg/logger"
	"go.uber.org/multierr"
)

// TickPublisher streams one result's ticks to the event bus.
type TickPublisher interface {
	PublishBatch(ctx context.Context, key extraction.Key, mode extraction.DataMode, ticks []extraction.Tick) error
}

// Usecase runs one extraction cycle end to end: build the batch, dispatch
// it across the worker fleet, then persist and publish whatever came back.
type Usecase struct {
	table      *routing.Table
	dispatcher *dispatcher.Dispatcher
	repository tick.TickRepository
	publisher  TickPublisher
	logger     logger.Interface
}

// NewUsecase wires the extraction usecase. repository and publisher may be
// nil when that sink is not configured.
func NewUsecase(
	table *routing.Table,
	d *dispatcher.Dispatcher,
	repository tick.TickRepository,
	publisher TickPublisher,
	log logger.Interface,
) *Usecase {
	return &Usecase{
		table:      table,
		dispatcher: d,
		repository: repository,
		publisher:  publisher,
		logger:     log,
	}
}

// RunCycle extracts one window for the given brokers and fans the ticks into
// the configured sinks. Sink failures are aggregated per pair, a failing
// pair never blocks the others, and the full result map is returned so the
// caller can inspect per-pair outcomes.
func (u *Usecase) RunCycle(
	ctx context.Context,
	brokers []string,
	windowStart, windowEnd time.Time,
	mode extraction.DataMode,
	checkConnection bool,
	maxConcurrency int,
) (map[extraction.Key]extraction.Result, error) {
	requests, err := dispatcher.BuildBatch(u.table, brokers, windowStart, windowEnd, mode, checkConnection)
	if err != nil {
		return nil, err
	}

	results := u.dispatcher.Dispatch(ctx, requests, maxConcurrency)

	var errs error
	for key, result := range results {
		if result.Failed() {
			errs = multierr.Append(errs, result.Err)
			continue
		}
		if err := u.sink(ctx, key, mode, result.Ticks); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	u.logger.InfoContext(ctx, "extraction cycle finished",
		logger.NewField("pairs", len(results)),
		logger.NewField("failures", len(multierr.Errors(errs))),
	)
	return results, errs
}

func (u *Usecase) sink(ctx context.Context, key extraction.Key, mode extraction.DataMode, ticks []extraction.Tick) error {
	var errs error
	if u.repository != nil {
		records := tick.FromExtraction(key.Broker, key.Symbol, mode, ticks)
		if err := u.repository.StoreBatch(ctx, records); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if u.publisher != nil {
		if err := u.publisher.PublishBatch(ctx, key, mode, ticks); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
