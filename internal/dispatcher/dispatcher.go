package dispatcher

import (
	"context"
	"fmt"
	"sync"

	"github.com/muhammadchandra19/tick-extractor/internal/domain/extraction"
	pkgerrors "github.com/muhammadchandra19/tick-extractor/pkg/errors"
	"github.com/muhammadchandra19/tick-extractor/pkg/logger"
	"github.com/muhammadchandra19/tick-extractor/pkg/util"
	"golang.org/x/sync/errgroup"
)

// Dispatcher fans a batch of extraction requests out across worker processes
// with bounded parallelism and collects per-request results independently.
type Dispatcher struct {
	resolver extraction.HandleResolver
	logger   logger.Interface
}

// NewDispatcher creates a Dispatcher on top of a handle resolver.
func NewDispatcher(resolver extraction.HandleResolver, log logger.Interface) *Dispatcher {
	return &Dispatcher{
		resolver: resolver,
		logger:   log,
	}
}

// Dispatch executes the batch with at most maxConcurrency requests in flight.
// maxConcurrency <= 0 means full parallelism, one unit per request.
//
// Requests are independent: a failure lands in that request's result slot and
// never cancels or blocks its siblings, so the returned map always holds one
// entry per distinct (broker, symbol) key submitted. If two requests share a
// key the later-completing result wins; callers own deduplication. Completion
// order is not defined, callers needing ordered output sort after collection.
func (d *Dispatcher) Dispatch(ctx context.Context, requests []extraction.Request, maxConcurrency int) map[extraction.Key]extraction.Result {
	results := make(map[extraction.Key]extraction.Result, len(requests))
	if len(requests) == 0 {
		return results
	}

	if maxConcurrency <= 0 || maxConcurrency > len(requests) {
		maxConcurrency = len(requests)
	}

	batchID := util.NewBatchID()
	d.logger.InfoContext(ctx, "dispatching extraction batch",
		logger.NewField("batch_id", batchID),
		logger.NewField("requests", len(requests)),
		logger.NewField("max_concurrency", maxConcurrency),
	)

	var mu sync.Mutex
	g := &errgroup.Group{}
	g.SetLimit(maxConcurrency)

	for _, req := range requests {
		req := req
		g.Go(func() error {
			res := d.runOne(ctx, req)

			mu.Lock()
			results[req.Key()] = res
			mu.Unlock()

			if res.Failed() {
				d.logger.WarnContext(ctx, "extraction request failed",
					logger.NewField("batch_id", batchID),
					logger.NewField("broker", req.Broker),
					logger.NewField("symbol", req.Symbol),
					logger.NewField("error", res.Err.Error()),
				)
			}
			// unit errors are captured in the result map, never propagated,
			// so one bad symbol cannot cancel the group
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// runOne executes a single request to completion, converting panics from a
// misbehaving handle into that request's failure.
func (d *Dispatcher) runOne(ctx context.Context, req extraction.Request) (res extraction.Result) {
	res = extraction.Result{Broker: req.Broker, Symbol: req.Symbol}

	defer func() {
		if r := recover(); r != nil {
			res.Ticks = nil
			res.Err = pkgerrors.NewErrorDetailsWithObject(
				fmt.Sprintf("extraction panicked for %s/%s: %v", req.Broker, req.Symbol, r),
				string(pkgerrors.ExtractionFailedError),
				"dispatch",
				req,
			)
		}
	}()

	handle, err := d.resolver.ResolveHandle(req.Broker, req.Symbol)
	if err != nil {
		res.Err = err
		return res
	}

	ticks, err := handle.DownloadTicks(ctx, req)
	if err != nil {
		res.Err = err
		return res
	}

	res.Ticks = ticks
	return res
}
