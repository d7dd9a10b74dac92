package worker

import (
	"time"

	"github.com/muhammadchandra19/tick-extractor/internal/domain/extraction"
	"github.com/muhammadchandra19/tick-extractor/internal/routing"
	"github.com/muhammadchandra19/tick-extractor/pkg/logger"
)

// Resolver builds worker handles from routing table entries. Handles are
// cheap and stateless, so they are constructed per resolution rather than
// pooled.
type Resolver struct {
	table   *routing.Table
	creds   *CredentialsStore
	mode    extraction.DataMode
	timeout time.Duration
	logger  logger.Interface
}

var _ extraction.HandleResolver = (*Resolver)(nil)

// NewResolver creates a Resolver bound to one routing table and data mode.
func NewResolver(table *routing.Table, creds *CredentialsStore, mode extraction.DataMode, timeout time.Duration, log logger.Interface) *Resolver {
	return &Resolver{
		table:   table,
		creds:   creds,
		mode:    mode,
		timeout: timeout,
		logger:  log,
	}
}

// ResolveHandle returns the Downloader addressing the worker process that
// owns the (broker, symbol) pair.
func (r *Resolver) ResolveHandle(broker, symbol string) (extraction.Downloader, error) {
	port, err := r.table.Resolve(broker, symbol)
	if err != nil {
		return nil, err
	}

	opts := []Option{}
	if r.timeout > 0 {
		opts = append(opts, WithRequestTimeout(r.timeout))
	}
	return NewHandle(broker, symbol, port, r.mode, r.creds, r.logger, opts...), nil
}
