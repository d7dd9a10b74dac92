package extraction

import "context"

// Downloader is the capability surface of one worker process, bound to one
// (broker, symbol) routing entry.
//
//go:generate mockgen -source=interface.go -destination=mock/interface_mock.go -package=mock
type Downloader interface {
	// CheckConnection pings the worker and reports whether its platform
	// session is alive. Side-effect free.
	CheckConnection(ctx context.Context) bool

	// EnsureConnection reinitializes the session once if CheckConnection
	// fails, and propagates the failure if reinitialization fails too.
	EnsureConnection(ctx context.Context) error

	// DownloadTicks fetches the ticks for the request window, chronological,
	// window end excluded.
	DownloadTicks(ctx context.Context, req Request) ([]Tick, error)

	// Terminate asks the worker to shut down its platform session.
	// Idempotent: terminating an already-stopped session is a no-op.
	Terminate(ctx context.Context) error
}

// HandleResolver turns a (broker, symbol) pair into the Downloader addressing
// its worker process.
type HandleResolver interface {
	ResolveHandle(broker, symbol string) (Downloader, error)
}
