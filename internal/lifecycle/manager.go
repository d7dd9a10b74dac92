package lifecycle

import (
	"context"

	"github.com/muhammadchandra19/tick-extractor/internal/domain/extraction"
	"github.com/muhammadchandra19/tick-extractor/internal/routing"
	"github.com/muhammadchandra19/tick-extractor/pkg/logger"
	"go.uber.org/multierr"
)

// Config carries the executable names swept during teardown.
type Config struct {
	// PlatformBinary is the trading platform executable a worker drives,
	// for example terminal64.exe under wine.
	PlatformBinary string `env:"PLATFORM_BINARY" envDefault:"terminal64.exe"`

	// WorkerBinary is the worker daemon executable name.
	WorkerBinary string `env:"WORKER_BINARY" envDefault:"workerd"`
}

// Manager owns the shutdown path for the worker fleet. Every step tolerates
// workers that are already gone and aggregates failures instead of stopping
// at the first one.
type Manager struct {
	table    *routing.Table
	resolver extraction.HandleResolver
	gateway  ProcessGateway
	registry Registry
	config   Config
	logger   logger.Interface
}

// NewManager wires a Manager.
func NewManager(
	table *routing.Table,
	resolver extraction.HandleResolver,
	gateway ProcessGateway,
	registry Registry,
	config Config,
	log logger.Interface,
) *Manager {
	return &Manager{
		table:    table,
		resolver: resolver,
		gateway:  gateway,
		registry: registry,
		config:   config,
		logger:   log,
	}
}

// StopAllSessions asks every routed worker, control ports included, to shut
// itself down over its own API. Unreachable workers count as already stopped.
func (m *Manager) StopAllSessions(ctx context.Context) error {
	var errs error
	for _, route := range m.table.AllRoutes() {
		handle, err := m.resolver.ResolveHandle(route.Broker, route.Symbol)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if err := handle.Terminate(ctx); err != nil {
			errs = multierr.Append(errs, err)
			m.logger.WarnContext(ctx, "worker refused shutdown",
				logger.NewField("broker", route.Broker),
				logger.NewField("symbol", route.Symbol),
				logger.NewField("port", route.Port),
			)
		}
	}
	return errs
}

// Teardown stops the whole fleet: graceful shutdown first, then a name sweep
// for the platform binary, then SIGTERM to every registered worker PID, then
// a worker-binary sweep for processes the registry never saw. The platform
// processes must go down before any worker process is signalled: a worker
// killed under a live platform session leaves the emulation layer in a state
// no later cleanup can repair, and a graceful stop that just failed gives no
// guarantee the sessions are closed.
func (m *Manager) Teardown(ctx context.Context) error {
	var errs error

	if err := m.StopAllSessions(ctx); err != nil {
		errs = multierr.Append(errs, err)
	}

	if err := KillByName(ctx, m.gateway, m.config.PlatformBinary); err != nil {
		errs = multierr.Append(errs, err)
	}

	registered, err := m.registry.All(ctx)
	if err != nil {
		errs = multierr.Append(errs, err)
	}
	for key, pid := range registered {
		if err := m.gateway.Terminate(ctx, pid); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if err := m.registry.Remove(ctx, key); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if err := KillByName(ctx, m.gateway, m.config.WorkerBinary); err != nil {
		errs = multierr.Append(errs, err)
	}

	if errs != nil {
		m.logger.ErrorContext(ctx, errs, logger.NewField("stage", "teardown"))
		return errs
	}
	m.logger.InfoContext(ctx, "teardown complete")
	return nil
}
