package lifecycle

import (
	"context"
	"strings"
	"syscall"

	pkgerrors "github.com/muhammadchandra19/tick-extractor/pkg/errors"
	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/multierr"
)

// ProcessInfo identifies one running OS process.
type ProcessInfo struct {
	PID  int32
	Name string
}

// ProcessGateway abstracts process discovery and signalling so the manager
// can be exercised without touching the host process table.
//
//go:generate mockgen -source=gateway.go -destination=mock/gateway_mock.go -package=lifecycle_mock
type ProcessGateway interface {
	// FindByName returns every process whose executable name contains the
	// given pattern. No match is an empty slice, not an error.
	FindByName(ctx context.Context, pattern string) ([]ProcessInfo, error)

	// Terminate sends SIGTERM to the given PID. A PID that no longer
	// exists is not an error.
	Terminate(ctx context.Context, pid int32) error
}

// HostGateway is the gopsutil-backed ProcessGateway used in production.
type HostGateway struct{}

// NewHostGateway creates a gateway over the host process table.
func NewHostGateway() *HostGateway {
	return &HostGateway{}
}

// FindByName scans the process table for executables containing pattern.
func (g *HostGateway) FindByName(ctx context.Context, pattern string) ([]ProcessInfo, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, pkgerrors.NewErrorDetails(
			"failed to read process table: "+err.Error(),
			string(pkgerrors.ProcessLifecycleError),
			"pattern",
		)
	}

	var matched []ProcessInfo
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			// process exited between listing and inspection
			continue
		}
		if strings.Contains(name, pattern) {
			matched = append(matched, ProcessInfo{PID: p.Pid, Name: name})
		}
	}
	return matched, nil
}

// Terminate sends SIGTERM, treating an already-gone PID as success.
func (g *HostGateway) Terminate(ctx context.Context, pid int32) error {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		// gopsutil returns an error when the PID does not exist
		return nil
	}
	if err := p.SendSignalWithContext(ctx, syscall.SIGTERM); err != nil {
		if isProcessGone(err) {
			return nil
		}
		return pkgerrors.NewErrorDetails(
			"failed to signal process: "+err.Error(),
			string(pkgerrors.ProcessLifecycleError),
			"pid",
		)
	}
	return nil
}

func isProcessGone(err error) bool {
	return strings.Contains(err.Error(), "process already finished") ||
		strings.Contains(err.Error(), "no such process")
}

// KillByName terminates every process matching pattern, collecting signal
// failures instead of stopping at the first one.
func KillByName(ctx context.Context, gateway ProcessGateway, pattern string) error {
	procs, err := gateway.FindByName(ctx, pattern)
	if err != nil {
		return err
	}

	var errs error
	for _, p := range procs {
		if err := gateway.Terminate(ctx, p.PID); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
