package lifecycle

import (
	"context"
	"os/exec"

	"github.com/muhammadchandra19/tick-extractor/internal/domain/extraction"
	pkgerrors "github.com/muhammadchandra19/tick-extractor/pkg/errors"
	"github.com/muhammadchandra19/tick-extractor/pkg/logger"
)

// Spawner launches one worker daemon per (broker, symbol) pair and records
// its PID in the registry for later teardown.
type Spawner struct {
	binary   string
	registry Registry
	logger   logger.Interface
}

// NewSpawner creates a spawner running the given workerd binary.
func NewSpawner(binary string, registry Registry, log logger.Interface) *Spawner {
	return &Spawner{
		binary:   binary,
		registry: registry,
		logger:   log,
	}
}

// Spawn starts a detached worker for the pair and returns its PID. The
// worker resolves its own port from the routing table it loads at startup.
func (s *Spawner) Spawn(ctx context.Context, key extraction.Key) (int32, error) {
	cmd := exec.Command(s.binary, "-broker", key.Broker, "-symbol", key.Symbol)
	if err := cmd.Start(); err != nil {
		return 0, pkgerrors.NewErrorDetailsWithObject(
			"failed to start worker process: "+err.Error(),
			string(pkgerrors.ProcessLifecycleError),
			"spawn",
			key,
		)
	}

	pid := int32(cmd.Process.Pid)
	// the worker outlives this process, reap it in the background so a
	// short-lived failure does not leave a zombie
	go func() { _ = cmd.Wait() }()

	if err := s.registry.Record(ctx, key, pid); err != nil {
		s.logger.WarnContext(ctx, "worker spawned but not registered",
			logger.NewField("worker", key.String()),
			logger.NewField("pid", pid),
			logger.NewField("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "worker spawned",
		logger.NewField("worker", key.String()),
		logger.NewField("pid", pid),
	)
	return pid, nil
}
