package lifecycle

import (
	"context"
	"strconv"
	"sync"

	"github.com/muhammadchandra19/tick-extractor/internal/domain/extraction"
	pkgerrors "github.com/muhammadchandra19/tick-extractor/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Registry tracks the PID of every worker process this dispatcher spawned,
// so teardown can target exactly those processes instead of sweeping the
// process table by name alone.
//
//go:generate mockgen -source=registry.go -destination=mock/registry_mock.go -package=lifecycle_mock
type Registry interface {
	Record(ctx context.Context, key extraction.Key, pid int32) error
	Remove(ctx context.Context, key extraction.Key) error
	All(ctx context.Context) (map[extraction.Key]int32, error)
}

// MemoryRegistry is the in-process Registry used when no shared store is
// configured. It does not survive a dispatcher restart.
type MemoryRegistry struct {
	mu   sync.RWMutex
	pids map[extraction.Key]int32
}

// NewMemoryRegistry creates an empty in-memory registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{pids: make(map[extraction.Key]int32)}
}

func (r *MemoryRegistry) Record(ctx context.Context, key extraction.Key, pid int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pids[key] = pid
	return nil
}

func (r *MemoryRegistry) Remove(ctx context.Context, key extraction.Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pids, key)
	return nil
}

func (r *MemoryRegistry) All(ctx context.Context) (map[extraction.Key]int32, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[extraction.Key]int32, len(r.pids))
	for k, v := range r.pids {
		out[k] = v
	}
	return out, nil
}

// RedisRegistry stores worker PIDs in a redis hash so teardown works across
// dispatcher restarts or from a different host user.
type RedisRegistry struct {
	client redis.UniversalClient
	key    string
}

// NewRedisRegistry creates a registry backed by the given hash key.
func NewRedisRegistry(client redis.UniversalClient, hashKey string) *RedisRegistry {
	if hashKey == "" {
		hashKey = "tick-extractor:workers"
	}
	return &RedisRegistry{client: client, key: hashKey}
}

func (r *RedisRegistry) Record(ctx context.Context, key extraction.Key, pid int32) error {
	if err := r.client.HSet(ctx, r.key, key.String(), int64(pid)).Err(); err != nil {
		return r.wrap("failed to record worker pid", err)
	}
	return nil
}

func (r *RedisRegistry) Remove(ctx context.Context, key extraction.Key) error {
	if err := r.client.HDel(ctx, r.key, key.String()).Err(); err != nil {
		return r.wrap("failed to remove worker pid", err)
	}
	return nil
}

func (r *RedisRegistry) All(ctx context.Context) (map[extraction.Key]int32, error) {
	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, r.wrap("failed to list worker pids", err)
	}

	out := make(map[extraction.Key]int32, len(fields))
	for field, raw := range fields {
		key, ok := parseKey(field)
		if !ok {
			continue
		}
		pid, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			continue
		}
		out[key] = int32(pid)
	}
	return out, nil
}

func (r *RedisRegistry) wrap(msg string, err error) error {
	return pkgerrors.NewErrorDetails(
		msg+": "+err.Error(),
		string(pkgerrors.RedisRegistryError),
		"registry",
	)
}

func parseKey(field string) (extraction.Key, bool) {
	for i := 0; i < len(field); i++ {
		if field[i] == '/' {
			return extraction.Key{Broker: field[:i], Symbol: field[i+1:]}, true
		}
	}
	return extraction.Key{}, false
}
