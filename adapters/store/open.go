package store

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/layer-3/l3auth/ports"
)

// Backend identifies which store implementation a Connection hands out.
type Backend string

const (
	BackendRedis  Backend = "redis"
	BackendMemory Backend = "memory"
)

// Connection is the result of backend selection at startup. It hands out
// prefix-namespaced stores backed by whichever backend was selected.
type Connection struct {
	// Backend is the selected implementation.
	Backend Backend
	// FallbackReason is set when Redis was configured but unreachable and
	// the in-process backend was selected instead.
	FallbackReason error

	client *redis.Client
}

// Open selects the store backend. Redis is preferred when redisURL is
// non-empty and the server answers a ping; otherwise the in-process backend
// is selected, with FallbackReason recording why. The caller is expected to
// log the outcome once — selection has no other side effects.
func Open(ctx context.Context, redisURL string) Connection {
	if redisURL == "" {
		return Connection{Backend: BackendMemory}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return Connection{Backend: BackendMemory, FallbackReason: err}
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return Connection{Backend: BackendMemory, FallbackReason: err}
	}

	return Connection{Backend: BackendRedis, client: client}
}

// Store returns a store whose keys live under prefix. In memory mode each
// prefix gets its own map, which keeps the namespaces just as disjoint.
func (c Connection) Store(prefix string) ports.Store {
	if c.client != nil {
		return NewRedisStore(c.client, prefix)
	}
	return NewMemoryStore()
}

// Client returns the shared Redis client, or nil in memory mode.
func (c Connection) Client() *redis.Client {
	return c.client
}

// Close releases the Redis connection, if any.
func (c Connection) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
