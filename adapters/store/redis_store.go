package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/layer-3/l3auth/ports"
)

// casScript swaps the value under a key only when the current value matches,
// re-arming the TTL. Running it as a script makes the read-modify-write a
// single atomic step on the server.
var casScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
	return 1
end
return 0
`)

// RedisStore is a Redis implementation of the Store interface. Expiry is
// delegated to Redis' native TTL; all keys carry a configured prefix so
// stores for different purposes cannot collide.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis store whose keys live under prefix.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: strings.TrimSuffix(prefix, ":"),
	}
}

var _ ports.Store = (*RedisStore)(nil)

func (s *RedisStore) key(key string) string {
	return s.prefix + ":" + key
}

// Set stores value under key with a Redis-enforced TTL.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Get returns the value under key, or ports.ErrKeyNotFound once Redis has
// expired it.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ports.ErrKeyNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return value, nil
}

// Delete removes key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// CompareAndSwap conditionally replaces the value under key, using a server
// side script so concurrent swaps on one key cannot both succeed.
func (s *RedisStore) CompareAndSwap(ctx context.Context, key string, old, new []byte, ttl time.Duration) (bool, error) {
	res, err := casScript.Run(ctx, s.client, []string{s.key(key)}, old, new, ttl.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("redis compare-and-swap: %w", err)
	}
	return res == 1, nil
}

// Client returns the underlying Redis client so it can be shared with other
// adapters, such as the event stream publisher.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}
