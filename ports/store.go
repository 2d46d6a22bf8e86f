package ports

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned by Store.Get for absent or expired keys.
var ErrKeyNotFound = errors.New("key not found")

// Store is a TTL key-value store shared by the nonce and session managers.
// Implementations must be safe for concurrent use from independent requests;
// keys are independent of each other.
type Store interface {
	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get returns the live value under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// CompareAndSwap atomically replaces the value under key with new,
	// re-armed with ttl, if and only if the current value equals old.
	// It reports whether the swap happened.
	CompareAndSwap(ctx context.Context, key string, old, new []byte, ttl time.Duration) (bool, error)
}
