// Package cache provides the shared key-value store used for API key authentication caching
// and quota window counters. The Redis implementation is safe across service instances; the
// in-memory implementation serves tests and single-instance deployments.
package cache

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Store is a key-value store with per-key TTLs and atomic fixed-window counters.
type Store interface {
	// Get returns the value stored under key or ErrCacheMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// IncrementWindow atomically increments the counter under key and returns the new count.
	// The first increment starts a window of length window; the counter disappears when it ends.
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, error)

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying resources.
	Close() error
}

// Key builds a store key from a namespace and the BLAKE2b-256 digest of parts, so that
// secrets and client addresses never appear in the keyspace verbatim.
func Key(namespace string, parts ...string) string {
	sum := blake2b.Sum256([]byte(strings.Join(parts, "\x00")))
	return namespace + "_" + hex.EncodeToString(sum[:])
}
