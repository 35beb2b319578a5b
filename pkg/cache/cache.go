// Package cache stores derived data across una invocations.
//
// The only persistent entry today is the site-packages distribution index
// built by package dist: scanning every *.dist-info directory of a large
// virtualenv is the slowest step of a check, and the result only changes
// when packages are installed. Entries are keyed by [Key] over the inputs
// that determine them, so a changed environment simply misses.
//
// [FileCache] is used by the CLI. [NullCache] is used with --no-cache and in
// tests.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and true, or false on a miss or an
	// expired entry.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// DistIndexTTL bounds how long a distribution index is trusted.
const DistIndexTTL = 24 * time.Hour
