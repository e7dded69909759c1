// Package cache stores rendered artifacts keyed by schema content and
// render options.
//
// Three [Cache] implementations are provided:
//
//   - [FileCache]: hash-sharded JSON files on disk, used by the CLI
//   - [RedisCache]: a shared Redis instance, used by the HTTP server
//   - [NullCache]: stores nothing, used when caching is disabled
//
// Keys come from a [Keyer]. [DefaultKeyer] derives them from the SHA-256 of
// the schema file ([Hash]) and the options that change the output, so an
// edited schema or a different format never hits a stale entry.
// [ScopedKeyer] prefixes keys to keep several callers apart in one store.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
//
// Get reports a miss as (nil, false, nil); errors are reserved for storage
// failures. A zero ttl in Set means the entry does not expire.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
