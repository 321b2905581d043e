// Package cache stores rendered artifacts between runs.
//
// # Overview
//
// Rendering a large graph, and especially converting it to PDF or PNG, is
// the expensive part of the CLI and the server. Results are cached under
// keys derived from the input graph's content hash and the render options,
// so any change to either produces a fresh key.
//
// Three backends implement [Cache]:
//
//   - [FileCache]: one file per entry under a local directory, an expiry
//     header line followed by the raw bytes (CLI)
//   - [RedisCache]: a shared Redis instance (server deployments)
//   - [NullCache]: stores nothing (--no-cache, tests)
//
// Wrap a backend with [Instrument] to report hits, misses and writes to the
// registered [observability.CacheHooks].
//
// # Keys
//
// A [Keyer] builds keys. [NewScopedKeyer] prefixes every key; the CLI and
// server scope keys by build version so a new renderer never serves stale
// artifacts.
//
// [observability.CacheHooks]: github.com/tsa-lab/tsaview/pkg/observability#CacheHooks
package cache

import (
	"context"
	"time"
)

// Default time-to-live values for cached entries.
const (
	ArtifactTTL = 7 * 24 * time.Hour
	MatrixTTL   = 24 * time.Hour
)

// Cache is a byte-oriented key-value store with expiry.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. A zero ttl means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}
