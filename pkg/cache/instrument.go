package cache

import (
	"context"
	"time"

	"github.com/tsa-lab/tsaview/pkg/observability"
)

// Instrumented reports cache traffic to the registered observability hooks.
type Instrumented struct {
	Cache
}

// Instrument wraps c so every Get and Set fires the cache hooks.
func Instrument(c Cache) *Instrumented {
	return &Instrumented{Cache: c}
}

// Get implements Cache.
func (c *Instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, KeyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, KeyType(key))
		}
	}
	return data, ok, err
}

// Set implements Cache.
func (c *Instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, KeyType(key), len(data))
	}
	return err
}

// Clear forwards to the wrapped cache when it supports clearing.
func (c *Instrumented) Clear(ctx context.Context) (int, error) {
	if cl, ok := c.Cache.(Clearer); ok {
		return cl.Clear(ctx)
	}
	return 0, nil
}

// GetOrCreate returns the cached value for key, or calls create, stores its
// result with ttl and returns it. Store failures are ignored; the value is
// still returned.
func GetOrCreate(ctx context.Context, c Cache, key string, ttl time.Duration, create func() ([]byte, error)) ([]byte, error) {
	if data, ok, err := c.Get(ctx, key); err == nil && ok {
		return data, nil
	}
	data, err := create()
	if err != nil {
		return nil, err
	}
	_ = c.Set(ctx, key, data, ttl)
	return data, nil
}
