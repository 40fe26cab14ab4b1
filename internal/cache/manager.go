// Package cache provides in-memory caching with TTLs and a read-through
// wrapper for expensive lookups such as ComfyUI object info.
package cache

import (
	"context"
	"time"
)

// Manager is a typed key/value cache with per-entry TTLs.
type Manager[K ~string, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	Flush(ctx context.Context) error
}
