// Package cache provides the response cache shared by supplier adapters: a
// Store abstraction with in-memory and Redis backends, deterministic request
// keys, and a response wrapper that snapshots a body without consuming it.
package cache

import (
	"context"
	"time"

	"github.com/jhyland87/chem-crawler/pkg/errors"
)

var (
	// ErrCacheMiss marks a lookup that found nothing usable.  Callers treat
	// it as a signal, not a failure.
	ErrCacheMiss = errors.New(errors.CodeNotFound, "cache miss")

	// ErrSerializationFailed marks a value that could not be encoded for
	// storage.
	ErrSerializationFailed = errors.New(errors.CodeSerialization, "serialization failed")
)

// Store is the cache contract adapters and the search service depend on.
// Values are JSON-serialized; a zero ttl means the store's default.
type Store interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error
	DeleteByPrefix(ctx context.Context, prefix string) (int64, error)
	Ping(ctx context.Context) error
}
