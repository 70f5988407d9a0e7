package cache

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/jhyland87/chem-crawler/internal/infrastructure/monitoring/logging"
	"github.com/jhyland87/chem-crawler/pkg/errors"
)

// nullSentinel is stored for loader results that came back empty, so a
// burst of identical misses does not hammer the upstream supplier.
const nullSentinel = "__null__"

type redisStore struct {
	client       redis.UniversalClient
	logger       logging.Logger
	prefix       string
	defaultTTL   time.Duration
	nullCacheTTL time.Duration
	group        singleflight.Group
}

// RedisOption configures a Redis-backed Store.
type RedisOption func(*redisStore)

// WithPrefix overrides the key namespace prepended to every key.
func WithPrefix(prefix string) RedisOption {
	return func(s *redisStore) { s.prefix = prefix }
}

// WithDefaultTTL overrides the TTL used when Set receives zero.
func WithDefaultTTL(ttl time.Duration) RedisOption {
	return func(s *redisStore) { s.defaultTTL = ttl }
}

// WithNullCacheTTL overrides how long empty loader results are remembered.
func WithNullCacheTTL(ttl time.Duration) RedisOption {
	return func(s *redisStore) { s.nullCacheTTL = ttl }
}

// NewRedisStore builds a Store over an existing Redis client.
func NewRedisStore(client redis.UniversalClient, log logging.Logger, opts ...RedisOption) Store {
	s := &redisStore{
		client:       client,
		logger:       log,
		prefix:       "chemcrawl:",
		defaultTTL:   15 * time.Minute,
		nullCacheTTL: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *redisStore) fullKey(key string) string {
	return s.prefix + key
}

// jitterTTL spreads expirations by +/- 10% so cached supplier responses do
// not expire in lockstep.
func (s *redisStore) jitterTTL(ttl time.Duration) time.Duration {
	if ttl == 0 {
		return 0
	}
	jitter := float64(ttl) * 0.1 * (rand.Float64()*2 - 1)
	return ttl + time.Duration(jitter)
}

func (s *redisStore) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := s.client.Get(ctx, s.fullKey(key)).Bytes()
	if err == redis.Nil {
		return ErrCacheMiss
	}
	if err != nil {
		return errors.Wrap(err, errors.CodeCacheError, "failed to get from cache")
	}
	if string(data) == nullSentinel {
		return ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (s *redisStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl == 0 {
		ttl = s.defaultTTL
	}
	ttl = s.jitterTTL(ttl)

	data, err := json.Marshal(value)
	if err != nil {
		return ErrSerializationFailed
	}
	if err := s.client.Set(ctx, s.fullKey(key), data, ttl).Err(); err != nil {
		return errors.Wrap(err, errors.CodeCacheError, "failed to set cache")
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	fullKeys := make([]string, len(keys))
	for i, k := range keys {
		fullKeys[i] = s.fullKey(k)
	}
	return s.client.Del(ctx, fullKeys...).Err()
}

func (s *redisStore) Exists(ctx context.Context, key string) (bool, error) {
	val, err := s.client.Exists(ctx, s.fullKey(key)).Result()
	return val > 0, err
}

func (s *redisStore) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error {
	err := s.Get(ctx, key, dest)
	if err == nil {
		return nil
	}
	if err != ErrCacheMiss {
		return err
	}

	val, err, _ := s.group.Do(key, func() (interface{}, error) {
		v, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		if v == nil {
			s.client.Set(ctx, s.fullKey(key), nullSentinel, s.nullCacheTTL)
			return nil, nil
		}
		if setErr := s.Set(ctx, key, v, ttl); setErr != nil {
			s.logger.Warn("failed to populate cache after load", logging.Err(setErr))
		}
		return v, nil
	})
	if err != nil {
		return err
	}
	if val == nil {
		return ErrCacheMiss
	}

	data, err := json.Marshal(val)
	if err != nil {
		return ErrSerializationFailed
	}
	return json.Unmarshal(data, dest)
}

func (s *redisStore) DeleteByPrefix(ctx context.Context, prefix string) (int64, error) {
	var deleted int64
	var cursor uint64
	match := s.fullKey(prefix) + "*"
	for {
		keys, nextCursor, err := s.client.Scan(ctx, cursor, match, 100).Result()
		if err != nil {
			return deleted, err
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return deleted, err
			}
			deleted += int64(len(keys))
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	return deleted, nil
}

func (s *redisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
