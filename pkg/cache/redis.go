package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lborres/studyplan/core"
)

const (
	defaultKeyPrefix    = "studyplan:session:"
	defaultRedisTimeout = 2 * time.Second
)

var _ core.CacheWithStats = (*RedisCache)(nil)

// RedisCache shares validated sessions between processes. Entries expire
// through Redis TTLs; core.Cache has no context, so each call runs
// under its own timeout.
type RedisCache struct {
	client  redis.UniversalClient
	prefix  string
	ttl     time.Duration
	timeout time.Duration
	stats   counters
}

type counters struct {
	hits, misses, sets, deletes atomic.Int64
}

func NewRedisCache(client redis.UniversalClient, c core.CacheConfig) *RedisCache {
	if c.TTL <= 0 {
		c.TTL = DefaultTTL
	}
	return &RedisCache{
		client:  client,
		prefix:  defaultKeyPrefix,
		ttl:     c.TTL,
		timeout: defaultRedisTimeout,
	}
}

func (r *RedisCache) key(tokenHash string) string {
	return r.prefix + tokenHash
}

func (r *RedisCache) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), r.timeout)
}

func (r *RedisCache) Get(tokenHash string) (*core.SessionData, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	raw, err := r.client.Get(ctx, r.key(tokenHash)).Bytes()
	if errors.Is(err, redis.Nil) {
		r.stats.misses.Add(1)
		return nil, core.ErrCacheNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var data core.SessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode cached session: %w", err)
	}
	// TokenHash is not serialized
	if data.Session != nil {
		data.Session.TokenHash = tokenHash
	}

	r.stats.hits.Add(1)
	return &data, nil
}

func (r *RedisCache) Set(tokenHash string, data *core.SessionData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	ttl := r.ttl
	// Never outlive the session itself
	if data.Session != nil {
		if left := time.Until(data.Session.ExpiresAt); left < ttl {
			ttl = left
		}
	}
	if ttl <= 0 {
		return nil
	}

	ctx, cancel := r.ctx()
	defer cancel()
	if err := r.client.Set(ctx, r.key(tokenHash), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	r.stats.sets.Add(1)
	return nil
}

func (r *RedisCache) Delete(tokenHash string) error {
	ctx, cancel := r.ctx()
	defer cancel()

	n, err := r.client.Del(ctx, r.key(tokenHash)).Result()
	if err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	r.stats.deletes.Add(n)
	return nil
}

// Clear removes only keys under this cache's prefix.
func (r *RedisCache) Clear() error {
	ctx, cancel := r.ctx()
	defer cancel()

	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis del: %w", err)
		}
	}
	return iter.Err()
}

func (r *RedisCache) Stats() core.CacheStats {
	return core.CacheStats{
		Hits:    r.stats.hits.Load(),
		Misses:  r.stats.misses.Load(),
		Sets:    r.stats.sets.Load(),
		Deletes: r.stats.deletes.Load(),
		Size:    -1,
		TTL:     r.ttl,
	}
}
