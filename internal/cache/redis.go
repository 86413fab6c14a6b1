package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"kbmetrics/pkg/errors"
)

var _ Cache = (*Redis)(nil)

// Redis stores entries as plain keys with TTL and tracks each method's keys
// in a sorted set scored by insertion time, so the oldest can be evicted once
// the method exceeds its limit.
type Redis struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedis creates a Redis backed cache. Keys are namespaced under prefix.
func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{
		client: client,
		prefix: prefix,
		now:    time.Now,
	}
}

func (r *Redis) entryKey(k Key) string {
	return r.prefix + ":" + k.Method + ":" + k.Digest
}

func (r *Redis) indexKey(method string) string {
	return r.prefix + ":" + method + ":index"
}

// Get retrieves and decodes a cached value
func (r *Redis) Get(ctx context.Context, key Key, dest any) (bool, error) {
	ek := r.entryKey(key)

	data, err := r.client.Get(ctx, ek).Bytes()
	if err == redis.Nil {
		// expired entries linger in the index until touched
		_ = r.client.ZRem(ctx, r.indexKey(key.Method), ek).Err()
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "failed to get cache entry %s", key)
	}

	if err := decode(data, dest); err != nil {
		return false, errors.Wrapf(err, "failed to decode cache entry %s", key)
	}
	return true, nil
}

// Put stores a value and trims the method's index to policy.Limit
func (r *Redis) Put(ctx context.Context, key Key, value any, policy Policy) error {
	data, err := encode(value)
	if err != nil {
		return errors.Wrapf(err, "failed to encode cache entry %s", key)
	}

	ek := r.entryKey(key)
	ik := r.indexKey(key.Method)

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, ek, data, policy.TTL)
		pipe.ZAdd(ctx, ik, redis.Z{Score: float64(r.now().UnixMicro()), Member: ek})
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "failed to store cache entry %s", key)
	}

	return r.trim(ctx, ik, int64(policy.limit()))
}

func (r *Redis) trim(ctx context.Context, indexKey string, limit int64) error {
	n, err := r.client.ZCard(ctx, indexKey).Result()
	if err != nil {
		return errors.Wrapf(err, "failed to size cache index %s", indexKey)
	}
	if n <= limit {
		return nil
	}

	excess := n - limit
	victims, err := r.client.ZRange(ctx, indexKey, 0, excess-1).Result()
	if err != nil {
		return errors.Wrapf(err, "failed to read cache index %s", indexKey)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(victims) > 0 {
			pipe.Del(ctx, victims...)
		}
		pipe.ZRemRangeByRank(ctx, indexKey, 0, excess-1)
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "failed to evict from cache index %s", indexKey)
	}
	return nil
}
