package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix  = "idempotency/"
	reserveAttempts = 3
)

// RedisStore shares entries between API replicas.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// ConnectRedis opens a client for addr and verifies it with PING.
func ConnectRedis(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

func (r *RedisStore) Reserve(ctx context.Context, key string, entry Entry, ttl time.Duration) (*Entry, bool, error) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return nil, false, err
	}

	for attempt := 0; attempt < reserveAttempts; attempt++ {
		ok, err := r.rdb.SetNX(ctx, redisKeyPrefix+key, payload, ttl).Result()
		if err != nil {
			return nil, false, err
		}
		if ok {
			return nil, true, nil
		}

		raw, err := r.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
		if errors.Is(err, redis.Nil) {
			// expired between SETNX and GET
			continue
		}
		if err != nil {
			return nil, false, err
		}
		var existing Entry
		if err := json.Unmarshal(raw, &existing); err != nil {
			return nil, false, fmt.Errorf("decode idempotency entry: %w", err)
		}
		return &existing, false, nil
	}
	return nil, false, fmt.Errorf("reserve idempotency key %q: gave up after %d attempts", key, reserveAttempts)
}

func (r *RedisStore) Complete(ctx context.Context, key string, entry Entry, ttl time.Duration) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, redisKeyPrefix+key, payload, ttl).Err()
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, redisKeyPrefix+key).Err()
}
