// Package kv wraps the shared key-value store that carries cross-request
// state: the rotation counter, per-community seeding records, cached
// suggestion batches and broadcast records.
package kv

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrMiss is returned when a key is absent.
var ErrMiss = errors.New("cache miss")

// Store is the key-value contract the suggestion engine depends on.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// SetNX sets the key only if absent; reports whether it was set.
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	// Incr atomically increments the integer at key, creating it at 0 first.
	Incr(ctx context.Context, key string) (int64, error)
	Delete(ctx context.Context, key string) error
}

// RedisStore implements Store over a redis client.
type RedisStore struct {
	c *redis.Client
}

// NewRedisStore creates a Store backed by the given redis client.
func NewRedisStore(c *redis.Client) *RedisStore { return &RedisStore{c: c} }

// NewClient creates a redis client and verifies connectivity.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := r.c.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", ErrMiss
		}
		return "", err
	}
	return val, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.c.Set(ctx, key, value, ttl).Err()
}

func (r *RedisStore) SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error) {
	return r.c.SetNX(ctx, key, value, ttl).Result()
}

func (r *RedisStore) Incr(ctx context.Context, key string) (int64, error) {
	return r.c.Incr(ctx, key).Result()
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.c.Del(ctx, key).Err()
}
