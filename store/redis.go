package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis is a SecureStore backed by a Redis keyspace. It is intended for
// server-side embeddings of the engine (a backend-for-frontend holding
// device credentials on behalf of its clients), where Redis-level
// encryption at rest is assumed to be configured on the deployment.
//
// Per-key linearizability follows from Redis executing single-key commands
// atomically.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis creates a Redis-backed store. All keys are namespaced under
// prefix; an empty prefix defaults to "gk".
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "gk"
	}
	return &Redis{
		client: client,
		prefix: prefix,
	}
}

func (r *Redis) key(key string) string {
	return r.prefix + ":" + key
}

// Get describes the get operation and its observable behavior.
//
// Get returns [ErrNotFound] when no value exists for key and wraps
// [ErrUnavailable] on backend failure.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return data, nil
}

// Put atomically replaces the value stored under key.
func (r *Redis) Put(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
