package storage

import (
	"context"
	"errors"
	"slices"

	"github.com/redis/go-redis/v9"
)

// Redis is a storage facility backed by a single Redis hash.
// Every facility owns one hash, named by its namespace, so Clear never
// touches keys belonging to other facilities sharing the server.
type Redis struct {
	client redis.UniversalClient
	opts   *redisOptions
}

// NewRedis creates a Redis-backed facility.
// The client should be obtained from pkg/redis.Connect.
//
// Example:
//
//	client, err := redis.Connect(ctx, redis.Config{URL: os.Getenv("FINBOARD_DURABLE_REDIS_URL")})
//	if err != nil {
//		return err
//	}
//	s := storage.NewRedis(client, storage.WithNamespace("finboard:durable"), storage.WithOwnedClient())
func NewRedis(client redis.UniversalClient, opts ...RedisOption) *Redis {
	o := defaultRedisOptions()
	for _, opt := range opts {
		opt(o)
	}

	return &Redis{
		client: client,
		opts:   o,
	}
}

// Get returns the value stored under key.
func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.HGet(ctx, r.opts.namespace, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", errors.Join(ErrReadFailed, err)
	}
	return v, nil
}

// Set stores value under key.
// When an expiration is configured the whole hash is refreshed on every write.
func (r *Redis) Set(ctx context.Context, key, value string) error {
	if r.opts.expiration <= 0 {
		if err := r.client.HSet(ctx, r.opts.namespace, key, value).Err(); err != nil {
			return errors.Join(ErrWriteFailed, err)
		}
		return nil
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.opts.namespace, key, value)
		pipe.Expire(ctx, r.opts.namespace, r.opts.expiration)
		return nil
	})
	if err != nil {
		return errors.Join(ErrWriteFailed, err)
	}
	return nil
}

// Remove deletes key from the hash.
func (r *Redis) Remove(ctx context.Context, key string) error {
	if err := r.client.HDel(ctx, r.opts.namespace, key).Err(); err != nil {
		return errors.Join(ErrDeleteFailed, err)
	}
	return nil
}

// Clear deletes the namespace hash.
func (r *Redis) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.opts.namespace).Err(); err != nil {
		return errors.Join(ErrDeleteFailed, err)
	}
	return nil
}

// Key returns the key at position index of the lexicographically sorted key set.
// Redis hashes carry no insertion order.
func (r *Redis) Key(ctx context.Context, index int) (string, error) {
	keys, err := r.client.HKeys(ctx, r.opts.namespace).Result()
	if err != nil {
		return "", errors.Join(ErrListFailed, err)
	}

	slices.Sort(keys)
	if index < 0 || index >= len(keys) {
		return "", ErrNotFound
	}
	return keys[index], nil
}

// Len returns the number of fields in the namespace hash.
func (r *Redis) Len(ctx context.Context) (int, error) {
	n, err := r.client.HLen(ctx, r.opts.namespace).Result()
	if err != nil {
		return 0, errors.Join(ErrListFailed, err)
	}
	return int(n), nil
}

// Close closes the client when the facility owns it (WithOwnedClient).
// Otherwise the client lifecycle belongs to the caller.
func (r *Redis) Close() error {
	if !r.opts.ownsClient {
		return nil
	}
	return r.client.Close()
}

var _ Storage = (*Redis)(nil)
