package storage

import "time"

// RedisOption configures the Redis facility.
type RedisOption func(*redisOptions)

type redisOptions struct {
	namespace  string
	expiration time.Duration
	ownsClient bool
}

func defaultRedisOptions() *redisOptions {
	return &redisOptions{
		namespace: DefaultNamespace + ":" + string(ScopeDurable),
	}
}

// WithNamespace sets the name of the Redis hash holding the facility's keys.
// Default: "finboard:durable".
func WithNamespace(ns string) RedisOption {
	return func(o *redisOptions) {
		if ns != "" {
			o.namespace = ns
		}
	}
}

// WithExpiration makes the facility expire after d without writes.
// Intended for session-scoped facilities. Zero disables expiration.
// Default: 0.
func WithExpiration(d time.Duration) RedisOption {
	return func(o *redisOptions) {
		o.expiration = d
	}
}

// WithOwnedClient makes Close close the Redis client.
// Use it when the client was created for this facility alone.
func WithOwnedClient() RedisOption {
	return func(o *redisOptions) {
		o.ownsClient = true
	}
}
