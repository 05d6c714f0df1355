// Package redis connects the Redis client used by the Redis storage facility.
//
// It wraps [github.com/redis/go-redis/v9] with URL validation (redis:// and
// rediss://), PING verification and linear-backoff retries:
//
//	client, err := redis.Connect(ctx, redis.Config{URL: os.Getenv("DURABLE_REDIS_URL")})
//	if err != nil {
//		return err
//	}
//	s := storage.NewRedis(client, storage.WithNamespace("finboard:durable"))
//
// [Healthcheck] adapts the client to readiness checks.
package redis
