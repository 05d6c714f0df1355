package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection parameters.
// Fields carry env and yaml tags so the struct can be embedded in the
// application config under a prefix.
type Config struct {
	// redis:// or rediss:// (TLS) connection URL.
	URL string `env:"URL" yaml:"url"`

	PoolSize      int           `env:"POOL_SIZE" yaml:"pool_size"`
	RetryAttempts int           `env:"RETRY_ATTEMPTS" yaml:"retry_attempts"`
	RetryInterval time.Duration `env:"RETRY_INTERVAL" yaml:"retry_interval"`
	DialTimeout   time.Duration `env:"DIAL_TIMEOUT" yaml:"dial_timeout"`
	ReadTimeout   time.Duration `env:"READ_TIMEOUT" yaml:"read_timeout"`
	WriteTimeout  time.Duration `env:"WRITE_TIMEOUT" yaml:"write_timeout"`
}

// DefaultConfig returns the defaults applied to zero-valued Config fields.
func DefaultConfig() Config {
	return Config{
		PoolSize:      4,
		RetryAttempts: 3,
		RetryInterval: time.Second,
		DialTimeout:   5 * time.Second,
		ReadTimeout:   3 * time.Second,
		WriteTimeout:  3 * time.Second,
	}
}

// Connect creates a Redis client and verifies it with PING, retrying with
// linear backoff. Zero-valued fields of cfg take their values from DefaultConfig.
func Connect(ctx context.Context, cfg Config) (redis.UniversalClient, error) {
	if cfg.URL == "" {
		return nil, ErrEmptyURL
	}
	if !strings.HasPrefix(cfg.URL, "redis://") && !strings.HasPrefix(cfg.URL, "rediss://") {
		return nil, ErrInvalidURL
	}

	cfg = withDefaults(cfg)

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, errors.Join(ErrInvalidURL, err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	attempts := max(cfg.RetryAttempts, 1)
	var lastErr error
	for i := range attempts {
		client := redis.NewClient(opts)

		lastErr = client.Ping(ctx).Err()
		if lastErr == nil {
			return client, nil
		}
		_ = client.Close()

		if i == attempts-1 {
			break
		}
		if waitErr := wait(ctx, time.Duration(i+1)*cfg.RetryInterval); waitErr != nil {
			return nil, errors.Join(ErrConnect, waitErr)
		}
	}

	return nil, errors.Join(ErrConnect, lastErr)
}

// Healthcheck returns a closure that pings the client for health endpoints.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return ErrUnhealthy
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrUnhealthy, err)
		}
		return nil
	}
}

func withDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.PoolSize == 0 {
		cfg.PoolSize = def.PoolSize
	}
	if cfg.RetryAttempts == 0 {
		cfg.RetryAttempts = def.RetryAttempts
	}
	if cfg.RetryInterval == 0 {
		cfg.RetryInterval = def.RetryInterval
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = def.DialTimeout
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = def.ReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	return cfg
}

func wait(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
