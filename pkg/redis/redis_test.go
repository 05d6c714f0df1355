package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestConnect_Validation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("empty URL returns ErrEmptyURL", func(t *testing.T) {
		t.Parallel()

		client, err := Connect(ctx, Config{})
		require.Nil(t, client)
		require.ErrorIs(t, err, ErrEmptyURL)
	})

	t.Run("invalid scheme returns ErrInvalidURL", func(t *testing.T) {
		t.Parallel()

		for _, url := range []string{
			"http://localhost:6379",
			"localhost:6379",
			"postgresql://localhost:6379",
		} {
			client, err := Connect(ctx, Config{URL: url})
			require.Nil(t, client, url)
			require.ErrorIs(t, err, ErrInvalidURL, url)
		}
	})

	t.Run("malformed URL returns ErrInvalidURL", func(t *testing.T) {
		t.Parallel()

		client, err := Connect(ctx, Config{URL: "redis://localhost:6379/notanumber"})
		require.Nil(t, client)
		require.ErrorIs(t, err, ErrInvalidURL)
	})
}

func TestConnect_Miniredis(t *testing.T) {
	t.Parallel()

	t.Run("connects and pings", func(t *testing.T) {
		t.Parallel()

		mr := miniredis.RunT(t)
		client, err := Connect(context.Background(), Config{URL: "redis://" + mr.Addr()})
		require.NoError(t, err)
		t.Cleanup(func() { _ = client.Close() })

		require.NoError(t, Healthcheck(client)(context.Background()))
	})

	t.Run("unreachable server returns ErrConnect", func(t *testing.T) {
		t.Parallel()

		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		client, err := Connect(context.Background(), Config{
			URL:           "redis://" + addr,
			RetryAttempts: 2,
			RetryInterval: time.Millisecond,
			DialTimeout:   100 * time.Millisecond,
		})
		require.Nil(t, client)
		require.ErrorIs(t, err, ErrConnect)
	})
}

func TestHealthcheck_NilClient(t *testing.T) {
	t.Parallel()

	err := Healthcheck(nil)(context.Background())
	require.ErrorIs(t, err, ErrUnhealthy)
}

func TestWait_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := wait(ctx, 10*time.Second)
	require.Equal(t, context.Canceled, err)
	require.Less(t, time.Since(start), time.Second, "should return immediately")
}

func TestWithDefaults(t *testing.T) {
	t.Parallel()

	cfg := withDefaults(Config{URL: "redis://localhost:6379", PoolSize: 20})
	require.Equal(t, 20, cfg.PoolSize)
	require.Equal(t, DefaultConfig().RetryAttempts, cfg.RetryAttempts)
	require.Equal(t, DefaultConfig().DialTimeout, cfg.DialTimeout)
}

