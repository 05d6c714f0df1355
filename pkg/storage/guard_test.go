package storage_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/finboard/pkg/storage"
)

// undefinedAccessor is present but every method is missing: calls panic.
type undefinedAccessor struct {
	storage.Storage
}

// failingStorage returns err from every operation.
type failingStorage struct {
	err error
}

func (f failingStorage) Get(context.Context, string) (string, error) { return "", f.err }
func (f failingStorage) Set(context.Context, string, string) error { return f.err }
func (f failingStorage) Remove(context.Context, string) error { return f.err }
func (f failingStorage) Clear(context.Context) error { return f.err }
func (f failingStorage) Key(context.Context, int) (string, error) { return "", f.err }
func (f failingStorage) Len(context.Context) (int, error) { return 0, f.err }

// closeTracker records whether Close was called.
type closeTracker struct {
	failingStorage
	closed atomic.Bool
}

func (c *closeTracker) Close() error {
	c.closed.Store(true)
	return nil
}

func TestGuard_KeepsUsableFacilities(t *testing.T) {
	t.Parallel()

	durable := storage.NewMemory()
	session := storage.NewMemory()

	f := storage.NewGuard(storage.Static(durable), storage.Static(session)).Resolve(context.Background())

	require.Same(t, durable, f.Durable)
	require.Same(t, session, f.Session)
	require.False(t, f.DurableFallback)
	require.False(t, f.SessionFallback)
	require.NoError(t, f.DurableErr)
	require.NoError(t, f.SessionErr)
}

func TestGuard_Substitutes(t *testing.T) {
	t.Parallel()

	cases := map[string]storage.Opener{
		"nil opener": nil,
		"opener fails": func(context.Context) (storage.Storage, error) {
			return nil, errors.New("disabled by policy")
		},
		"opener returns nil backend": func(context.Context) (storage.Storage, error) {
			return nil, nil
		},
		"accessor not callable": storage.Static(undefinedAccessor{}),
		"accessor broken":       storage.Static(failingStorage{err: errors.New("SecurityError")}),
		"opener panics": func(context.Context) (storage.Storage, error) {
			panic("no storage in this context")
		},
	}

	for name, open := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			f := storage.NewGuard(open, open).Resolve(ctx)

			require.True(t, f.DurableFallback)
			require.True(t, f.SessionFallback)
			require.ErrorIs(t, f.DurableErr, storage.ErrUnavailable)
			require.ErrorIs(t, f.SessionErr, storage.ErrUnavailable)
			require.IsType(t, &storage.Memory{}, f.Durable)
			require.IsType(t, &storage.Memory{}, f.Session)

			require.NoError(t, f.Durable.Set(ctx, "k", "v"))
			v, err := f.Durable.Get(ctx, "k")
			require.NoError(t, err)
			require.Equal(t, "v", v)
		})
	}
}

func TestGuard_FacilitiesAreIndependent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := storage.NewGuard(nil, nil).Resolve(ctx)
	require.NotSame(t, f.Durable, f.Session)

	require.NoError(t, f.Durable.Set(ctx, "k", "durable"))
	_, err := f.Session.Get(ctx, "k")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGuard_ResolvesOnce(t *testing.T) {
	t.Parallel()

	var opened atomic.Int32
	open := func(context.Context) (storage.Storage, error) {
		opened.Add(1)
		return storage.NewMemory(), nil
	}

	g := storage.NewGuard(open, open)
	first := g.Resolve(context.Background())
	second := g.Resolve(context.Background())

	require.Same(t, first, second)
	require.Equal(t, int32(2), opened.Load(), "each opener runs exactly once")
}

func TestGuard_ClosesRejectedBackend(t *testing.T) {
	t.Parallel()

	broken := &closeTracker{failingStorage: failingStorage{err: errors.New("broken")}}
	f := storage.NewGuard(storage.Static(broken), nil).Resolve(context.Background())

	require.True(t, f.DurableFallback)
	require.True(t, broken.closed.Load())
}

func TestFacilities_Close(t *testing.T) {
	t.Parallel()

	durable := &closeTracker{}
	f := &storage.Facilities{Durable: durable, Session: storage.NewMemory()}

	require.NoError(t, f.Close())
	require.True(t, durable.closed.Load())
}

func TestHealthcheck(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	require.NoError(t, storage.Healthcheck(storage.NewMemory())(ctx))
	require.ErrorIs(t, storage.Healthcheck(nil)(ctx), storage.ErrUnavailable)

	errBroken := errors.New("broken")
	require.ErrorIs(t, storage.Healthcheck(failingStorage{err: errBroken})(ctx), errBroken)
}
