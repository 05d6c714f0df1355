package finboard_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/finboard"
	"github.com/dmitrymomot/finboard/internal/config"
	"github.com/dmitrymomot/finboard/internal/dashboard"
	"github.com/dmitrymomot/finboard/pkg/health"
	"github.com/dmitrymomot/finboard/pkg/session"
	"github.com/dmitrymomot/finboard/pkg/storage"
)

func serve(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestNew_DefaultsToInMemoryFacilities(t *testing.T) {
	t.Parallel()

	app := finboard.New()
	t.Cleanup(func() { _ = app.Close() })

	f := app.Facilities()
	require.True(t, f.DurableFallback)
	require.True(t, f.SessionFallback)
	require.Equal(t, session.Anonymous, app.Store().State())
	require.Empty(t, app.Addr())
}

func TestNew_RestoresSessionFromDurableStorage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	durable := storage.NewMemory()
	require.NoError(t, durable.Set(ctx, session.PrincipalKey, `{"id":"u1","role":"admin"}`))
	require.NoError(t, durable.Set(ctx, session.TokenKey, "tok-123"))

	app := finboard.New(finboard.WithStorage(storage.Static(durable), nil))
	t.Cleanup(func() { _ = app.Close() })

	p, ok := app.Store().Principal()
	require.True(t, ok)
	require.Equal(t, dashboard.User{ID: "u1", Role: "admin"}, p)

	rec := serve(t, app.Handler(), http.MethodGet, "/api/session", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var resp dashboard.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "tok-123", resp.Token)
}

func TestApp_SessionAPI(t *testing.T) {
	t.Parallel()

	durable := storage.NewMemory()
	app := finboard.New(finboard.WithStorage(storage.Static(durable), storage.Static(storage.NewMemory())))
	t.Cleanup(func() { _ = app.Close() })

	rec := serve(t, app.Handler(), http.MethodPost, "/api/session", `{"user":{"id":"u1"},"token":"tok-123"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// A new process over the same durable facility sees the session.
	reloaded := finboard.New(finboard.WithStorage(storage.Static(durable), nil))
	token, ok := reloaded.Store().Token()
	require.True(t, ok)
	require.Equal(t, "tok-123", token)

	rec = serve(t, app.Handler(), http.MethodDelete, "/api/session", "")
	require.Equal(t, http.StatusOK, rec.Code)

	reloaded = finboard.New(finboard.WithStorage(storage.Static(durable), nil))
	_, ok = reloaded.Store().Token()
	require.False(t, ok)
}

func TestApp_HealthEndpoints(t *testing.T) {
	t.Parallel()

	app := finboard.New(
		finboard.WithStorage(storage.Static(storage.NewMemory()), storage.Static(storage.NewMemory())),
		finboard.WithReadinessCheck("upstream", func(context.Context) error { return errors.New("down") }),
	)
	t.Cleanup(func() { _ = app.Close() })

	rec := serve(t, app.Handler(), http.MethodGet, finboard.LivenessPath, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, app.Handler(), http.MethodGet, finboard.ReadinessPath+"?format=json", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp health.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, health.StatusHealthy, resp.Checks["durable"].Status)
	require.Equal(t, health.StatusHealthy, resp.Checks["session"].Status)
	require.Equal(t, health.StatusUnhealthy, resp.Checks["upstream"].Status)
}

func TestApp_WithConfig(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	dir := t.TempDir()

	cfg := config.Default()
	cfg.HTTP.Addr = "127.0.0.1:0"
	cfg.Durable.SQLite.Path = filepath.Join(dir, "finboard.db")
	cfg.Session.Driver = config.DriverRedis
	cfg.Session.Redis.URL = "redis://" + mr.Addr()
	cfg.Session.Expiration = time.Hour
	cfg.LogoutScope = config.LogoutKeys
	require.NoError(t, cfg.Validate())

	ctx := context.Background()
	app := finboard.New(finboard.WithConfig(cfg))

	f := app.Facilities()
	require.False(t, f.DurableFallback, "%v", f.DurableErr)
	require.False(t, f.SessionFallback, "%v", f.SessionErr)
	require.IsType(t, &storage.SQLite{}, f.Durable)
	require.IsType(t, &storage.Redis{}, f.Session)

	require.NoError(t, f.Durable.Set(ctx, "theme", "dark"))
	_, err := app.Store().Login(ctx, dashboard.User{ID: "u1"}, "tok-123")
	require.NoError(t, err)
	require.True(t, app.Store().Logout(ctx).OK())

	theme, err := f.Durable.Get(ctx, "theme")
	require.NoError(t, err)
	require.Equal(t, "dark", theme, "keys-only logout keeps unrelated data")

	rec := serve(t, app.Handler(), http.MethodGet, finboard.ReadinessPath+"?format=json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "session:redis")

	require.NoError(t, app.Close())
	require.NoError(t, app.Close())
}

func TestApp_WithConfigFallsBackWhenBackendIsDown(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := config.Default()
	cfg.Durable.Driver = config.DriverRedis
	cfg.Durable.Redis.URL = "redis://" + addr
	cfg.Durable.Redis.RetryAttempts = 1
	cfg.Durable.Redis.DialTimeout = 100 * time.Millisecond
	cfg.Session.Driver = config.DriverNone

	app := finboard.New(finboard.WithConfig(cfg))
	t.Cleanup(func() { _ = app.Close() })

	f := app.Facilities()
	require.True(t, f.DurableFallback)
	require.ErrorIs(t, f.DurableErr, storage.ErrUnavailable)
	require.True(t, f.SessionFallback)

	outcome, err := app.Store().Login(context.Background(), dashboard.User{ID: "u1"}, "tok")
	require.NoError(t, err)
	require.True(t, outcome.OK(), "the in-memory substitute accepts writes")
}

func TestApp_RejectedBackendIsNotProbedForReadiness(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)

	cfg := config.Default()
	cfg.Durable.Driver = config.DriverRedis
	cfg.Durable.Redis.URL = "redis://" + mr.Addr()
	cfg.Session.Driver = config.DriverRedis
	cfg.Session.Redis.URL = "redis://" + mr.Addr()
	// A plain string where the durable hash should be fails the guard's probe.
	require.NoError(t, mr.Set(cfg.Durable.Namespace, "not-a-hash"))

	app := finboard.New(finboard.WithConfig(cfg))
	t.Cleanup(func() { _ = app.Close() })

	f := app.Facilities()
	require.True(t, f.DurableFallback)
	require.IsType(t, &storage.Memory{}, f.Durable)
	require.False(t, f.SessionFallback, "%v", f.SessionErr)

	rec := serve(t, app.Handler(), http.MethodGet, finboard.ReadinessPath+"?format=json", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp health.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotContains(t, resp.Checks, "durable:redis")
	require.Contains(t, resp.Checks, "session:redis")
	require.Equal(t, health.StatusHealthy, resp.Checks["durable"].Status)
}

func TestApp_RunAndStop(t *testing.T) {
	t.Parallel()

	var hookCalled atomic.Bool
	app := finboard.New(
		finboard.WithAddress("127.0.0.1:0"),
		finboard.WithShutdownTimeout(time.Second),
		finboard.WithShutdownHook(func(context.Context) error {
			hookCalled.Store(true)
			return nil
		}),
	)

	errCh := make(chan error, 1)
	go func() { errCh <- app.Run() }()

	require.Eventually(t, func() bool { return app.Addr() != "" }, time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + app.Addr() + finboard.LivenessPath)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	app.Stop()
	app.Stop()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
	require.True(t, hookCalled.Load())
}

func TestApp_ShutdownHookError(t *testing.T) {
	t.Parallel()

	errHook := errors.New("hook failed")
	app := finboard.New(finboard.WithShutdownHook(func(context.Context) error { return errHook }))

	require.ErrorIs(t, app.Close(), errHook)
}
