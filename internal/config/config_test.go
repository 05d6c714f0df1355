package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/finboard/internal/config"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, config.DriverSQLite, cfg.Durable.Driver)
	require.Equal(t, "finboard:durable", cfg.Durable.Namespace)
	require.Equal(t, config.DriverMemory, cfg.Session.Driver)
	require.Equal(t, "finboard:session", cfg.Session.Namespace)
	require.Equal(t, config.LogoutAll, cfg.LogoutScope)
	require.Equal(t, ":8080", cfg.HTTP.Addr)
}

func TestLoad_YAML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "finboard.yaml", `
log:
  format: text
  level: debug
http:
  addr: ":9090"
  shutdown_timeout: 3s
durable:
  driver: redis
  namespace: acme:durable
  expiration: 24h
  redis:
    url: redis://localhost:6379/0
session:
  driver: none
logout_scope: keys
`)

	cfg, err := config.Load(path, writeFile(t, "empty.env", ""))
	require.NoError(t, err)

	require.Equal(t, "text", cfg.Log.Format)
	require.Equal(t, slog.LevelDebug, cfg.Log.Level)
	require.Equal(t, ":9090", cfg.HTTP.Addr)
	require.Equal(t, 3*time.Second, cfg.HTTP.ShutdownTimeout)
	require.Equal(t, 5*time.Second, cfg.HTTP.ReadHeaderTimeout, "unset fields keep defaults")
	require.Equal(t, config.DriverRedis, cfg.Durable.Driver)
	require.Equal(t, "acme:durable", cfg.Durable.Namespace)
	require.Equal(t, 24*time.Hour, cfg.Durable.Expiration)
	require.Equal(t, "redis://localhost:6379/0", cfg.Durable.Redis.URL)
	require.Equal(t, 4, cfg.Durable.Redis.PoolSize)
	require.Equal(t, config.DriverNone, cfg.Session.Driver)
	require.Equal(t, config.LogoutKeys, cfg.LogoutScope)
}

func TestLoad_FileErrors(t *testing.T) {
	t.Parallel()

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, config.ErrReadFile)

	_, err = config.Load(writeFile(t, "bad.yaml", "durable: [unclosed"))
	require.ErrorIs(t, err, config.ErrParseFile)

	_, err = config.Load(writeFile(t, "unknown.yaml", "durable:\n  drvier: sqlite\n"))
	require.ErrorIs(t, err, config.ErrParseFile)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "finboard.yaml", `
durable:
  driver: sqlite
  sqlite:
    path: /tmp/from-file.db
`)

	t.Setenv("FINBOARD_DURABLE_SQLITE_PATH", "/tmp/from-env.db")
	t.Setenv("FINBOARD_SESSION_DRIVER", "redis")
	t.Setenv("FINBOARD_SESSION_REDIS_URL", "redis://cache:6379/1")
	t.Setenv("FINBOARD_LOG_LEVEL", "warn")
	t.Setenv("FINBOARD_HTTP_REQUEST_TIMEOUT", "2s")

	cfg, err := config.Load(path, writeFile(t, "empty.env", ""))
	require.NoError(t, err)

	require.Equal(t, "/tmp/from-env.db", cfg.Durable.SQLite.Path)
	require.Equal(t, 5*time.Second, cfg.Durable.SQLite.BusyTimeout)
	require.Equal(t, config.DriverRedis, cfg.Session.Driver)
	require.Equal(t, "redis://cache:6379/1", cfg.Session.Redis.URL)
	require.Equal(t, slog.LevelWarn, cfg.Log.Level)
	require.Equal(t, 2*time.Second, cfg.HTTP.RequestTimeout)
}

func TestLoad_Dotenv(t *testing.T) {
	// Register cleanup first so the variables set by the dotenv file are removed afterwards.
	for _, key := range []string{"FINBOARD_DURABLE_DRIVER", "FINBOARD_LOGOUT_SCOPE"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Setenv("FINBOARD_LOGOUT_SCOPE", "all")

	dotenv := writeFile(t, ".env", "FINBOARD_DURABLE_DRIVER=memory\nFINBOARD_LOGOUT_SCOPE=keys\n")

	cfg, err := config.Load("", dotenv)
	require.NoError(t, err)
	require.Equal(t, config.DriverMemory, cfg.Durable.Driver)
	require.Equal(t, config.LogoutAll, cfg.LogoutScope, "process environment wins over dotenv")
}

func TestLoad_EnvParseError(t *testing.T) {
	t.Setenv("FINBOARD_HTTP_SHUTDOWN_TIMEOUT", "soon")

	_, err := config.Load("", writeFile(t, "empty.env", ""))
	require.ErrorIs(t, err, config.ErrParseEnv)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr error
	}{
		{
			name:    "unknown driver",
			mutate:  func(c *config.Config) { c.Durable.Driver = "localstorage" },
			wantErr: config.ErrUnknownDriver,
		},
		{
			name:    "redis without url",
			mutate:  func(c *config.Config) { c.Session.Driver = config.DriverRedis },
			wantErr: config.ErrMissingSetting,
		},
		{
			name:    "postgres without url",
			mutate:  func(c *config.Config) { c.Durable.Driver = config.DriverPostgres },
			wantErr: config.ErrMissingSetting,
		},
		{
			name:    "s3 without bucket",
			mutate:  func(c *config.Config) { c.Durable.Driver = config.DriverS3 },
			wantErr: config.ErrMissingSetting,
		},
		{
			name:    "sqlite without path",
			mutate:  func(c *config.Config) { c.Durable.SQLite.Path = "" },
			wantErr: config.ErrMissingSetting,
		},
		{
			name:    "empty namespace",
			mutate:  func(c *config.Config) { c.Durable.Namespace = "" },
			wantErr: config.ErrMissingSetting,
		},
		{
			name:    "invalid logout scope",
			mutate:  func(c *config.Config) { c.LogoutScope = "some" },
			wantErr: config.ErrInvalidLogoutScope,
		},
		{
			name:    "empty address",
			mutate:  func(c *config.Config) { c.HTTP.Addr = "" },
			wantErr: config.ErrEmptyAddr,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.Default()
			tc.mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), tc.wantErr)
		})
	}

	t.Run("memory needs nothing else", func(t *testing.T) {
		t.Parallel()

		cfg := config.Default()
		cfg.Durable = config.FacilityConfig{Driver: config.DriverMemory}
		cfg.Session = config.FacilityConfig{Driver: config.DriverNone}
		require.NoError(t, cfg.Validate())
	})
}
