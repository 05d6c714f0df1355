package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/finboard/internal/cli"
	"github.com/dmitrymomot/finboard/internal/dashboard"
	"github.com/dmitrymomot/finboard/pkg/session"
)

type output struct {
	User  *dashboard.User `json:"user"`
	Token string          `json:"token"`
	State string          `json:"state"`
}

func writeConfig(t *testing.T, durableDriver string) string {
	t.Helper()

	dir := t.TempDir()
	content := fmt.Sprintf(`
log:
  level: error
durable:
  driver: %s
  sqlite:
    path: %s
session:
  driver: memory
`, durableDriver, filepath.Join(dir, "finboard.db"))

	path := filepath.Join(dir, "finboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, cfgPath string, args ...string) (output, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	envFile := filepath.Join(t.TempDir(), "empty.env")
	require.NoError(t, os.WriteFile(envFile, nil, 0o600))

	err := cli.Run(context.Background(), append([]string{"-config", cfgPath, "-env", envFile}, args...), &stdout, &stderr)

	var out output
	if err == nil {
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	}
	return out, stderr.String(), err
}

func TestRun_SessionSurvivesRestart(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t, "sqlite")

	out, _, err := run(t, cfg, "login", "-id", "u1", "-name", "Ada", "-role", "analyst", "-token", "tok-123")
	require.NoError(t, err)
	require.Equal(t, "authenticated", out.State)
	require.Equal(t, &dashboard.User{ID: "u1", Name: "Ada", Role: "analyst"}, out.User)
	require.Empty(t, out.Token, "token is hidden by default")

	out, _, err = run(t, cfg, "whoami", "-show-token")
	require.NoError(t, err)
	require.Equal(t, "authenticated", out.State)
	require.Equal(t, "tok-123", out.Token)

	out, _, err = run(t, cfg, "logout")
	require.NoError(t, err)
	require.Equal(t, "anonymous", out.State)
	require.Nil(t, out.User)

	out, _, err = run(t, cfg, "whoami")
	require.NoError(t, err)
	require.Equal(t, "anonymous", out.State)
}

func TestRun_LoginWithJSONUser(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t, "sqlite")

	out, _, err := run(t, cfg, "login", "-user", `{"id":"u2","email":"u2@example.com"}`, "-token", "tok-2")
	require.NoError(t, err)
	require.Equal(t, &dashboard.User{ID: "u2", Email: "u2@example.com"}, out.User)
}

func TestRun_WithoutDurableStorage(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t, "none")

	out, stderr, err := run(t, cfg, "login", "-id", "u1", "-token", "tok-123")
	require.NoError(t, err)
	require.Equal(t, "authenticated", out.State)
	require.Contains(t, stderr, "durable storage unavailable")

	out, _, err = run(t, cfg, "whoami")
	require.NoError(t, err)
	require.Equal(t, "anonymous", out.State)
}

func TestRun_Errors(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t, "memory")

	cases := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "no command", args: nil, wantErr: cli.ErrUsage},
		{name: "unknown command", args: []string{"reload"}, wantErr: cli.ErrUnknownCommand},
		{name: "login without id", args: []string{"login", "-token", "tok"}, wantErr: cli.ErrUsage},
		{name: "login with malformed user", args: []string{"login", "-user", "{", "-token", "tok"}, wantErr: cli.ErrUsage},
		{name: "login without token", args: []string{"login", "-id", "u1"}, wantErr: cli.ErrUsage},
		{name: "login without token keeps cause", args: []string{"login", "-id", "u1"}, wantErr: session.ErrEmptyToken},
		{name: "unknown flag", args: []string{"whoami", "-verbose"}, wantErr: cli.ErrUsage},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := run(t, cfg, tc.args...)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}
