// Package cli implements the finboard command line.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrymomot/finboard"
	"github.com/dmitrymomot/finboard/internal/config"
	"github.com/dmitrymomot/finboard/internal/dashboard"
	"github.com/dmitrymomot/finboard/middlewares"
	"github.com/dmitrymomot/finboard/pkg/logger"
	"github.com/dmitrymomot/finboard/pkg/session"
)

const usage = `usage: finboard [-config file] [-env file] <command> [flags]

commands:
  serve    run the dashboard API
  login    start a session: -id -name -email -role -token, or -user '<json>' -token
  logout   end the session and erase it from durable storage
  whoami   print the current session
`

var (
	ErrUsage          = errors.New("cli: invalid usage")
	ErrUnknownCommand = errors.New("cli: unknown command")
)

// Run executes the command in args (without the program name).
// Command output goes to stdout; logs and warnings go to stderr.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("finboard", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }

	configFile := fs.String("config", "", "YAML configuration file")
	envFile := fs.String("env", "", "dotenv file (default: ./.env when present)")
	if err := fs.Parse(args); err != nil {
		return errors.Join(ErrUsage, err)
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return ErrUsage
	}

	var envFiles []string
	if *envFile != "" {
		envFiles = append(envFiles, *envFile)
	}
	cfg, err := config.Load(*configFile, envFiles...)
	if err != nil {
		return err
	}

	log := logger.New(cfg.Log, stderr, middlewares.RequestIDExtractor())
	defer logger.Flush(2 * time.Second)

	cmd, cmdArgs := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "serve":
		app := finboard.New(finboard.WithContext(ctx), finboard.WithLogger(log), finboard.WithConfig(cfg))
		return app.Run()
	case "login", "logout", "whoami":
	default:
		fs.Usage()
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}

	app := finboard.New(finboard.WithContext(ctx), finboard.WithLogger(log), finboard.WithConfig(cfg))
	defer func() { _ = app.Close() }()

	if f := app.Facilities(); f.DurableFallback {
		fmt.Fprintf(stderr, "warning: durable storage unavailable, session will not outlive this command: %v\n", f.DurableErr)
	}

	switch cmd {
	case "login":
		return login(ctx, app.Store(), cmdArgs, stdout, stderr)
	case "logout":
		return logout(ctx, app.Store(), stdout, stderr)
	default:
		return whoami(app.Store(), cmdArgs, stdout, stderr)
	}
}

func login(ctx context.Context, store *session.Store[dashboard.User], args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var u dashboard.User
	fs.StringVar(&u.ID, "id", "", "user id")
	fs.StringVar(&u.Name, "name", "", "display name")
	fs.StringVar(&u.Email, "email", "", "email address")
	fs.StringVar(&u.Role, "role", "", "role")
	userJSON := fs.String("user", "", "user as JSON, overrides -id -name -email -role")
	token := fs.String("token", "", "access token")
	if err := fs.Parse(args); err != nil {
		return errors.Join(ErrUsage, err)
	}

	if *userJSON != "" {
		u = dashboard.User{}
		if err := json.Unmarshal([]byte(*userJSON), &u); err != nil {
			return errors.Join(ErrUsage, fmt.Errorf("-user: %w", err))
		}
	}
	if u.ID == "" {
		return errors.Join(ErrUsage, errors.New("user id is required"))
	}

	outcome, err := store.Login(ctx, u, *token)
	if err != nil {
		// Login only fails on usage faults such as a missing token.
		return errors.Join(ErrUsage, err)
	}
	warn(stderr, outcome)

	return printSnapshot(stdout, store.Snapshot(), false)
}

func logout(ctx context.Context, store *session.Store[dashboard.User], stdout, stderr io.Writer) error {
	warn(stderr, store.Logout(ctx))
	return printSnapshot(stdout, store.Snapshot(), false)
}

func whoami(store *session.Store[dashboard.User], args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("whoami", flag.ContinueOnError)
	fs.SetOutput(stderr)
	showToken := fs.Bool("show-token", false, "include the access token")
	if err := fs.Parse(args); err != nil {
		return errors.Join(ErrUsage, err)
	}

	if outcome := store.RestoreOutcome(); !outcome.OK() {
		fmt.Fprintf(stderr, "warning: stored session ignored: %v\n", outcome.Err)
	}
	return printSnapshot(stdout, store.Snapshot(), *showToken)
}

// warn reports a failed persistence step without failing the command.
func warn(w io.Writer, outcome session.Outcome) {
	if !outcome.OK() {
		fmt.Fprintf(w, "warning: %s: %v\n", outcome.Op, outcome.Err)
	}
}

func printSnapshot(w io.Writer, snap session.Snapshot[dashboard.User], showToken bool) error {
	out := struct {
		User  *dashboard.User `json:"user"`
		Token string          `json:"token,omitempty"`
		State session.State   `json:"state"`
	}{State: snap.State}

	if snap.Authenticated() {
		u := snap.Principal
		out.User = &u
		if showToken {
			out.Token = snap.Token
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("cli: write output: %w", err)
	}
	return nil
}

