package finboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/finboard/internal/config"
	"github.com/dmitrymomot/finboard/pkg/health"
	"github.com/dmitrymomot/finboard/pkg/session"
	"github.com/dmitrymomot/finboard/pkg/storage"
)

// Option configures the application.
type Option func(*App)

// WithContext sets the base context used to open storage and to handle signals.
// Defaults to context.Background().
func WithContext(ctx context.Context) Option {
	return func(a *App) {
		if ctx != nil {
			a.baseCtx = ctx
		}
	}
}

// WithLogger sets the application logger.
// If nil, logging is disabled.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithConfig applies server settings, storage drivers and the logout scope
// from cfg. Openers set with WithStorage take precedence over the drivers.
func WithConfig(cfg config.Config) Option {
	return func(a *App) {
		a.config = &cfg

		WithAddress(cfg.HTTP.Addr)(a)
		WithReadHeaderTimeout(cfg.HTTP.ReadHeaderTimeout)(a)
		WithRequestTimeout(cfg.HTTP.RequestTimeout)(a)
		WithShutdownTimeout(cfg.HTTP.ShutdownTimeout)(a)

		if cfg.LogoutScope == config.LogoutKeys {
			WithSessionOptions(session.WithLogoutScope(session.LogoutKeysOnly))(a)
		}
	}
}

// WithStorage sets the host openers of the durable and session-scoped
// facilities. A nil opener declares that no backend exists for that scope.
func WithStorage(durable, sessionScoped storage.Opener) Option {
	return func(a *App) {
		a.durable = durable
		a.session = sessionScoped
	}
}

// WithSessionOptions passes options to the session store.
func WithSessionOptions(opts ...session.Option) Option {
	return func(a *App) {
		a.sessionOpts = append(a.sessionOpts, opts...)
	}
}

// WithAddress sets the HTTP server address.
// Defaults to ":8080".
func WithAddress(addr string) Option {
	return func(a *App) {
		if addr != "" {
			a.server.Addr = addr
		}
	}
}

// WithReadHeaderTimeout sets the HTTP server read header timeout.
// Defaults to 5 seconds.
func WithReadHeaderTimeout(d time.Duration) Option {
	return func(a *App) {
		if d > 0 {
			a.server.ReadHeaderTimeout = d
		}
	}
}

// WithRequestTimeout cancels request contexts after d and answers 504.
// Zero disables the timeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(a *App) {
		if d > 0 {
			a.requestTimeout = d
		}
	}
}

// WithShutdownTimeout sets the timeout for graceful shutdown.
// This applies to both the HTTP server and shutdown hooks.
// Defaults to 30 seconds.
func WithShutdownTimeout(d time.Duration) Option {
	return func(a *App) {
		if d > 0 {
			a.shutdownTimeout = d
		}
	}
}

// WithShutdownHook registers a cleanup function to run during shutdown.
// Hooks are called in the order they were registered, before the storage
// facilities are closed.
func WithShutdownHook(fn func(context.Context) error) Option {
	return func(a *App) {
		if fn != nil {
			a.shutdownHooks = append(a.shutdownHooks, fn)
		}
	}
}

// WithReadinessCheck adds a named check to the readiness probe.
// The "durable" and "session" facility checks are always present.
func WithReadinessCheck(name string, fn health.CheckFunc) Option {
	return func(a *App) {
		if name != "" && fn != nil {
			a.checks[name] = fn
		}
	}
}
