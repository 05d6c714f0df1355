package finboard

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/finboard/internal/config"
	"github.com/dmitrymomot/finboard/internal/dashboard"
	"github.com/dmitrymomot/finboard/middlewares"
	"github.com/dmitrymomot/finboard/pkg/health"
	"github.com/dmitrymomot/finboard/pkg/session"
	"github.com/dmitrymomot/finboard/pkg/storage"
)

// Default server timeouts.
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
)

// Health endpoint paths.
const (
	LivenessPath  = "/health/live"
	ReadinessPath = "/health/ready"
)

// App owns the storage facilities, the session store and the HTTP server of
// one finboard process. App is immutable after New.
type App struct {
	baseCtx context.Context
	logger  *slog.Logger

	// Storage
	durable     storage.Opener
	session     storage.Opener
	config      *config.Config
	facilities  *storage.Facilities
	store       *session.Store[dashboard.User]
	sessionOpts []session.Option

	// HTTP server
	server         *http.Server
	router         chi.Router
	listener       net.Listener
	listenerMu     sync.RWMutex
	requestTimeout time.Duration
	checks         health.Checks

	// connection checks of opened backends, registered once the guard accepts them
	backendChecks map[storage.Scope]health.Checks

	// Lifecycle
	shutdownTimeout time.Duration
	shutdownHooks   []func(ctx context.Context) error
	done            chan struct{}
	stopOnce        sync.Once
	closeOnce       sync.Once
	closeErr        error
}

// New resolves the storage facilities, restores the session and builds the
// router. It never fails: unusable backends are replaced by in-memory ones.
//
// Example:
//
//	app := finboard.New(
//	    finboard.WithLogger(log),
//	    finboard.WithConfig(cfg),
//	)
//	defer app.Close()
func New(opts ...Option) *App {
	router := chi.NewRouter()

	a := &App{
		baseCtx:         context.Background(),
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		router:          router,
		checks:          make(health.Checks),
		backendChecks:   make(map[storage.Scope]health.Checks),
		shutdownTimeout: 30 * time.Second,
		done:            make(chan struct{}),
		server: &http.Server{
			Addr:              ":8080",
			Handler:           router,
			ReadTimeout:       defaultReadTimeout,
			WriteTimeout:      defaultWriteTimeout,
			IdleTimeout:       defaultIdleTimeout,
			ReadHeaderTimeout: defaultReadHeaderTimeout,
			MaxHeaderBytes:    defaultMaxHeaderBytes,
		},
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.config != nil {
		if a.durable == nil {
			a.durable = a.opener(storage.ScopeDurable, a.config.Durable)
		}
		if a.session == nil {
			a.session = a.opener(storage.ScopeSession, a.config.Session)
		}
	}

	ctx := a.baseCtx
	a.facilities = storage.NewGuard(a.durable, a.session, storage.WithGuardLogger(a.logger)).Resolve(ctx)
	if !a.facilities.DurableFallback {
		maps.Copy(a.checks, a.backendChecks[storage.ScopeDurable])
	}
	if !a.facilities.SessionFallback {
		maps.Copy(a.checks, a.backendChecks[storage.ScopeSession])
	}

	a.store = session.New[dashboard.User](ctx, a.facilities.Durable, nil,
		append([]session.Option{session.WithLogger(a.logger)}, a.sessionOpts...)...,
	)

	a.logger.InfoContext(ctx, "session store ready",
		slog.String("state", a.store.State().String()),
		slog.Bool("durable_fallback", a.facilities.DurableFallback),
		slog.Bool("session_fallback", a.facilities.SessionFallback),
	)

	a.setupRoutes()

	return a
}

// setupRoutes mounts middleware, health probes and the session API.
func (a *App) setupRoutes() {
	a.router.Use(
		middlewares.RequestID(),
		middlewares.Recover(middlewares.WithRecoverLogger(a.logger)),
	)
	if a.requestTimeout > 0 {
		a.router.Use(chimw.Timeout(a.requestTimeout))
	}
	a.router.Use(middlewares.Session(a.store))

	a.checks["durable"] = storage.Healthcheck(a.facilities.Durable)
	a.checks["session"] = storage.Healthcheck(a.facilities.Session)

	a.router.Get(LivenessPath, health.LivenessHandler())
	a.router.Get(ReadinessPath, health.ReadinessHandler(a.checks, health.WithLogger(a.logger)))

	dashboard.NewHandler(a.logger).Routes(a.router)
}

// Handler returns the HTTP handler serving the dashboard API.
func (a *App) Handler() http.Handler {
	return a.router
}

// Store returns the process's session store.
func (a *App) Store() *session.Store[dashboard.User] {
	return a.store
}

// Facilities returns the storage facilities resolved by the guard.
func (a *App) Facilities() *storage.Facilities {
	return a.facilities
}

// Addr returns the server's listening address.
// Returns empty string if the server hasn't started yet.
func (a *App) Addr() string {
	a.listenerMu.RLock()
	defer a.listenerMu.RUnlock()

	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}
