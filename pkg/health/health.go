package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Overall and per-check statuses.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

const defaultTimeout = 5 * time.Second

var (
	// ErrCheckFailed marks a check that panicked.
	ErrCheckFailed = errors.New("health: check failed")
	// ErrCheckTimeout marks a check that ran past the configured timeout.
	ErrCheckTimeout = errors.New("health: check timeout")
)

// CheckFunc probes one dependency. db.Healthcheck, redis.Healthcheck and
// storage.Healthcheck all return this shape.
type CheckFunc func(ctx context.Context) error

// Checks maps a check name, e.g. "durable" or "session:redis", to its probe.
type Checks map[string]CheckFunc

// Response is the JSON body of the readiness endpoint.
type Response struct {
	Checks map[string]Check `json:"checks,omitempty"`
	Status string           `json:"status"`
}

// Check is the result of one probe.
type Check struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type config struct {
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures ReadinessHandler.
type Option func(*config)

// WithTimeout bounds the whole check run. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger failed checks are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		timeout: defaultTimeout,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// runChecks probes every check concurrently under one deadline.
// Each probe writes only its own slot, so no locking is needed.
func runChecks(ctx context.Context, checks Checks, cfg *config) *Response {
	if len(checks) == 0 {
		return &Response{Status: StatusHealthy}
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	errs := make([]error, len(names))

	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			errs[i] = run(ctx, checks[name])
			return nil
		})
	}
	_ = g.Wait()

	resp := &Response{Status: StatusHealthy, Checks: make(map[string]Check, len(names))}
	for i, name := range names {
		if errs[i] == nil {
			resp.Checks[name] = Check{Status: StatusHealthy}
			continue
		}
		resp.Status = StatusUnhealthy
		resp.Checks[name] = Check{Status: StatusUnhealthy, Error: errs[i].Error()}
		cfg.logger.WarnContext(ctx, "health check failed",
			slog.String("check", name),
			slog.Any("error", errs[i]),
		)
	}

	return resp
}

// run calls check, turning a panic or an exceeded deadline into an error.
func run(ctx context.Context, check CheckFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Join(ErrCheckFailed, fmt.Errorf("panic: %v", r))
		}
	}()

	err = check(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(ErrCheckTimeout, err)
	}
	return err
}
