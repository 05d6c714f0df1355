package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// probeKey is read once per facility to confirm the accessor works.
const probeKey = "__finboard_probe__"

// Facilities holds the two storage facilities resolved for one process.
type Facilities struct {
	Durable Storage
	Session Storage

	// DurableErr and SessionErr hold the reason a facility was substituted.
	DurableErr error
	SessionErr error

	// DurableFallback and SessionFallback report whether the in-memory
	// substitute replaced the host backend.
	DurableFallback bool
	SessionFallback bool
}

// Close releases every facility that holds resources.
func (f *Facilities) Close() error {
	var errs []error
	for _, s := range []Storage{f.Durable, f.Session} {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Guard resolves the durable and session-scoped facilities exactly once per
// process. A facility whose backend is missing, fails to open, or fails its
// probe is replaced by a Memory facility. Resolution never fails.
type Guard struct {
	durable    Opener
	session    Opener
	logger     *slog.Logger
	facilities *Facilities
	once       sync.Once
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithGuardLogger sets the logger used to report substitutions.
func WithGuardLogger(l *slog.Logger) GuardOption {
	return func(g *Guard) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGuard creates a Guard over the host openers for both scopes.
// Either opener may be nil when the host provides no backend.
func NewGuard(durable, session Opener, opts ...GuardOption) *Guard {
	g := &Guard{
		durable: durable,
		session: session,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Resolve opens and probes both facilities on the first call and returns the
// same Facilities on every later call.
func (g *Guard) Resolve(ctx context.Context) *Facilities {
	g.once.Do(func() {
		f := &Facilities{}
		f.Durable, f.DurableErr = g.resolve(ctx, ScopeDurable, g.durable)
		f.DurableFallback = f.DurableErr != nil
		f.Session, f.SessionErr = g.resolve(ctx, ScopeSession, g.session)
		f.SessionFallback = f.SessionErr != nil
		g.facilities = f
	})
	return g.facilities
}

// resolve returns the host backend when usable, otherwise a Memory substitute
// together with the reason.
func (g *Guard) resolve(ctx context.Context, scope Scope, open Opener) (Storage, error) {
	s, err := openAndProbe(ctx, open)
	if err == nil {
		g.logger.DebugContext(ctx, "storage facility ready", slog.String("scope", string(scope)))
		return s, nil
	}

	if c, ok := s.(io.Closer); ok {
		_ = c.Close()
	}

	g.logger.WarnContext(ctx, "storage facility unavailable, using in-memory substitute",
		slog.String("scope", string(scope)),
		slog.Any("error", err),
	)
	return NewMemory(), err
}

// openAndProbe opens the backend and checks that Get behaves.
// Panics from either step count as a broken facility.
func openAndProbe(ctx context.Context, open Opener) (s Storage, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Join(ErrUnavailable, fmt.Errorf("panic: %v", r))
		}
	}()

	if open == nil {
		return nil, errors.Join(ErrUnavailable, errors.New("no backend configured"))
	}

	s, err = open(ctx)
	if err != nil {
		return nil, errors.Join(ErrUnavailable, err)
	}
	if s == nil {
		return nil, errors.Join(ErrUnavailable, errors.New("backend is nil"))
	}

	if _, err := s.Get(ctx, probeKey); err != nil && !errors.Is(err, ErrNotFound) {
		return s, errors.Join(ErrUnavailable, err)
	}

	return s, nil
}

// Healthcheck returns a readiness check that probes s the same way the Guard does.
func Healthcheck(s Storage) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if s == nil {
			return ErrUnavailable
		}
		if _, err := s.Get(ctx, probeKey); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		return nil
	}
}
