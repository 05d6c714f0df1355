package middlewares

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime"
)

const stackSize = 4 << 10

type recoverConfig struct {
	logger    *slog.Logger
	withStack bool
}

// RecoverOption configures Recover.
type RecoverOption func(*recoverConfig)

// WithRecoverLogger sets the logger recovered panics are reported to.
func WithRecoverLogger(l *slog.Logger) RecoverOption {
	return func(cfg *recoverConfig) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithRecoverDisablePrintStack leaves the goroutine stack out of the log record.
func WithRecoverDisablePrintStack() RecoverOption {
	return func(cfg *recoverConfig) {
		cfg.withStack = false
	}
}

// Recover converts a handler panic into a 500 JSON response and logs it
// with the request context. http.ErrAbortHandler is re-panicked so net/http
// aborts the connection as it expects.
func Recover(opts ...RecoverOption) func(http.Handler) http.Handler {
	cfg := &recoverConfig{
		logger:    slog.New(slog.DiscardHandler),
		withStack: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if err, ok := v.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(v)
				}

				pe := &PanicError{Value: v}
				attrs := []any{slog.Any("panic", v)}
				if cfg.withStack {
					buf := make([]byte, stackSize)
					pe.Stack = buf[:runtime.Stack(buf, false)]
					attrs = append(attrs, slog.String("stack", string(pe.Stack)))
				}

				cfg.logger.ErrorContext(r.Context(), "panic recovered", attrs...)
				WriteError(w, http.StatusInternalServerError, pe)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
