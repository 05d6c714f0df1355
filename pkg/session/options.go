package session

import (
	"io"
	"log/slog"
)

// LogoutScope controls what Logout erases from the durable facility.
type LogoutScope int

const (
	// LogoutClearAll clears the whole durable namespace. Callers must not
	// rely on any other persisted data surviving a logout.
	LogoutClearAll LogoutScope = iota

	// LogoutKeysOnly removes only the two session keys.
	LogoutKeysOnly
)

// Option configures a Store.
type Option func(*options)

type options struct {
	logger      *slog.Logger
	logoutScope LogoutScope
}

func defaultOptions() *options {
	return &options{
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		logoutScope: LogoutClearAll,
	}
}

// WithLogger sets the logger for persistence diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithLogoutScope sets what Logout erases.
// Default: LogoutClearAll.
func WithLogoutScope(scope LogoutScope) Option {
	return func(o *options) {
		o.logoutScope = scope
	}
}
