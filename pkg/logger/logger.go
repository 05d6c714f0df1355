package logger

import (
	"io"
	"log/slog"
	"os"
)

// New creates a logger writing to w (stdout when nil) in the configured format.
// Context extractors are applied to every record. When cfg.Sentry.DSN is set,
// records are also sent to Sentry.
func New(cfg Config, w io.Writer, extractors ...ContextExtractor) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}

	handler := newHandler(cfg, w)
	if cfg.Sentry.DSN != "" {
		if sentryHandler, err := newSentryHandler(cfg.Sentry); err != nil {
			slog.New(handler).Error("failed to initialize Sentry", slog.Any("error", err))
		} else {
			handler = fanout{handler, sentryHandler}
		}
	}

	return slog.New(withExtractors(handler, extractors))
}

func newHandler(cfg Config, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: cfg.Level}
	if cfg.Format == FormatText {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// NewNope returns a logger that discards all output. Components fall back to
// it when no logger is configured.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
