// Package logger builds the structured loggers used across finboard.
//
// It extends log/slog with context-based attribute injection and optional
// Sentry error reporting.
//
// # Basic Usage
//
//	log := logger.New(logger.Config{Format: logger.FormatJSON, Level: slog.LevelInfo}, os.Stdout,
//		middlewares.RequestIDExtractor(),
//	)
//	log.InfoContext(ctx, "session restored", slog.String("state", "authenticated"))
//	// {"level":"INFO","msg":"session restored","state":"authenticated","request_id":"..."}
//
// # Context Extractors
//
// A ContextExtractor pulls one attribute out of the context:
//
//	type ContextExtractor func(ctx context.Context) (slog.Attr, bool)
//
// Extractors run on every log call, so request-scoped values are always fresh.
// Return false to skip the attribute for that record.
//
// # Sentry Integration
//
// When Config.Sentry.DSN is set, records are sent to Sentry as well. Errors
// create Issues, warnings are stored as logs. If initialization fails the
// logger keeps writing to its primary output. Call Flush before exit.
//
// # Tests
//
// NewNope returns a logger that discards everything.
package logger
