package logger

import "log/slog"

// Output formats.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Config selects the handler format, level and optional Sentry fan-out.
type Config struct {
	Format string       `env:"FORMAT" yaml:"format"`
	Sentry SentryConfig `envPrefix:"SENTRY_" yaml:"sentry"`
	Level  slog.Level   `env:"LEVEL" yaml:"level"`
}

// SentryConfig holds Sentry integration configuration.
type SentryConfig struct {
	DSN         string `env:"DSN" yaml:"dsn"`
	Environment string `env:"ENVIRONMENT" yaml:"environment"`
	// MinLevel determines which log levels are sent to Sentry (slog.LevelWarn for warnings and errors).
	MinLevel slog.Level `env:"MIN_LEVEL" yaml:"min_level"`
}

// DefaultConfig returns JSON output at info level without Sentry.
func DefaultConfig() Config {
	return Config{
		Format: FormatJSON,
		Level:  slog.LevelInfo,
		Sentry: SentryConfig{
			Environment: "production",
			MinLevel:    slog.LevelWarn,
		},
	}
}
