// Package config loads finboard configuration from code defaults, an optional
// YAML file, a .env file and FINBOARD_* environment variables, in that order
// of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/finboard/pkg/db"
	"github.com/dmitrymomot/finboard/pkg/logger"
	"github.com/dmitrymomot/finboard/pkg/redis"
	"github.com/dmitrymomot/finboard/pkg/storage"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "FINBOARD_"

// Storage drivers a facility can be configured with.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverS3       = "s3"
	// DriverNone declares that the host offers no backend for the facility.
	DriverNone = "none"
)

// Logout scopes.
const (
	LogoutAll  = "all"
	LogoutKeys = "keys"
)

var drivers = []string{DriverMemory, DriverSQLite, DriverRedis, DriverPostgres, DriverS3, DriverNone}

// Config is the complete application configuration.
type Config struct {
	Log     logger.Config  `envPrefix:"LOG_" yaml:"log"`
	HTTP    HTTPConfig     `envPrefix:"HTTP_" yaml:"http"`
	Durable FacilityConfig `envPrefix:"DURABLE_" yaml:"durable"`
	Session FacilityConfig `envPrefix:"SESSION_" yaml:"session"`

	// LogoutScope is LogoutAll (clear the durable namespace) or LogoutKeys.
	LogoutScope string `env:"LOGOUT_SCOPE" yaml:"logout_scope"`
}

// HTTPConfig configures the dashboard API server.
type HTTPConfig struct {
	Addr              string        `env:"ADDR" yaml:"addr"`
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" yaml:"read_header_timeout"`
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT" yaml:"request_timeout"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" yaml:"shutdown_timeout"`
}

// FacilityConfig selects and configures the backend of one storage facility.
// Only the section matching Driver is used.
type FacilityConfig struct {
	Driver    string `env:"DRIVER" yaml:"driver"`
	Namespace string `env:"NAMESPACE" yaml:"namespace"`

	// Expiration bounds the lifetime of Redis-backed data. Zero keeps it forever.
	Expiration time.Duration `env:"EXPIRATION" yaml:"expiration"`

	SQLite   db.SQLiteConfig  `envPrefix:"SQLITE_" yaml:"sqlite"`
	Redis    redis.Config     `envPrefix:"REDIS_" yaml:"redis"`
	Postgres db.Config        `envPrefix:"POSTGRES_" yaml:"postgres"`
	S3       storage.S3Config `envPrefix:"S3_" yaml:"s3"`
}

// Default returns the configuration used when nothing else is provided:
// a SQLite durable facility next to the binary and an in-memory session facility.
func Default() Config {
	return Config{
		Log: logger.DefaultConfig(),
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 5 * time.Second,
			RequestTimeout:    30 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Durable:     defaultFacility(storage.ScopeDurable, DriverSQLite),
		Session:     defaultFacility(storage.ScopeSession, DriverMemory),
		LogoutScope: LogoutAll,
	}
}

func defaultFacility(scope storage.Scope, driver string) FacilityConfig {
	return FacilityConfig{
		Driver:    driver,
		Namespace: storage.DefaultNamespace + ":" + string(scope),
		SQLite:    db.DefaultSQLiteConfig(),
		Redis:     redis.DefaultConfig(),
		Postgres:  db.DefaultConfig(),
	}
}

// Load builds the configuration. file is an optional YAML file; envFiles are
// dotenv files loaded into the process environment without overriding
// variables that are already set. When envFiles is empty, ./.env is loaded if
// it exists.
func Load(file string, envFiles ...string) (Config, error) {
	cfg := Default()

	if file != "" {
		if err := loadYAML(file, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := loadDotenv(envFiles); err != nil {
		return Config{}, err
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, errors.Join(ErrParseEnv, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadYAML(file string, cfg *Config) error {
	f, err := os.Open(file)
	if err != nil {
		return errors.Join(ErrReadFile, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return errors.Join(ErrParseFile, fmt.Errorf("%s: %w", file, err))
	}
	return nil
}

func loadDotenv(files []string) error {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		files = []string{".env"}
	}
	if err := godotenv.Load(files...); err != nil {
		return errors.Join(ErrReadFile, err)
	}
	return nil
}

// Validate checks driver names, the logout scope and the settings the
// selected drivers require.
func (c Config) Validate() error {
	var errs []error

	for name, f := range map[string]FacilityConfig{"durable": c.Durable, "session": c.Session} {
		if err := f.validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	if c.LogoutScope != LogoutAll && c.LogoutScope != LogoutKeys {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidLogoutScope, c.LogoutScope))
	}
	if c.HTTP.Addr == "" {
		errs = append(errs, ErrEmptyAddr)
	}

	return errors.Join(errs...)
}

func (f FacilityConfig) validate() error {
	if !slices.Contains(drivers, f.Driver) {
		return fmt.Errorf("%w: %q", ErrUnknownDriver, f.Driver)
	}

	switch f.Driver {
	case DriverSQLite:
		if f.SQLite.Path == "" {
			return fmt.Errorf("%w: sqlite.path", ErrMissingSetting)
		}
	case DriverRedis:
		if f.Redis.URL == "" {
			return fmt.Errorf("%w: redis.url", ErrMissingSetting)
		}
	case DriverPostgres:
		if f.Postgres.ConnectionString == "" {
			return fmt.Errorf("%w: postgres.url", ErrMissingSetting)
		}
	case DriverS3:
		if f.S3.Bucket == "" {
			return fmt.Errorf("%w: s3.bucket", ErrMissingSetting)
		}
	}

	if f.Driver != DriverMemory && f.Driver != DriverNone && f.Namespace == "" {
		return fmt.Errorf("%w: namespace", ErrMissingSetting)
	}
	return nil
}
