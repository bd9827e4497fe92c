package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrInvalidConfig is wrapped by every validation failure from Load.
var ErrInvalidConfig = errors.New("invalid config")

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultSQLitePath = "category.db"
)

// Config keeps runtime settings for the service.
type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	APIPrefix       string        `env:"API_PREFIX" envDefault:"/api/v1"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MigrateOnStart  bool          `env:"MIGRATE_ON_START" envDefault:"false"`

	Database Database

	OTelEndpoint    string `env:"OTEL_ENDPOINT"`
	OTelServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"category-service"`
}

// Database holds connection settings shared by the server and the migrate tool.
type Database struct {
	Driver          string        `env:"DB_DRIVER" envDefault:"postgres"`
	URL             string        `env:"DATABASE_URL"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"25"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
	LogLevel        string        `env:"DB_LOG_LEVEL" envDefault:"warn"`
}

// LoadDotEnv loads a .env file into the process environment when present.
func LoadDotEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		log.Println("WARNING: could not load .env file, relying on system environment variables")
	}
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadDatabase reads only the database settings.
func LoadDatabase() (Database, error) {
	var db Database
	if err := env.Parse(&db); err != nil {
		return db, fmt.Errorf("parse env: %w", err)
	}
	if err := db.normalize(); err != nil {
		return db, err
	}
	return db, nil
}

func (c *Config) normalize() error {
	c.APIPrefix = strings.TrimRight(strings.TrimSpace(c.APIPrefix), "/")
	if c.APIPrefix != "" && !strings.HasPrefix(c.APIPrefix, "/") {
		return fmt.Errorf("%w: API_PREFIX must start with '/', got %q", ErrInvalidConfig, c.APIPrefix)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: SHUTDOWN_TIMEOUT must be positive", ErrInvalidConfig)
	}
	return c.Database.normalize()
}

func (d *Database) normalize() error {
	d.Driver = strings.ToLower(strings.TrimSpace(d.Driver))
	d.URL = strings.TrimSpace(d.URL)
	switch d.Driver {
	case DriverPostgres:
		if d.URL == "" {
			return fmt.Errorf("%w: DATABASE_URL is required for the postgres driver", ErrInvalidConfig)
		}
	case DriverSQLite:
		if d.URL == "" {
			d.URL = defaultSQLitePath
		}
	default:
		return fmt.Errorf("%w: unsupported DB_DRIVER %q", ErrInvalidConfig, d.Driver)
	}
	switch strings.ToLower(d.LogLevel) {
	case "silent", "error", "warn", "info":
		d.LogLevel = strings.ToLower(d.LogLevel)
	default:
		return fmt.Errorf("%w: unsupported DB_LOG_LEVEL %q", ErrInvalidConfig, d.LogLevel)
	}
	return nil
}
