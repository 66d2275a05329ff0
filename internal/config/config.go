// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Store backends selectable with TODO_STORE.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config is the process configuration read once at startup.
type Config struct {
	HTTP HTTPConfig
	DB   DBConfig
	CORS CORSConfig
	Log  LogConfig
}

// HTTPConfig holds the listen port and server timeouts.
type HTTPConfig struct {
	Port string `env:"PORT" env-required:"true"`

	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	RequestTimeout  time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"30s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// Addr is the listen address for http.Server.
func (c HTTPConfig) Addr() string {
	return ":" + c.Port
}

// DBConfig selects the store and sizes the PostgreSQL pool.
type DBConfig struct {
	Store string `env:"TODO_STORE" env-default:"postgres"`

	URL     string `env:"DATABASE_URL" env-default:"postgres:///todoApp"`
	SSLMode string `env:"DB_SSL_MODE" env-default:""`

	MaxConns        int32         `env:"DB_MAX_CONNS" env-default:"10"`
	MinConns        int32         `env:"DB_MIN_CONNS" env-default:"0"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" env-default:"5m"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" env-default:"30m"`
	ConnectTimeout  time.Duration `env:"DB_CONNECT_TIMEOUT" env-default:"5s"`
}

// ConnString returns URL with sslmode overridden by SSLMode when set.
// Both URL and keyword/value connection strings are accepted.
func (c DBConfig) ConnString() (string, error) {
	if c.SSLMode == "" {
		return c.URL, nil
	}

	if strings.HasPrefix(c.URL, "postgres://") || strings.HasPrefix(c.URL, "postgresql://") {
		u, err := url.Parse(c.URL)
		if err != nil {
			return "", fmt.Errorf("parse DATABASE_URL: %w", err)
		}
		q := u.Query()
		q.Set("sslmode", c.SSLMode)
		u.RawQuery = q.Encode()
		return u.String(), nil
	}

	fields := strings.Fields(c.URL)
	kept := fields[:0]
	for _, f := range fields {
		if !strings.HasPrefix(f, "sslmode=") {
			kept = append(kept, f)
		}
	}
	kept = append(kept, "sslmode="+c.SSLMode)
	return strings.Join(kept, " "), nil
}

// CORSConfig lists the origins allowed by the CORS middleware.
type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-default:"*" env-separator:","`
}

// LogConfig sets the slog level and handler format.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" env-default:"info"`
	Format string `env:"LOG_FORMAT" env-default:"text"`
}

// SlogLevel maps Level onto slog levels.
func (c LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Level)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return lvl, nil
}

// Load reads the given .env files (or ./.env when none are named) and then
// the environment. Variables already set in the environment win over the
// files. A missing default .env is not an error.
func Load(envFiles ...string) (Config, error) {
	if err := loadDotEnv(envFiles); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadDotEnv(files []string) error {
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	}

	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("load env files %v: %w", files, err)
	}
	return nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.HTTP.Port) == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.DB.Store {
	case StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("TODO_STORE must be %q or %q, got %q", StorePostgres, StoreMemory, c.DB.Store)
	}

	if c.DB.MinConns > c.DB.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DB.MinConns, c.DB.MaxConns)
	}

	if c.DB.ConnectTimeout <= 0 {
		return fmt.Errorf("DB_CONNECT_TIMEOUT must be positive, got %s", c.DB.ConnectTimeout)
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.Log.Format)
	}

	return nil
}
