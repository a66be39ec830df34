// Package config loads the service configuration from YAML and environment variables.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Supported store drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is the root configuration of the service.
// Sources are tried in this order:
//  1. an explicit path passed to Load/MustLoad;
//  2. the CONFIG_PATH environment variable;
//  3. ./local.yaml in the working directory;
//  4. environment variables only.
//
// Environment variables always override values read from a file.
type Config struct {
	Env       string          `yaml:"env" env:"ENV" env-default:"local"`
	HTTP      HTTPConfig      `yaml:"http"`
	Store     StoreConfig     `yaml:"store"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// HTTPConfig holds the HTTP server settings.
type HTTPConfig struct {
	Host              string        `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port              string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env:"HTTP_READ_HEADER_TIMEOUT" env-default:"5s"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
	// Empty disables CORS; "*" allows every origin.
	CORSOrigins []string `yaml:"cors_origins" env:"CORS_ORIGINS" env-separator:","`
	// MetricsDisabled turns off the /metrics endpoint and request instrumentation.
	MetricsDisabled bool `yaml:"metrics_disabled" env:"METRICS_DISABLED"`
}

// Addr returns the listen address in host:port form.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// StoreConfig selects and configures the document store.
type StoreConfig struct {
	Driver   string `yaml:"driver" env:"STORE_DRIVER" env-default:"mongo"`
	MongoURL string `yaml:"mongo_url" env:"MONGO_URL" env-default:"mongodb://localhost:27017/users"`
	// DSN is used by the postgres and sqlite drivers.
	DSN            string        `yaml:"dsn" env:"DATABASE_DSN"`
	// SkipMigrations leaves the SQL schema untouched at startup.
	SkipMigrations bool          `yaml:"skip_migrations" env:"SKIP_MIGRATIONS"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"STORE_CONNECT_TIMEOUT" env-default:"60s"`
}

// RedisConfig configures the optional read-through cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"REDIS_ADDR"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	TTL      time.Duration `yaml:"ttl" env:"CACHE_TTL" env-default:"5m"`
}

// RateLimitConfig configures the per-client rate limiter. RPS of 0 disables it.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps" env:"RATE_LIMIT_RPS" env-default:"0"`
	Burst int     `yaml:"burst" env:"RATE_LIMIT_BURST" env-default:"20"`
}

// Enabled reports whether requests should be rate limited.
func (r RateLimitConfig) Enabled() bool {
	return r.RPS > 0
}

// MustLoad is like Load but panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads the configuration using the priority documented on Config and validates it.
func Load(path string) (*Config, error) {
	var cfg Config

	readFile := func(p string) error {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("config file %q stat failed: %w", p, err)
		}
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return fmt.Errorf("failed to read config %q: %w", p, err)
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return fmt.Errorf("failed to overlay env: %w", err)
		}
		return nil
	}

	switch {
	case path != "":
		if err := readFile(path); err != nil {
			return nil, err
		}
	case os.Getenv("CONFIG_PATH") != "":
		if err := readFile(os.Getenv("CONFIG_PATH")); err != nil {
			return nil, err
		}
	case fileExists("local.yaml"):
		if err := readFile("local.yaml"); err != nil {
			return nil, err
		}
	default:
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read env: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

func (c *Config) validate() error {
	switch c.Env {
	case "local", "dev", "prod":
	default:
		return fmt.Errorf("env must be one of local, dev, prod (got %q)", c.Env)
	}

	if c.HTTP.Port == "" {
		return fmt.Errorf("http.port is required")
	}

	switch c.Store.Driver {
	case DriverMongo:
		if c.Store.MongoURL == "" {
			return fmt.Errorf("store.mongo_url is required for the %s driver", DriverMongo)
		}
	case DriverPostgres, DriverSQLite:
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for the %s driver", c.Store.Driver)
		}
	default:
		return fmt.Errorf("store.driver must be one of %s, %s, %s (got %q)",
			DriverMongo, DriverPostgres, DriverSQLite, c.Store.Driver)
	}

	if c.Store.ConnectTimeout <= 0 {
		return fmt.Errorf("store.connect_timeout must be > 0")
	}

	if c.Redis.Addr != "" && c.Redis.TTL <= 0 {
		return fmt.Errorf("redis.ttl must be > 0 when redis is enabled")
	}

	if c.RateLimit.RPS < 0 {
		return fmt.Errorf("rate_limit.rps must be >= 0")
	}
	if c.RateLimit.Enabled() && c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate_limit.burst must be > 0 when rate limiting is enabled")
	}

	return nil
}
