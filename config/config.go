package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store backends understood by db.Open
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
)

// Config is the process configuration, read from the environment
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	StoreBackend   string `env:"STORE_BACKEND" envDefault:"redis"`
	RedisAddr      string `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	RedisPassword  string `env:"REDIS_PASSWORD"`
	RedisDB        int    `env:"REDIS_DB" envDefault:"8"`
	RedisKeyPrefix string `env:"REDIS_KEY_PREFIX" envDefault:"campus:"`
	BoltPath       string `env:"BOLT_PATH" envDefault:"campus.db"`
	SQLitePath     string `env:"SQLITE_PATH" envDefault:"campus.sqlite"`

	SeedData bool `env:"SEED_DATA" envDefault:"true"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogDev   bool   `env:"LOG_DEV" envDefault:"false"`

	// How long a user-facing save/error message stays visible
	BannerTTL time.Duration `env:"BANNER_TTL" envDefault:"3s"`
	// Unsaved edits of a client idle this long are dropped
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"30m"`

	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads an optional .env file and then parses the environment
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse builds a Config from the current environment only
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with
func (c Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory, BackendRedis, BackendBolt, BackendSQLite:
	default:
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
	if c.BannerTTL < 0 {
		return fmt.Errorf("banner ttl must not be negative")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	return nil
}
