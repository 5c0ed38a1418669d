package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port            string        `env:"PORT, default=8080"`
	Env             string        `env:"ENV, default=development"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`

	Log       LogConfig
	JWT       JWTConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Login     LoginConfig
	RateLimit RateLimitConfig
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL, default=info"`
	Pretty bool   `env:"LOG_PRETTY, default=false"`
	File   string `env:"LOG_FILE"`
}

type JWTConfig struct {
	Secret string        `env:"JWT_SECRET, required"`
	Expire time.Duration `env:"JWT_EXPIRE, default=168h"`
}

type MongoConfig struct {
	URI      string `env:"MONGODB_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGODB_DB, default=dealer-management"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// LoginConfig controls the failed-login throttle.
type LoginConfig struct {
	MaxAttempts   int           `env:"LOGIN_MAX_ATTEMPTS, default=5"`
	LockoutWindow time.Duration `env:"LOGIN_LOCKOUT_WINDOW, default=15m"`
}

// RateLimitConfig is the per-IP token bucket applied to the auth routes.
type RateLimitConfig struct {
	RPS   float64 `env:"AUTH_RATE_LIMIT_RPS, default=5"`
	Burst int     `env:"AUTH_RATE_LIMIT_BURST, default=10"`
}

// Load reads configuration from environment variables.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration from l.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}
