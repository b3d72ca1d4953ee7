// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config captures everything cmd/server needs to wire the service.
type Config struct {
	Addr     string `env:"PASSGATE_ADDR" envDefault:":8080"`
	LogLevel string `env:"PASSGATE_LOG_LEVEL" envDefault:"info"`

	// Operator tokens for the admin catalog API are HS256 JWTs signed with
	// this key.
	JWTSigningKey string `env:"PASSGATE_JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`

	Roblox   RobloxConfig
	Verify   VerifyConfig
	Sessions SessionConfig
	Catalog  CatalogConfig
	Kafka    KafkaConfig
	Redis    RedisConfig
}

// RobloxConfig points the verification client at the platform APIs. Tests
// override the base URLs with httptest servers.
type RobloxConfig struct {
	UsersBaseURL string        `env:"PASSGATE_ROBLOX_USERS_URL" envDefault:"https://users.roblox.com"`
	APIsBaseURL  string        `env:"PASSGATE_ROBLOX_APIS_URL" envDefault:"https://apis.roblox.com"`
	Timeout      time.Duration `env:"PASSGATE_ROBLOX_TIMEOUT" envDefault:"10s"`
}

// VerifyConfig tunes the ownership-check retry loop.
type VerifyConfig struct {
	Attempts int           `env:"PASSGATE_VERIFY_ATTEMPTS" envDefault:"5"`
	Delay    time.Duration `env:"PASSGATE_VERIFY_DELAY" envDefault:"5s"`
}

// SessionConfig tunes purchase session lifetimes.
type SessionConfig struct {
	// AccountNameWait bounds the suspended wait for the buyer's account
	// name message.
	AccountNameWait time.Duration `env:"PASSGATE_ACCOUNT_NAME_WAIT" envDefault:"60s"`
	// MenuTTL bounds how long an item selection menu stays usable.
	MenuTTL time.Duration `env:"PASSGATE_MENU_TTL" envDefault:"3m"`
	// SessionTTL bounds a session's whole lifetime, terminal or not.
	SessionTTL time.Duration `env:"PASSGATE_SESSION_TTL" envDefault:"5m"`
	// ReapInterval is how often expired sessions and menus are collected.
	ReapInterval time.Duration `env:"PASSGATE_REAP_INTERVAL" envDefault:"30s"`
}

// CatalogConfig selects the catalog store backend.
type CatalogConfig struct {
	// Backend is one of memory, postgres, redis.
	Backend     string `env:"PASSGATE_CATALOG_BACKEND" envDefault:"memory"`
	PostgresDSN string `env:"PASSGATE_CATALOG_POSTGRES_DSN"`
}

// KafkaConfig enables the purchase event publisher when brokers are set.
type KafkaConfig struct {
	Brokers []string `env:"PASSGATE_KAFKA_BROKERS"`
	Topic   string   `env:"PASSGATE_KAFKA_TOPIC" envDefault:"passgate.purchases"`
}

// RedisConfig configures the optional redis-backed catalog store.
type RedisConfig struct {
	URL          string        `env:"PASSGATE_REDIS_URL"`
	PoolSize     int           `env:"PASSGATE_REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"PASSGATE_REDIS_MIN_IDLE" envDefault:"2"`
	DialTimeout  time.Duration `env:"PASSGATE_REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"PASSGATE_REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"PASSGATE_REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
