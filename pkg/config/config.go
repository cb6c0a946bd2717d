package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "STOREFRONT"

	StoreDriverFile     = "file"
	StoreDriverMemory   = "memory"
	StoreDriverPostgres = "postgres"
	StoreDriverRedis    = "redis"
)

type Config struct {
	App      AppConfig
	Store    StoreConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Services ServicesConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env       string `envconfig:"STOREFRONT_APP_ENV" default:"dev"`
	Port      string `envconfig:"STOREFRONT_APP_PORT" default:"8080"`
	LogLevel  string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"STOREFRONT_LOG_FORMAT" default:"json"`
}

type StoreConfig struct {
	// Driver memory does not survive restarts and is meant for local runs.
	Driver string `envconfig:"STOREFRONT_STORE_DRIVER" default:"file"`
	Key    string `envconfig:"STOREFRONT_STORE_KEY" default:"@RocketShoes:cart"`
	Dir    string `envconfig:"STOREFRONT_STORE_DIR" default:"data"`
}

type PostgresConfig struct {
	DSN string `envconfig:"STOREFRONT_POSTGRES_DSN"`
}

type RedisConfig struct {
	URL      string `envconfig:"STOREFRONT_REDIS_URL"`
	Address  string `envconfig:"STOREFRONT_REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB       int    `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
}

type ServicesConfig struct {
	StockBaseURL   string        `envconfig:"STOREFRONT_STOCK_BASE_URL" default:"http://localhost:3333"`
	CatalogBaseURL string        `envconfig:"STOREFRONT_CATALOG_BASE_URL" default:"http://localhost:3333"`
	Timeout        time.Duration `envconfig:"STOREFRONT_SERVICES_TIMEOUT" default:"5s"`
	// BreakerFailures is the number of consecutive failures that opens a
	// client circuit breaker.
	BreakerFailures uint32        `envconfig:"STOREFRONT_BREAKER_FAILURES" default:"5"`
	BreakerCooldown time.Duration `envconfig:"STOREFRONT_BREAKER_COOLDOWN" default:"30s"`
}

func (c *Config) validate() error {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))

	switch c.Store.Driver {
	case StoreDriverFile:
		if c.Store.Dir == "" {
			return fmt.Errorf("%s_STORE_DIR is required for store driver %q", EnvPrefix, c.Store.Driver)
		}
	case StoreDriverMemory:
	case StoreDriverPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("%s_POSTGRES_DSN is required for store driver %q", EnvPrefix, c.Store.Driver)
		}
	case StoreDriverRedis:
		if c.Redis.URL == "" && c.Redis.Address == "" {
			return fmt.Errorf("%s_REDIS_URL or %s_REDIS_ADDR is required for store driver %q", EnvPrefix, EnvPrefix, c.Store.Driver)
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	if c.Store.Key == "" {
		return fmt.Errorf("%s_STORE_KEY is empty", EnvPrefix)
	}
	if c.Services.Timeout <= 0 {
		return fmt.Errorf("%s_SERVICES_TIMEOUT must be positive", EnvPrefix)
	}
	return nil
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, "dev")
}
