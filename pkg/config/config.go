package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/propshare/exchange/pkg/postgresql"
	"github.com/propshare/exchange/pkg/redis"
)

// Config represents the application configuration.
type Config struct {
	App       AppConfig         `envPrefix:"APP_"`
	Storage   StorageConfig     `envPrefix:"STORAGE_"`
	Postgres  postgresql.Config `envPrefix:"POSTGRES_"`
	Redis     RedisConfig       `envPrefix:"REDIS_"`
	TradeFeed TradeFeedConfig   `envPrefix:"TRADE_FEED_"`
	Engine    EngineConfig      `envPrefix:"ENGINE_"`
	Fixture   FixtureConfig     `envPrefix:"FIXTURE_"`
}

// AppConfig represents the application configuration.
type AppConfig struct {
	Name        string `env:"NAME" envDefault:"exchange"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort    int    `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

// StorageConfig selects the persistence backend for orders and fills.
type StorageConfig struct {
	Driver string `env:"DRIVER" envDefault:"memory"`
}

// RedisConfig wraps the Redis client configuration with an enable switch.
// When disabled, market data snapshots are served from memory only.
type RedisConfig struct {
	Enabled bool         `env:"ENABLED" envDefault:"false"`
	Client  redis.Config `envPrefix:""`
}

// TradeFeedConfig represents the Kafka trade feed configuration.
type TradeFeedConfig struct {
	Enabled bool     `env:"ENABLED" envDefault:"false"`
	Brokers []string `env:"BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	Topic   string   `env:"TOPIC" envDefault:"trades"`
}

// EngineConfig represents the matching engine configuration.
type EngineConfig struct {
	ExpirySweepInterval time.Duration `env:"EXPIRY_SWEEP_INTERVAL" envDefault:"1m"`
}

// FixtureConfig controls demo data seeding on startup.
type FixtureConfig struct {
	Enabled bool  `env:"ENABLED" envDefault:"false"`
	Seed    int64 `env:"SEED" envDefault:"42"`
}

// Load loads the configuration from the environment.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}
