package config

import (
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port   int    `env:"PORT" envDefault:"8080"`
		Origin string `env:"ORIGIN" envDefault:"http://localhost:3000"`
	}

	// Storage selects the persistence backend: "redis" or "memory".
	// Memory is for local development and tests only.
	Storage string `env:"STORAGE_BACKEND" envDefault:"redis"`

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Telegram struct {
		BotToken string `env:"BOT_TOKEN,required"`
		// TTL in seconds for init-data expiration checks, 0 disables
		InitDataTTLSec int `env:"INIT_DATA_TTL_SEC" envDefault:"86400"`
	}

	// ModeratorIDs are the accounts allowed to approve pending giveaways.
	ModeratorIDs []int64 `env:"MODERATOR_IDS" envSeparator:","`

	Closer struct {
		// Tick interval for the expired-giveaway sweep
		IntervalSec int `env:"CLOSER_INTERVAL_SEC" envDefault:"30"`
		// Upper bound on giveaways closed concurrently per sweep
		MaxConcurrent int `env:"CLOSER_MAX_CONCURRENT" envDefault:"8"`
	}
}

func Load() *Config {
	// Missing .env is fine: production sets variables directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		panic(err)
	}

	return cfg
}
