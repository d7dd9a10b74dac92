package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/muhammadchandra19/tick-extractor/internal/lifecycle"
	"github.com/muhammadchandra19/tick-extractor/internal/sink/kafka"
	"github.com/muhammadchandra19/tick-extractor/pkg/questdb"
)

// Config represents the application configuration.
type Config struct {
	App       AppConfig        `envPrefix:"APP_"`
	Extractor ExtractorConfig  `envPrefix:"EXTRACTOR_"`
	QuestDB   questdb.Config   `envPrefix:"QUESTDB_"`
	Kafka     kafka.Config     `envPrefix:"KAFKA_"`
	Redis     RedisConfig      `envPrefix:"REDIS_"`
	Lifecycle lifecycle.Config `envPrefix:"LIFECYCLE_"`
}

// AppConfig represents the application configuration.
type AppConfig struct {
	Name        string `env:"NAME" envDefault:"tick-extractor"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

// ExtractorConfig controls batch dispatch and the worker fleet.
type ExtractorConfig struct {
	RoutingFile     string `env:"ROUTING_FILE" envDefault:"routing.yaml"`
	CredentialsFile string `env:"CREDENTIALS_FILE" envDefault:"credentials.yaml"`
	Mode            string `env:"MODE" envDefault:"demo"`
	MaxConcurrency  int    `env:"MAX_CONCURRENCY" envDefault:"8"`
	RequestTimeout  int    `env:"REQUEST_TIMEOUT_SECONDS" envDefault:"120"`
	CheckConnection bool   `env:"CHECK_CONNECTION" envDefault:"true"`
}

// RedisConfig represents the worker registry store configuration.
type RedisConfig struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB" envDefault:"0"`
	HashKey  string `env:"HASH_KEY" envDefault:"tick-extractor:workers"`
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
