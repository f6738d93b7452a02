// Package config loads application configuration from environment
// variables.  A .env file in the working directory is read first when
// present; real environment variables win over it.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreMySQL  = "mysql"
	StoreMemory = "memory"
)

// Config holds all runtime configuration values.
type Config struct {
	Env         string `env:"APP_ENV" envDefault:"dev"`
	Port        string `env:"APP_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	StoreDriver string `env:"STORE_DRIVER" envDefault:"mysql"`

	DB DBConfig

	// JWTSecret enables bearer tokens as identity source when non-empty.
	JWTSecret      string        `env:"JWT_SECRET"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`

	Redis     RedisConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Notify    NotifyConfig
	Demo      DemoConfig
}

// DBConfig describes the MySQL connection.
type DBConfig struct {
	User        string `env:"DB_USER" envDefault:"root"`
	Pass        string `env:"DB_PASS"`
	Host        string `env:"DB_HOST" envDefault:"localhost"`
	Port        string `env:"DB_PORT" envDefault:"3306"`
	Name        string `env:"DB_NAME" envDefault:"vitrii"`
	AutoMigrate bool   `env:"DB_AUTO_MIGRATE" envDefault:"false"`
}

// NotifyConfig controls decision notifications over RabbitMQ.  An empty
// URL disables publishing.
type NotifyConfig struct {
	RabbitMQURL     string `env:"RABBITMQ_URL"`
	Queue           string `env:"NOTIFY_QUEUE" envDefault:"agenda.waitlist.decision"`
	RunConsumer     bool   `env:"NOTIFY_CONSUMER" envDefault:"false"`
	ConsumerLogFile string `env:"NOTIFY_LOG_FILE" envDefault:"logs/decisions.log"`
}

// DemoConfig names the advertiser provisioned by the memory driver at
// startup and by `migrate -seed`.  A zero user id disables provisioning.
type DemoConfig struct {
	AdvertiserUserID uint64 `env:"DEMO_ADVERTISER_USER_ID" envDefault:"1"`
	AdvertiserName   string `env:"DEMO_ADVERTISER_NAME" envDefault:"Anunciante Demo"`
}

// Load reads .env (if any) and the environment into a Config.
func Load() (Config, error) {
	_ = godotenv.Load() // .env is optional; production sets variables directly

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	if cfg.StoreDriver != StoreMySQL && cfg.StoreDriver != StoreMemory {
		return Config{}, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreMySQL, StoreMemory, cfg.StoreDriver)
	}
	cfg.RateLimit.normalize()
	return cfg, nil
}

// IsDev reports whether the service runs in a development environment.
func (c Config) IsDev() bool {
	return c.Env == "" || c.Env == "dev" || c.Env == "development"
}
