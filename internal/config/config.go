// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	CORSOrigins     string        `env:"CORS_ORIGINS" envDefault:"*"`
}

// FirestoreConfig holds the service-account credentials for the datastore.
type FirestoreConfig struct {
	ProjectID           string `env:"FIRESTORE_PROJECT_ID"`
	ServiceAccountEmail string `env:"FIRESTORE_SA_EMAIL"`
	PrivateKeyPEM       string `env:"FIRESTORE_SA_PRIVATE_KEY"`
}

// RedisConfig holds the optional document cache settings. An empty address
// means the process-local cache is used instead.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// LogConfig holds the logging settings.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// AppConfig is the full service configuration.
type AppConfig struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      ServerConfig
	Firestore   FirestoreConfig
	Redis       RedisConfig
	Log         LogConfig
}

// Load parses the configuration from the environment and validates the
// fields the service cannot run without.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) validate() error {
	if c.Firestore.ProjectID == "" {
		return fmt.Errorf("FIRESTORE_PROJECT_ID is required")
	}
	if c.Firestore.ServiceAccountEmail == "" {
		return fmt.Errorf("FIRESTORE_SA_EMAIL is required")
	}
	if c.Firestore.PrivateKeyPEM == "" {
		return fmt.Errorf("FIRESTORE_SA_PRIVATE_KEY is required")
	}
	return nil
}

// IsProduction reports whether the service runs in a production environment.
func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}
