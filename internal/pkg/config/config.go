// Package config loads process configuration from the environment,
// following the teacher's getEnvOrDefault pattern.
package config

import (
	"fmt"
	"os"
	"time"
)

// PostgresConfig holds the connection parameters for the snapshot store.
type PostgresConfig struct {
	Host     string
	Port     string
	DB       string
	Username string
	Password string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// CacheConfig holds the jittered-TTL cache parameters. The cache package
// does not read these values; it uses its own BaseTTL and JitterRange
// constants.
type CacheConfig struct {
	BaseTTL     time.Duration
	JitterRange time.Duration
}

// Config is the full process configuration, loaded once at startup.
type Config struct {
	Postgres   PostgresConfig
	Cache      CacheConfig
	ServerPort string
}

// Load reads configuration from the environment, applying the same
// defaults a local docker-compose setup would provide.
func Load() (*Config, error) {
	cfg := &Config{
		Postgres: PostgresConfig{
			Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
			Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
			DB:       getEnvOrDefault("POSTGRES_DB", "claremont_dine"),
			Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
			Password: getEnvOrDefault("POSTGRES_PASSWORD", ""),
			SSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
			MaxConns: 10,
			MinConns: 2,
		},
		Cache: CacheConfig{
			BaseTTL:     1800 * time.Second,
			JitterRange: 300 * time.Second,
		},
		ServerPort: getEnvOrDefault("SERVER_PORT", "8080"),
	}

	if cfg.Postgres.Password == "" {
		return nil, fmt.Errorf("POSTGRES_PASSWORD environment variable is required")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
