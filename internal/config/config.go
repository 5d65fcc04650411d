package config

import (
	"os"
)

// Backend names selected from configuration.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	Port        string
	Environment string
	// DatabaseURL selects the persistent backend when set; empty means
	// the in-process backend.
	DatabaseURL string
	// RedisURL enables snapshot persistence for the in-process backend.
	RedisURL    string
	CORSOrigins string
	TablePrefix string
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix: getTablePrefix(env),
		// Debug defaults to true outside prod
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// Backend returns the storage backend the configuration selects.
func (c *Config) Backend() string {
	if c.DatabaseURL != "" {
		return BackendPostgres
	}
	return BackendMemory
}

func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
