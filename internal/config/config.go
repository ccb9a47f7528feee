package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	StoragePort string
	AuthPort    string
	DatabaseURL string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	SecretKey   string
	SwaggerHost string
}

// Load builds Config from the environment with sensible defaults. A .env
// file in the working directory is read first if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		StoragePort: getEnv("STORAGE_PORT", "5001"),
		AuthPort:    getEnv("AUTH_PORT", "5000"),
		DatabaseURL: databaseURL(),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:     getEnvInt("REDIS_DB", 0),
		RedisPass:   os.Getenv("REDIS_PASSWORD"),
		SecretKey:   getEnv("SECRET_KEY", "change-me"),
		SwaggerHost: os.Getenv("SWAGGER_HOST"),
	}
}

// databaseURL resolves the store location. DATABASE_URL wins; otherwise
// POSTGRES_HOST plus credentials builds a Postgres URL, and the default
// is an in-memory SQLite database. POSTGRES_HOST supports the "env:NAME"
// indirection used by orchestrators that inject the host under a
// deployment-specific variable.
func databaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		return "sqlite::memory:"
	}
	if strings.HasPrefix(host, "env:") {
		host = os.Getenv(strings.TrimPrefix(host, "env:"))
	}

	return fmt.Sprintf("postgres://%s:%s@%s/%s",
		getEnv("POSTGRES_USER", "username"),
		getEnv("POSTGRES_PASSWORD", "password"),
		host,
		getEnv("POSTGRES_DATABASE", "jenca-authorisation"),
	)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}
