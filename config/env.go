package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultPort = "8080"

type DatabaseConfig struct {
	Driver   string
	User     string
	Password string
	Host     string
	Port     string
	Name     string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type Config struct {
	Port           string
	GoEnv          string
	LogLevel       string
	Database       DatabaseConfig
	RedisAddress   string
	ViewCacheTTL   time.Duration
	SkipMigrations bool
	AllowedOrigins []string
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.GoEnv, "production")
}

// Load reads the process environment, after merging a local .env file when present.
func Load() Config {
	// a missing .env is fine outside local development
	_ = godotenv.Load()

	port := strings.TrimSpace(os.Getenv("API_PORT"))
	if port == "" {
		// Cloud Run standard env var.
		port = strings.TrimSpace(os.Getenv("PORT"))
	}
	if port == "" {
		port = defaultPort
	}

	driver := strings.ToLower(strings.TrimSpace(os.Getenv("DB_DRIVER")))
	if driver == "" {
		driver = DriverMySQL
	}

	return Config{
		Port:     port,
		GoEnv:    strings.TrimSpace(os.Getenv("GO_ENV")),
		LogLevel: strings.TrimSpace(os.Getenv("LOG_LEVEL")),
		Database: DatabaseConfig{
			Driver:          driver,
			User:            os.Getenv("DB_USER"),
			Password:        os.Getenv("DB_PASSWORD"),
			Host:            os.Getenv("DB_HOST"),
			Port:            os.Getenv("DB_PORT"),
			Name:            os.Getenv("DB_NAME"),
			MaxOpenConns:    intFromEnv("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:    intFromEnv("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: time.Duration(intFromEnv("DB_CONN_MAX_LIFETIME_SECONDS", 300)) * time.Second,
			ConnMaxIdleTime: time.Duration(intFromEnv("DB_CONN_MAX_IDLE_TIME_SECONDS", 60)) * time.Second,
		},
		RedisAddress:   strings.TrimSpace(os.Getenv("REDIS_ADDRESS")),
		ViewCacheTTL:   time.Duration(intFromEnv("VIEW_CACHE_TTL_SECONDS", 120)) * time.Second,
		SkipMigrations: boolFromEnv("SKIP_MIGRATIONS"),
		AllowedOrigins: splitAndTrim(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func boolFromEnv(key string) bool {
	v := strings.TrimSpace(os.Getenv(key))
	return v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes") || strings.EqualFold(v, "on")
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
