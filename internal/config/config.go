package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gatta/internal/cache"
	"gatta/internal/database"
	"gatta/internal/messaging"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration

	// PublicBaseURL prefixes the shareable /s/{id} links
	PublicBaseURL string
	// FeePerSeat is the flat organizing fee stamped on new pots
	FeePerSeat float64
	// TokenSecret signs organizer capability tokens
	TokenSecret string
	TokenTTL    time.Duration
	// Timezone used to format meeting times in share messages
	Timezone string

	MetricsEnabled bool

	Database database.Config
	NATS     messaging.Config
	Redis    cache.Config
}

// Load reads the configuration from environment variables. A .env file in the
// working directory is loaded first when present.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		slog.Info("Loaded environment from .env")
	}

	return &Config{
		Port:           getEnv("PORT", "8081"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,

		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:3000"),
		FeePerSeat:    getEnvFloat("FEE_PER_SEAT", 2),
		TokenSecret:   os.Getenv("ORGANIZER_TOKEN_SECRET"),
		TokenTTL:      time.Duration(getEnvInt("ORGANIZER_TOKEN_TTL_DAYS", 0)) * 24 * time.Hour,
		Timezone:      getEnv("DISPLAY_TIMEZONE", "Asia/Riyadh"),

		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "gatta"),
			Password:           getEnv("DB_PASSWORD", "gatta"),
			DBName:             getEnv("DB_NAME", "gatta"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		NATS: messaging.Config{
			Enabled:   getEnvBool("NATS_ENABLED", true),
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "gatta"),
			ClientID:  getEnv("NATS_CLIENT_ID", "gatta-api"),
		},

		Redis: cache.Config{
			Enabled:  getEnvBool("REDIS_ENABLED", true),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      time.Duration(getEnvInt("POT_CACHE_TTL_SEC", 30)) * time.Second,
		},
	}
}

// Validate checks settings that have no safe default. Release mode requires
// ORGANIZER_TOKEN_SECRET; other modes get a random secret that does not
// survive a restart.
func (c *Config) Validate() error {
	if c.TokenSecret != "" {
		return nil
	}
	if c.GinMode == "release" {
		return errors.New("ORGANIZER_TOKEN_SECRET is required in release mode")
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return err
	}
	c.TokenSecret = hex.EncodeToString(buf)
	slog.Warn("ORGANIZER_TOKEN_SECRET not set, using a random secret; organizer tokens will not survive a restart")
	return nil
}

// DisplayLocation resolves Timezone, falling back to UTC
func (c *Config) DisplayLocation() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		slog.Warn("Unknown display timezone, using UTC", "timezone", c.Timezone, "error", err)
		return time.UTC
	}
	return loc
}

// getEnv returns the variable's value or defaultValue
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
