package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/tendant/simple-crm-core/pkg/ident"
)

// Config holds application configuration.
type Config struct {
	// Server
	ServerAddr string
	ServerPort int

	// Database
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Identifier storage encoding: how IDs are written to the database.
	// Must match the column types the migrations created.
	IDEncoding ident.Encoding

	// Auth: tokens are issued by the external identity provider; we only
	// verify the signature and read the tenant claim.
	AuthJWTSecret string
	AuthJWTIssuer string

	// Rate limiting
	RateLimit RateLimitConfig

	// Limits
	MaxRequestBodySize int64
	ShutdownTimeout    time.Duration
}

// RateLimitConfig holds IP rate limiting configuration.
type RateLimitConfig struct {
	Enabled         bool
	WritesPerMinute int
	ReadsPerMinute  int
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	encoding, err := ident.ParseEncoding(getEnv("ID_ENCODING", "binary"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		// Server defaults
		ServerAddr: getEnv("SERVER_ADDR", "0.0.0.0"),
		ServerPort: getEnvInt("SERVER_PORT", 8080),

		// Database defaults
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 5432),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "simple_crm"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		IDEncoding: encoding,

		AuthJWTSecret: getEnv("AUTH_JWT_SECRET", ""),
		AuthJWTIssuer: getEnv("AUTH_JWT_ISSUER", ""),

		RateLimit: RateLimitConfig{
			Enabled:         getEnvBool("RATE_LIMIT_ENABLED", true),
			WritesPerMinute: getEnvInt("RATE_LIMIT_WRITES_PER_MINUTE", 60),
			ReadsPerMinute:  getEnvInt("RATE_LIMIT_READS_PER_MINUTE", 300),
		},

		MaxRequestBodySize: int64(getEnvInt("MAX_REQUEST_BODY_SIZE", 1<<20)),
		ShutdownTimeout:    getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}

	// Validate required fields
	if cfg.AuthJWTSecret == "" {
		return nil, fmt.Errorf("AUTH_JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
