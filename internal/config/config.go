package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultReferenceTimeZone is the zone completions are bucketed into calendar days with.
// Streaks and weekly counts depend on it, so it must not silently become UTC.
const DefaultReferenceTimeZone = "America/New_York"

// Config holds application configuration
type Config struct {
	ServerPort   string
	DatabaseType string
	DatabasePath string
	DatabaseURL  string

	JWTSecret string
	TokenTTL  time.Duration
	InviteTTL time.Duration

	GoogleClientID       string
	GoogleClientSecret   string
	AppleClientID        string
	OAuthRedirectBaseURL string
	FrontendURL          string

	ReferenceTimeZone string

	R2Endpoint        string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string

	LogMode       string
	AuthRateLimit int // requests per minute per client
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is read first if present; real
// environment variables always win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:   getEnv("PORT", "8080"),
		DatabaseType: strings.ToLower(getEnv("DB_TYPE", "sqlite")),
		DatabasePath: getEnv("DB_PATH", "./kidoova.db"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),
		TokenTTL:  getDurationEnv("TOKEN_TTL", 7*24*time.Hour),
		InviteTTL: getDurationEnv("INVITE_TTL", 7*24*time.Hour),

		GoogleClientID:       getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:   getEnv("GOOGLE_CLIENT_SECRET", ""),
		AppleClientID:        getEnv("APPLE_CLIENT_ID", ""),
		OAuthRedirectBaseURL: getEnv("OAUTH_REDIRECT_BASE_URL", ""),
		FrontendURL:          strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5173"), "/"),

		ReferenceTimeZone: getEnv("REFERENCE_TIMEZONE", DefaultReferenceTimeZone),

		R2Endpoint:        getEnv("R2_ENDPOINT", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2BucketName:      getEnv("R2_BUCKET_NAME", ""),

		LogMode:       getEnv("LOG_MODE", "dev"),
		AuthRateLimit: getIntEnv("AUTH_RATE_LIMIT", 20),
	}
}

// Validate checks the settings the server cannot start without
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.DatabaseType {
	case "sqlite", "sqlite3", "postgres", "postgresql", "mysql":
	default:
		return fmt.Errorf("unsupported DB_TYPE %q", c.DatabaseType)
	}
	if c.DatabaseType != "sqlite" && c.DatabaseType != "sqlite3" && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for DB_TYPE %q", c.DatabaseType)
	}
	if _, err := time.LoadLocation(c.ReferenceTimeZone); err != nil {
		return fmt.Errorf("invalid REFERENCE_TIMEZONE: %w", err)
	}
	return nil
}

// Location returns the reference time zone. Validate must have succeeded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ReferenceTimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// MediaEnabled reports whether an upload bucket is configured
func (c *Config) MediaEnabled() bool {
	return c.R2Endpoint != "" && c.R2BucketName != ""
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
