package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabaseType    string
	DatabasePath    string
	DatabaseURL     string
	SessionDuration time.Duration
	JWTSecret       string
	AWSRegion       string
	SESFromEmail    string
	SESFromName     string
	AppBaseURL      string
	LogLevel        string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DatabaseType:    getEnv("LOBOHUB_DB_TYPE", "sqlite"),
		DatabasePath:    getEnv("LOBOHUB_DB_PATH", "./lobohub.db"),
		DatabaseURL:     getEnv("LOBOHUB_DATABASE_URL", ""),
		SessionDuration: getDurationEnv("LOBOHUB_SESSION_DURATION", 30*24*time.Hour),
		JWTSecret:       getEnv("LOBOHUB_JWT_SECRET", ""),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail:    getEnv("SES_FROM_EMAIL", ""),
		SESFromName:     getEnv("SES_FROM_NAME", "LoboHub"),
		AppBaseURL:      getEnv("LOBOHUB_APP_BASE_URL", "https://lobohub.app"),
		LogLevel:        getEnv("LOBOHUB_LOG_LEVEL", "info"),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv reads a duration environment variable or returns a default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
