package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/opencourt/matchday/storage"
)

// Config holds every runtime setting of the service.
type Config struct {
	DatabaseURL     string
	ServerPort      int
	LiveSendTimeout time.Duration

	// R2 is optional; when incomplete, logo uploads are disabled.
	R2 storage.CloudflareR2Config
}

// R2Configured reports whether all R2 settings are present.
func (c *Config) R2Configured() bool {
	r2 := c.R2
	return r2.AccountID != "" && r2.AccessKeyID != "" && r2.SecretAccessKey != "" &&
		r2.BucketName != "" && r2.PublicBaseURL != ""
}

// Load reads the configuration from the environment, optionally seeded
// from a .env file for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	sendTimeout := 100 * time.Millisecond
	if raw := os.Getenv("LIVE_SEND_TIMEOUT"); raw != "" {
		sendTimeout, err = time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid LIVE_SEND_TIMEOUT environment variable: %w", err)
		}
		if sendTimeout <= 0 {
			return nil, fmt.Errorf("LIVE_SEND_TIMEOUT must be positive, got %s", sendTimeout)
		}
	}

	return &Config{
		DatabaseURL:     dbURL,
		ServerPort:      port,
		LiveSendTimeout: sendTimeout,
		R2: storage.CloudflareR2Config{
			AccountID:       os.Getenv("R2_ACCOUNT_ID"),
			AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
			BucketName:      os.Getenv("R2_BUCKET_NAME"),
			PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
		},
	}, nil
}
