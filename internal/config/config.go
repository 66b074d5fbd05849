// Package config loads the portal's configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const defaultAuthHubURL = "https://auth.atap.solar"

// Config holds everything the server needs at startup. DatabaseURL points
// at the shared CRM database; JWTSecret is the HMAC secret shared with the
// auth hub.
type Config struct {
	DatabaseURL string
	JWTSecret   string
	AuthHubURL  string
	AppBaseURL  string
	Port        int
}

// Load reads .env (if present) and the environment. DATABASE_URL and
// JWT_SECRET are required; everything else has a default.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug(".env not loaded", "error", err)
	}

	cfg := Config{
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:   strings.TrimSpace(os.Getenv("JWT_SECRET")),
		AuthHubURL:  getEnvOrDefault("AUTH_HUB_URL", defaultAuthHubURL),
		AppBaseURL:  strings.TrimSpace(os.Getenv("APP_BASE_URL")),
		Port:        getIntEnv("PORT", 8080),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}
