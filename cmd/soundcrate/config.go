package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config contains application-wide settings sourced from the environment.
type Config struct {
	DatabaseURL    string
	Addr           string
	JWTSecret      string
	TokenTTL       time.Duration
	MediaDir       string
	PublicBaseURL  *url.URL
	AllowedOrigins string
	LogLevel       string
	LogFormat      string
}

func loadConfig() (Config, error) {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return Config{}, errors.New("DATABASE_URL env var is required")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return Config{}, errors.New("JWT_SECRET env var is required")
	}

	port := envOrDefault("PORT", "8080")

	base, err := url.Parse(envOrDefault("PUBLIC_BASE_URL", fmt.Sprintf("http://localhost:%s", port)))
	if err != nil {
		return Config{}, fmt.Errorf("parse PUBLIC_BASE_URL: %w", err)
	}

	ttl := 24 * time.Hour
	if raw := os.Getenv("TOKEN_TTL"); raw != "" {
		ttl, err = time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse TOKEN_TTL: %w", err)
		}
	}

	return Config{
		DatabaseURL:    dsn,
		Addr:           fmt.Sprintf(":%s", port),
		JWTSecret:      secret,
		TokenTTL:       ttl,
		MediaDir:       envOrDefault("MEDIA_DIR", "media"),
		PublicBaseURL:  base,
		AllowedOrigins: envOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		LogLevel:       envOrDefault("LOG_LEVEL", "info"),
		LogFormat:      envOrDefault("LOG_FORMAT", "json"),
	}, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
