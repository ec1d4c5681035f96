package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds all runtime settings for the collaboration service.
type Config struct {
	Port          string
	RedisAddr     string
	DatabaseDSN   string
	JWTSecret     []byte
	NotesDebounce time.Duration
	RoomStaleness time.Duration
	NotesCacheTTL time.Duration
}

// loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:        getEnvOrDefault("PORT", "8080"),
		RedisAddr:   getEnvOrDefault("REDIS_ADDR", "redis:6379"),
		DatabaseDSN: os.Getenv("DATABASE_DSN"),
		JWTSecret:   []byte(getEnvOrDefault("JWT_SECRET", "your-secret-key")),
	}

	var err error
	if cfg.NotesDebounce, err = getDurationOrDefault("NOTES_DEBOUNCE", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.RoomStaleness, err = getDurationOrDefault("ROOM_STALENESS", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.NotesCacheTTL, err = getDurationOrDefault("NOTES_CACHE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
