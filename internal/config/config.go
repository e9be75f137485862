package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds the server configuration, read from the environment
// (optionally seeded from a .env file). Command-line flags override these.
type Config struct {
	DBPath    string
	Addr      string
	AdminUser string
	LogPath   string
}

// Load reads environment variables, optionally from the provided env file,
// and materializes a Config with defaults applied.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine; configuration may come from the
		// environment directly.
		_ = godotenv.Load()
	}

	// An unset or empty variable falls back to its default, so every field
	// below is always populated.
	return &Config{
		DBPath:    getenvWithDefault("INVENTAR_DB", "inventar.sqlite3"),
		Addr:      getenvWithDefault("INVENTAR_ADDR", ":8080"),
		AdminUser: getenvWithDefault("INVENTAR_ADMIN_USER", "Admin"),
		LogPath:   os.Getenv("INVENTAR_LOG"),
	}, nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
