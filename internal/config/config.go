package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds runtime configuration, read from the environment with an
// optional .env file.
type Config struct {
	// Driver selects the document store backend: sqlite, postgres or memory.
	Driver string
	// DatabaseURL is the postgres connection string when Driver is postgres.
	DatabaseURL string
	// SQLitePath is the database file when Driver is sqlite.
	SQLitePath string
	// ListenAddr is the HTTP listen address for serve mode.
	ListenAddr string
	LogLevel   string
	LogFormat  string
	// OpenAIKey enables the AI entry drafting assistant when set.
	OpenAIKey string
}

// Load reads configuration from the environment. A missing .env file is fine.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		Driver:      envOr("BOOKKEEPER_DRIVER", "sqlite"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  envOr("BOOKKEEPER_DB", "bookkeeper.db"),
		ListenAddr:  envOr("BOOKKEEPER_ADDR", ":8080"),
		LogLevel:    envOr("LOG_LEVEL", "info"),
		LogFormat:   envOr("LOG_FORMAT", "console"),
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
