// Package config reads process settings from the environment, after loading
// an optional .env file.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	DatabaseURL  string
	ModelsConfig string
	ResourcesDir string
	CacheDir     string
	LogLevel     string
	DevLogging   bool
	MaxUploadMB  int64
}

// Load reads .env (if present) and then the environment.
func Load() Config {
	// a missing .env is normal in containers
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from environment variables alone.
func FromEnv() Config {
	return Config{
		Port:         getEnv("PORT", "8080"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		ModelsConfig: getEnv("MODELS_CONFIG", "config/models.yaml"),
		ResourcesDir: getEnv("RESOURCES_DIR", "resources"),
		CacheDir:     getEnv("CACHE_DIR", ".cache"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		DevLogging:   getEnv("LOG_FORMAT", "json") == "console",
		MaxUploadMB:  getEnvInt("MAX_UPLOAD_MB", 32),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int64) int64 {
	v, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}
