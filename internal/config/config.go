package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port      string
	Env       string
	StaticDir string

	// Inventory
	DataFile string

	// Completion API (Groq, OpenAI-compatible)
	CompletionAPIKey  string
	CompletionBaseURL string
	CompletionModel   string
	CompletionTimeout time.Duration

	// Redis (optional, enables hot reload)
	RedisURL      string
	ReloadChannel string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:      getEnvOrDefault("PORT", "8080"),
		Env:       getEnvOrDefault("ENV", "development"),
		StaticDir: getEnvOrDefault("STATIC_DIR", "static"),
		DataFile:  getEnvOrDefault("DATA_FILE", "rooms.json"),
		// A missing key is not fatal; the first chat request fails upstream instead.
		CompletionAPIKey:  os.Getenv("GROQ_API_KEY"),
		CompletionBaseURL: getEnvOrDefault("COMPLETION_BASE_URL", "https://api.groq.com/openai/v1"),
		CompletionModel:   getEnvOrDefault("COMPLETION_MODEL", "meta-llama/llama-4-scout-17b-16e-instruct"),
		CompletionTimeout: time.Duration(getEnvAsIntOrDefault("COMPLETION_TIMEOUT_SECONDS", 30)) * time.Second,
		RedisURL:          getEnvOrDefault("REDIS_URL", ""),
		ReloadChannel:     getEnvOrDefault("INVENTORY_RELOAD_CHANNEL", "bookify:inventory:reload"),
	}

	return cfg
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return defaultVal
	}
	return n
}
