package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates all runtime settings of the client.
type Config struct {
	AppName     string
	Environment string
	API         APIConfig
	Store       StoreConfig
	Logger      LoggerConfig
}

type APIConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
}

type StoreConfig struct {
	Path    string
	KeyPath string
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

// Load reads configuration from environment variables (optionally .env)
// and applies sane defaults so the client can run against a local backend
// out of the box.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:     getString("APP_NAME", "shopkit"),
		Environment: getString("APP_ENV", "development"),
		API: APIConfig{
			BaseURL:        getString("API_BASE_URL", "http://localhost:8080/api"),
			RequestTimeout: getDuration("API_REQUEST_TIMEOUT", 30*time.Second),
			MaxRetries:     getInt("API_MAX_RETRIES", 3),
			RetryDelay:     getDuration("API_RETRY_DELAY", time.Second),
		},
		Store: StoreConfig{
			Path:    getString("STORE_PATH", "./data/shopkit.db"),
			KeyPath: os.Getenv("STORE_KEY_PATH"),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "console"),
		},
	}

	if cfg.Store.KeyPath == "" {
		cfg.Store.KeyPath = cfg.Store.Path + ".key"
	}
	if cfg.API.MaxRetries < 0 {
		return nil, fmt.Errorf("API_MAX_RETRIES must not be negative")
	}

	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
