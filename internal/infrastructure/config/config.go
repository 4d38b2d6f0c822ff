// internal/infrastructure/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// MongoDB
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string

	// PostgreSQL (airline/airport reference data)
	PostgresURI string

	// AMQP (outcome events; empty disables publishing)
	AmqpURL        string
	OutcomeQueue   string
	PublishRetry   int
	PublishBackoff time.Duration

	// Scan processing
	ProcessInterval time.Duration
	ProcessBatch    int
	Airports        []string

	// Reference year for Julian flight dates; 0 means resolve at startup.
	ReferenceYear int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	// Set defaults and override with env vars
	config := &Config{
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		MongoURI:      getEnv("MONGODB_DSN", "mongodb://localhost:27017"),
		MongoDB:       getEnv("MONGO_DB", "scantrace"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),

		PostgresURI: getEnv("POSTGRES_DSN", ""),

		AmqpURL:        getEnv("AMQP_URL", ""),
		OutcomeQueue:   getEnv("OUTCOME_QUEUE", "scan_outcomes"),
		PublishRetry:   getEnvAsInt("PUBLISH_RETRY", 3),
		PublishBackoff: time.Duration(getEnvAsInt("PUBLISH_BACKOFF_MS", 200)) * time.Millisecond,

		ProcessInterval: time.Duration(getEnvAsInt("SCAN_PROCESS_INTERVAL", 30)) * time.Second,
		ProcessBatch:    getEnvAsInt("SCAN_PROCESS_BATCH", 100),
		Airports:        splitList(getEnv("AIRPORT_CODES", "FIH")),

		ReferenceYear: getEnvAsInt("BCBP_REFERENCE_YEAR", 0),
	}

	return config, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
