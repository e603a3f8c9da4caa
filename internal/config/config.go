package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DatabaseURL string

	// Kafka
	KafkaBrokers string

	// Remote commerce platform
	WooBaseURL        string
	WooConsumerKey    string
	WooConsumerSecret string
	WooTimeoutSeconds int

	// API Configuration
	APIPort string
	APIHost string

	// Environment
	Env      string
	LogLevel string
}

func Load() (*Config, error) {
	// Load .env file
	godotenv.Load()

	return &Config{
		DatabaseURL:       getEnv("DATABASE_URL", "sqlite://mirror.db"),
		KafkaBrokers:      getEnv("KAFKA_BROKERS", "localhost:9092"),
		WooBaseURL:        getEnv("WOO_BASE_URL", ""),
		WooConsumerKey:    getEnv("WOO_CONSUMER_KEY", ""),
		WooConsumerSecret: getEnv("WOO_CONSUMER_SECRET", ""),
		WooTimeoutSeconds: getEnvAsInt("WOO_TIMEOUT_SECONDS", 30),
		APIPort:           getEnv("API_PORT", "8080"),
		APIHost:           getEnv("API_HOST", "0.0.0.0"),
		Env:               getEnv("ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
