package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Supported database backend identifiers.
const (
	BackendDynamoDB = "dynamodb"
	BackendMemory   = "memory"
	BackendMongoDB  = "mongodb"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// Database configuration
	DatabaseBackend string
	AWSRegion       string
	TableName       string
	IndexName       string // GSI1 - collection listing index

	// Commerce defaults
	DefaultCurrency string

	// Realtime subscriptions
	SubscriptionPollInterval time.Duration

	// Phone verification rate limiting
	VerifyMaxAttempts int
	VerifyWindow      time.Duration

	// Logging
	LogLevel string

	// Authentication
	JWTSecret string
	JWTIssuer string

	// Feature flags
	EnableCORS    bool
	EnableTracing bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),

		DatabaseBackend: getEnv("DATABASE_BACKEND", BackendDynamoDB),
		AWSRegion:       getEnv("AWS_REGION", "ap-south-1"),
		TableName:       getEnv("TABLE_NAME", "learnhub"),
		IndexName:       getEnv("INDEX_NAME", "GSI1"),

		DefaultCurrency: getEnv("DEFAULT_CURRENCY", "INR"),

		SubscriptionPollInterval: getEnvDuration("SUBSCRIPTION_POLL_INTERVAL", 5*time.Second),

		VerifyMaxAttempts: getEnvInt("VERIFY_MAX_ATTEMPTS", 5),
		VerifyWindow:      getEnvDuration("VERIFY_WINDOW", 10*time.Minute),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "learnhub-backend"),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),
		EnableTracing: getEnvBool("ENABLE_TRACING", false),
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.DatabaseBackend == "" {
		return fmt.Errorf("DATABASE_BACKEND is required")
	}
	if c.Environment == "production" {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.DatabaseBackend == BackendDynamoDB && c.TableName == "" {
			return fmt.Errorf("TABLE_NAME is required")
		}
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable with a default
// value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
