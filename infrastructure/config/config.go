package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion     string
	DynamoDBTable string
	RulePrefix    string // EventBridge rule name prefix for alarm schedules
	TargetArn     string // target invoked by the scheduler at fire time
	TargetRoleArn string

	// Push gateway
	PushGatewayURL string
	PushServerKey  string

	// Home zone: wall-clock times from clients are interpreted here
	HomeTimezone string

	// Lambda configuration
	IsLambda bool

	// Logging
	LogLevel string

	// Feature flags
	EnableCORS bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		AWSRegion:     getEnv("AWS_REGION", "ap-northeast-2"),
		DynamoDBTable: getEnv("TABLE_NAME", "medicine-checks"),
		RulePrefix:    getEnv("RULE_PREFIX", "pillbox-alarm"),
		TargetArn:     getEnv("TARGET_ARN", ""),
		TargetRoleArn: getEnv("TARGET_ROLE_ARN", ""),

		PushGatewayURL: getEnv("PUSH_GATEWAY_URL", "https://fcm.googleapis.com/fcm/send"),
		PushServerKey:  getEnv("PUSH_SERVER_KEY", ""),

		HomeTimezone: getEnv("HOME_TIMEZONE", "Asia/Seoul"),

		IsLambda: getEnvBool("IS_LAMBDA", false),

		LogLevel:   getEnv("LOG_LEVEL", "info"),
		EnableCORS: getEnvBool("ENABLE_CORS", true),
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.HomeTimezone); err != nil {
		return fmt.Errorf("HOME_TIMEZONE %q is not a valid zone: %w", c.HomeTimezone, err)
	}
	if c.Environment == "production" {
		if c.DynamoDBTable == "" {
			return fmt.Errorf("TABLE_NAME is required")
		}
		if c.PushServerKey == "" {
			return fmt.Errorf("PUSH_SERVER_KEY is required in production")
		}
		if c.TargetArn == "" {
			return fmt.Errorf("TARGET_ARN is required in production")
		}
	}
	return nil
}

// HomeLocation resolves the configured home zone
func (c *Config) HomeLocation() *time.Location {
	loc, err := time.LoadLocation(c.HomeTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
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
