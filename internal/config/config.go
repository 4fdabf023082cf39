package config

import (
	"os"
	"strconv"

	"github.com/VruddithShetty/TrialEquity/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Model    ModelConfig
	Database DatabaseConfig
	Policy   PolicyConfig
	Training TrainingConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// ModelConfig holds model artifact settings
type ModelConfig struct {
	Dir         string
	TrainOnBoot bool
}

// DatabaseConfig holds database connection settings. The URL is optional:
// without it assessments are returned to the caller but not persisted for
// audit queries.
type DatabaseConfig struct {
	URL string
}

// PolicyConfig holds the decision policy source
type PolicyConfig struct {
	File string
}

// TrainingConfig holds training defaults
type TrainingConfig struct {
	Cohorts int
	Seed    int64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		Model: ModelConfig{
			Dir:         getEnvOrDefault("MODEL_DIR", "./models"),
			TrainOnBoot: getEnvBoolOrDefault("TRAIN_ON_BOOT", true),
		},
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
		Policy: PolicyConfig{
			File: getEnvOrDefault("POLICY_FILE", ""),
		},
		Training: TrainingConfig{
			Cohorts: getEnvIntOrDefault("TRAINING_COHORTS", 2000),
			Seed:    getEnvInt64OrDefault("TRAINING_SEED", 42),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Model.Dir == "" {
		return errors.ConfigInvalid("model directory is required")
	}
	if config.Training.Cohorts <= 0 {
		return errors.ConfigInvalid("training cohort count must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
