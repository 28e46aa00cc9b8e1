package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"tabml/domain/training"
	"tabml/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Training  TrainingConfig
	Database  DatabaseConfig
	Profiling ProfilingConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string
	APIPort         string
	GinMode         string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

// StorageConfig holds the dataset storage area
type StorageConfig struct {
	UploadDir     string
	MaxUploadSize int64 // bytes
}

// TrainingConfig holds pipeline policies
type TrainingConfig struct {
	ScalerFitScope       training.ScalerFitScope
	LogisticTargetPolicy training.LogisticTargetPolicy
	MaxIterations        int
	PartitionSeed        int64
}

// DatabaseConfig holds database connection settings; an empty URL disables accounts
type DatabaseConfig struct {
	URL string
}

// Enabled reports whether a database is configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:    *loadServerConfig(),
		Storage:   *loadStorageConfig(),
		Training:  *loadTrainingConfig(),
		Database:  DatabaseConfig{URL: os.Getenv("DATABASE_URL")},
		Profiling: *loadProfilingConfig(),
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:            getEnvOrDefault("PORT", "5000"),
		APIPort:         getEnvOrDefault("API_PORT", "5001"),
		GinMode:         getEnvOrDefault("GIN_MODE", "debug"),
		AllowedOrigins:  splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),
		ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func loadStorageConfig() *StorageConfig {
	return &StorageConfig{
		UploadDir:     getEnvOrDefault("UPLOAD_FOLDER", "uploads"),
		MaxUploadSize: int64(getEnvIntOrDefault("MAX_UPLOAD_MB", 32)) << 20,
	}
}

func loadTrainingConfig() *TrainingConfig {
	return &TrainingConfig{
		ScalerFitScope:       training.ScalerFitScope(getEnvOrDefault("SCALER_FIT_SCOPE", string(training.ScalerFitFull))),
		LogisticTargetPolicy: training.LogisticTargetPolicy(getEnvOrDefault("LOGISTIC_TARGET_POLICY", string(training.LogisticPermissive))),
		MaxIterations:        getEnvIntOrDefault("MAX_ITERATIONS", 1000),
		PartitionSeed:        int64(getEnvIntOrDefault("PARTITION_SEED", 42)),
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

// Default returns the configuration used when no environment is set
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "5000",
			APIPort:         "5001",
			GinMode:         "debug",
			AllowedOrigins:  []string{"*"},
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			UploadDir:     "uploads",
			MaxUploadSize: 32 << 20,
		},
		Training: TrainingConfig{
			ScalerFitScope:       training.ScalerFitFull,
			LogisticTargetPolicy: training.LogisticPermissive,
			MaxIterations:        1000,
			PartitionSeed:        42,
		},
		Profiling: ProfilingConfig{Port: "6060"},
	}
}

// Validate checks policy values and required fields
func (c *Config) Validate() error {
	if c.Storage.UploadDir == "" {
		return errors.ConfigInvalid("upload folder is required")
	}
	if c.Storage.MaxUploadSize <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	switch c.Training.ScalerFitScope {
	case training.ScalerFitFull, training.ScalerFitTrain:
	default:
		return errors.ConfigInvalid("SCALER_FIT_SCOPE must be 'full' or 'train', got '" + string(c.Training.ScalerFitScope) + "'")
	}
	switch c.Training.LogisticTargetPolicy {
	case training.LogisticPermissive, training.LogisticStrict:
	default:
		return errors.ConfigInvalid("LOGISTIC_TARGET_POLICY must be 'permissive' or 'strict', got '" + string(c.Training.LogisticTargetPolicy) + "'")
	}
	if c.Training.MaxIterations <= 0 {
		return errors.ConfigInvalid("MAX_ITERATIONS must be positive")
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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
