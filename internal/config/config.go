// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/aristath/qdash/internal/version"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for the state database and local artifacts (always absolute)
	Port     int
	LogLevel string
	DevMode  bool

	// Circuit
	MaxQubits     int
	DefaultQubits int

	// Event log
	EventLogCapacity int
	UserAgent        string

	// Seed for the pseudo-random source, 0 means time based
	Seed int64

	// Timers
	MetricsInterval        time.Duration
	NetworkRefreshInterval time.Duration
	NTPSyncInterval        time.Duration
	StatusInterval         time.Duration
	MetricsHistorySize     int

	// Simulated delays
	ConnectDelay      time.Duration
	OperationDelayMin time.Duration
	OperationDelayMax time.Duration
	ExecuteDelay      time.Duration
	ScanDelay         time.Duration

	// ConnectOnStart joins the simulated network once when background work starts
	ConnectOnStart bool

	// HostStats replaces simulated CPU/memory samples with real host readings
	HostStats bool

	// ArtifactDir receives exported files when S3 is not configured
	ArtifactDir string
	S3          *S3Config
}

// S3Config holds the S3-compatible bucket used for export artifacts
type S3Config struct {
	Bucket          string
	Endpoint        string // Empty means AWS; set for R2/MinIO
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
}

// Enabled reports whether exports should go to the bucket
func (c *S3Config) Enabled() bool {
	return c != nil && c.Bucket != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("QDASH_DATA_DIR", "./data")

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:  absDataDir,
		Port:     getEnvAsInt("QDASH_PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DevMode:  getEnvAsBool("DEV_MODE", false),

		MaxQubits:     getEnvAsInt("QDASH_MAX_QUBITS", 100000),
		DefaultQubits: getEnvAsInt("QDASH_DEFAULT_QUBITS", 5),

		EventLogCapacity: getEnvAsInt("QDASH_EVENT_LOG_CAPACITY", 1000),
		UserAgent:        getEnv("QDASH_USER_AGENT", version.UserAgent()),

		Seed: getEnvAsInt64("QDASH_SEED", 0),

		MetricsInterval:        getEnvAsDuration("QDASH_METRICS_INTERVAL", time.Second),
		NetworkRefreshInterval: getEnvAsDuration("QDASH_NETWORK_REFRESH_INTERVAL", 5*time.Second),
		NTPSyncInterval:        getEnvAsDuration("QDASH_NTP_SYNC_INTERVAL", time.Hour),
		StatusInterval:         getEnvAsDuration("QDASH_STATUS_INTERVAL", 60*time.Second),
		MetricsHistorySize:     getEnvAsInt("QDASH_METRICS_HISTORY", 120),

		ConnectDelay:      getEnvAsDuration("QDASH_CONNECT_DELAY", 2*time.Second),
		OperationDelayMin: getEnvAsDuration("QDASH_OPERATION_DELAY_MIN", time.Second),
		OperationDelayMax: getEnvAsDuration("QDASH_OPERATION_DELAY_MAX", 3*time.Second),
		ExecuteDelay:      getEnvAsDuration("QDASH_EXECUTE_DELAY", 3*time.Second),
		ScanDelay:         getEnvAsDuration("QDASH_SCAN_DELAY", 3*time.Second),

		ConnectOnStart: getEnvAsBool("QDASH_CONNECT_ON_START", true),
		HostStats:      getEnvAsBool("QDASH_HOST_STATS", false),

		ArtifactDir: getEnv("QDASH_ARTIFACT_DIR", filepath.Join(absDataDir, "exports")),
		S3: &S3Config{
			Bucket:          getEnv("QDASH_S3_BUCKET", ""),
			Endpoint:        getEnv("QDASH_S3_ENDPOINT", ""),
			Region:          getEnv("QDASH_S3_REGION", "auto"),
			AccessKeyID:     getEnv("QDASH_S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("QDASH_S3_SECRET_ACCESS_KEY", ""),
			Prefix:          getEnv("QDASH_S3_PREFIX", "qdash/"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that numeric settings are usable
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.MaxQubits < 1 {
		return fmt.Errorf("max qubits must be at least 1, got %d", c.MaxQubits)
	}
	if c.DefaultQubits < 1 || c.DefaultQubits > c.MaxQubits {
		return fmt.Errorf("default qubits must be in [1, %d], got %d", c.MaxQubits, c.DefaultQubits)
	}
	if c.EventLogCapacity < 1 {
		return fmt.Errorf("event log capacity must be positive, got %d", c.EventLogCapacity)
	}
	if c.MetricsHistorySize < 1 {
		return fmt.Errorf("metrics history size must be positive, got %d", c.MetricsHistorySize)
	}
	if c.OperationDelayMax < c.OperationDelayMin {
		return fmt.Errorf("operation delay max (%s) is below min (%s)", c.OperationDelayMax, c.OperationDelayMin)
	}
	for name, d := range map[string]time.Duration{
		"metrics interval":         c.MetricsInterval,
		"network refresh interval": c.NetworkRefreshInterval,
		"ntp sync interval":        c.NTPSyncInterval,
		"status interval":          c.StatusInterval,
	} {
		if d < time.Second {
			return fmt.Errorf("%s must be at least 1s, got %s", name, d)
		}
	}
	if c.S3.Enabled() && c.S3.Region == "" {
		return fmt.Errorf("s3 region is required when a bucket is configured")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
