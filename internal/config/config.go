package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Authentication configuration
	Auth AuthConfig

	// Image storage configuration
	Storage StorageConfig

	// Orphan sweep configuration
	Sweep SweepConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration

	// MigrationsPath is the golang-migrate file source for Postgres
	MigrationsPath string

	// SQLiteFallbackPath, when set, enables the embedded SQLite fallback
	// used if Postgres is unreachable at startup
	SQLiteFallbackPath string

	// Reconnect policy for the primary store
	ReconnectInterval    time.Duration
	ReconnectMaxAttempts int // 0 means retry forever
}

// AuthConfig holds session token and password hashing settings
type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

// StorageConfig holds image storage settings
type StorageConfig struct {
	Backend       string // "local" or "minio"
	LocalDir      string
	MaxUploadSize int64 // in bytes
	MinIO         MinIOConfig
}

// MinIOConfig holds object storage settings for the MinIO backend
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
}

// SweepConfig holds orphaned-image sweep settings
type SweepConfig struct {
	// TriggerDelay is how long a post mutation waits before the sweep runs,
	// giving the triggering write time to commit
	TriggerDelay time.Duration

	// Interval is the recurring safety-net sweep period
	Interval time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:                 getEnv("DB_HOST", "localhost"),
			Port:                 getEnv("DB_PORT", "5432"),
			User:                 getEnv("DB_USER", "postgres"),
			Password:             getEnv("DB_PASSWORD", "postgres"),
			Name:                 getEnv("DB_NAME", "church_content"),
			SSLMode:              getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:         getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:         getIntEnv("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:          getDurationEnv("DB_MAX_LIFETIME", 5*time.Minute),
			MigrationsPath:       getEnv("MIGRATIONS_PATH", "./migrations"),
			SQLiteFallbackPath:   getEnv("SQLITE_FALLBACK_PATH", ""),
			ReconnectInterval:    getDurationEnv("DB_RECONNECT_INTERVAL", 15*time.Second),
			ReconnectMaxAttempts: getIntEnv("DB_RECONNECT_MAX_ATTEMPTS", 0),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", ""),
			TokenTTL:   getDurationEnv("TOKEN_TTL", 720*time.Hour), // 30 days
			BcryptCost: getIntEnv("BCRYPT_COST", 10),
		},
		Storage: StorageConfig{
			Backend:       getEnv("STORAGE_BACKEND", "local"),
			LocalDir:      getEnv("STORAGE_LOCAL_DIR", "./data/images"),
			MaxUploadSize: getInt64Env("MAX_UPLOAD_SIZE", 5*1024*1024), // 5 MiB
			MinIO: MinIOConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", ""),
				AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
				SecretKey: getEnv("MINIO_SECRET_KEY", ""),
				Bucket:    getEnv("MINIO_BUCKET", "images"),
				UseSSL:    getBoolEnv("MINIO_USE_SSL", false),
				Region:    getEnv("MINIO_REGION", "us-east-1"),
			},
		},
		Sweep: SweepConfig{
			TriggerDelay: getDurationEnv("SWEEP_TRIGGER_DELAY", 10*time.Second),
			Interval:     getDurationEnv("SWEEP_INTERVAL", time.Hour),
		},
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	switch c.Storage.Backend {
	case "local":
		if c.Storage.LocalDir == "" {
			return fmt.Errorf("STORAGE_LOCAL_DIR is required for the local backend")
		}
	case "minio":
		if c.Storage.MinIO.Endpoint == "" {
			return fmt.Errorf("MINIO_ENDPOINT is required for the minio backend")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be 'local' or 'minio', got %q", c.Storage.Backend)
	}
	if c.Storage.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive")
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
