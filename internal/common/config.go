package common

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Supported store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Status transition policies for updates.
const (
	TransitionsStrict     = "strict"
	TransitionsPermissive = "permissive"
)

// Config holds all application configuration
type Config struct {
	Database    DatabaseConfig
	Server      ServerConfig
	Bills       BillsConfig
	Idempotency IdempotencyConfig
	Log         LogConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string
	DSN              string
	SQLitePath       string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            int
	GRPCHealthAddr  string
	GinMode         string
	ShutdownTimeout time.Duration
}

// BillsConfig holds the bill lifecycle policy.
type BillsConfig struct {
	Transitions string
}

// IdempotencyConfig selects the replay cache backend.
type IdempotencyConfig struct {
	RedisAddr string
	TTL       time.Duration
}

type LogConfig struct {
	Level string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:           strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
			DSN:              getEnv("DB_URL", ""),
			SQLitePath:       getEnv("SQLITE_PATH", "./boletos.db"),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			Port:            getEnvAsInt("PORT", 3000),
			GRPCHealthAddr:  getEnv("GRPC_HEALTH_ADDR", ""),
			GinMode:         getEnv("GIN_MODE", "release"),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Bills: BillsConfig{
			Transitions: strings.ToLower(getEnv("STATUS_TRANSITIONS", TransitionsStrict)),
		},
		Idempotency: IdempotencyConfig{
			RedisAddr: getEnv("REDIS_ADDR", ""),
			TTL:       getEnvAsDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}
}

// Helper functions for environment variable parsing
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

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// HTTPAddr is the listen address for the HTTP API.
func (c *Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// SlogLevel converts the configured level name, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return NewAppError("CONFIG_ERROR", "SQLITE_PATH is required for the sqlite driver", ErrInvalidInput)
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return NewAppError("CONFIG_ERROR", "DB_URL is required for the postgres driver", ErrInvalidInput)
		}
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("unsupported DB_DRIVER %q", c.Database.Driver), ErrInvalidInput)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("PORT %d out of range", c.Server.Port), ErrInvalidInput)
	}
	if c.Bills.Transitions != TransitionsStrict && c.Bills.Transitions != TransitionsPermissive {
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("unsupported STATUS_TRANSITIONS %q", c.Bills.Transitions), ErrInvalidInput)
	}
	if c.Idempotency.TTL <= 0 {
		return NewAppError("CONFIG_ERROR", "IDEMPOTENCY_TTL must be positive", ErrInvalidInput)
	}
	return nil
}
