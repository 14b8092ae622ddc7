package common

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "DB_URL", "SQLITE_PATH", "STATUS_TRANSITIONS", "REDIS_ADDR", "IDEMPOTENCY_TTL", "LOG_LEVEL", "GRPC_HEALTH_ADDR"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "./boletos.db", cfg.Database.SQLitePath)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, ":3000", cfg.HTTPAddr())
	assert.Equal(t, TransitionsStrict, cfg.Bills.Transitions)
	assert.Equal(t, 24*time.Hour, cfg.Idempotency.TTL)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_URL", "postgres://u:p@localhost:5432/boletos?sslmode=disable")
	t.Setenv("DB_MAX_CONNS", "25")
	t.Setenv("DB_DIAL_TIMEOUT", "750ms")
	t.Setenv("STATUS_TRANSITIONS", "permissive")
	t.Setenv("IDEMPOTENCY_TTL", "90m")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := LoadConfig()
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, int32(25), cfg.Database.MaxConns)
	assert.Equal(t, 750*time.Millisecond, cfg.Database.DialTimeout)
	assert.Equal(t, ":8081", cfg.HTTPAddr())
	assert.Equal(t, TransitionsPermissive, cfg.Bills.Transitions)
	assert.Equal(t, 90*time.Minute, cfg.Idempotency.TTL)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("PORT", "abc")
	t.Setenv("IDEMPOTENCY_TTL", "forever")

	cfg := LoadConfig()
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 24*time.Hour, cfg.Idempotency.TTL)
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database:    DatabaseConfig{Driver: DriverSQLite, SQLitePath: ":memory:"},
			Server:      ServerConfig{Port: 3000},
			Bills:       BillsConfig{Transitions: TransitionsStrict},
			Idempotency: IdempotencyConfig{TTL: time.Hour},
		}
	}

	testCases := []struct {
		name          string
		mutate        func(c *Config)
		expectedError string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown_driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, expectedError: "unsupported DB_DRIVER"},
		{name: "postgres_without_url", mutate: func(c *Config) { c.Database.Driver = DriverPostgres }, expectedError: "DB_URL is required"},
		{name: "sqlite_without_path", mutate: func(c *Config) { c.Database.SQLitePath = "" }, expectedError: "SQLITE_PATH is required"},
		{name: "port_out_of_range", mutate: func(c *Config) { c.Server.Port = 70000 }, expectedError: "out of range"},
		{name: "unknown_transitions", mutate: func(c *Config) { c.Bills.Transitions = "loose" }, expectedError: "STATUS_TRANSITIONS"},
		{name: "zero_ttl", mutate: func(c *Config) { c.Idempotency.TTL = 0 }, expectedError: "IDEMPOTENCY_TTL"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)

			err := cfg.Validate()
			if tc.expectedError == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.expectedError)
			assert.True(t, errors.Is(err, ErrInvalidInput))

			var appErr *AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, "CONFIG_ERROR", appErr.Code)
		})
	}
}
