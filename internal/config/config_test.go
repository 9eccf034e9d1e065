package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "mediascan_db",
		},
		RabbitMQ: RabbitMQConfig{
			Host:     "localhost",
			Port:     5672,
			Exchange: ExchangeConfig{Name: "scan_exchange", Type: "direct"},
			Queue:    QueueConfig{Name: "scan_jobs"},
		},
		Worker: WorkerConfig{
			Concurrency:     4,
			JobTimeout:      time.Minute,
			ShutdownTimeout: 15 * time.Second,
		},
		Limits: LimitsConfig{
			RequestsPerMinute: 60,
			RequestsPerDay:    1000,
			SessionDailyJobs:  200,
			CleanupInterval:   10 * time.Minute,
		},
	}
}

func TestLoad(t *testing.T) {
	t.Run("valid config file", func(t *testing.T) {
		cfg, err := Load("testdata/valid_config.yaml")
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, "mediascan_db", cfg.Database.Database)
		assert.Equal(t, "scan_exchange", cfg.RabbitMQ.Exchange.Name)
		assert.Equal(t, "scan_jobs", cfg.RabbitMQ.Queue.Name)
		assert.Equal(t, 10, cfg.RabbitMQ.Consumer.PrefetchCount)
		assert.Equal(t, "mediascan-api", cfg.App.Name)
		assert.Equal(t, 60, cfg.Limits.RequestsPerMinute)
		assert.Equal(t, 1000, cfg.Limits.RequestsPerDay)
		assert.Equal(t, 200, cfg.Limits.SessionDailyJobs)
		assert.Equal(t, 10*time.Minute, cfg.Limits.CleanupInterval)
	})

	t.Run("non-existent file", func(t *testing.T) {
		cfg, err := Load("testdata/nonexistent.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
		assert.Nil(t, cfg)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		cfg, err := Load("testdata/malformed.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
		assert.Nil(t, cfg)
	})
}

func TestValidateAPIConfig(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		errString string
	}{
		{"valid", func(c *Config) {}, ""},
		{"server port too low", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"server port too high", func(c *Config) { c.Server.Port = 70000 }, "invalid server port"},
		{"empty database host", func(c *Config) { c.Database.Host = "" }, "database host is required"},
		{"empty database name", func(c *Config) { c.Database.Database = "" }, "database name is required"},
		{"empty rabbitmq host", func(c *Config) { c.RabbitMQ.Host = "" }, "rabbitmq host is required"},
		{"empty exchange name", func(c *Config) { c.RabbitMQ.Exchange.Name = "" }, "rabbitmq exchange name is required"},
		{"empty queue name", func(c *Config) { c.RabbitMQ.Queue.Name = "" }, "rabbitmq queue name is required"},
		{"negative minute limit", func(c *Config) { c.Limits.RequestsPerMinute = -1 }, "requests_per_minute"},
		{"negative session limit", func(c *Config) { c.Limits.SessionDailyJobs = -1 }, "session_daily_jobs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.ValidateAPIConfig()
			if tt.errString == "" {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
			}
		})
	}
}

func TestValidateWorkerConfig(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		errString string
	}{
		{"valid", func(c *Config) {}, ""},
		{"zero concurrency", func(c *Config) { c.Worker.Concurrency = 0 }, "worker concurrency"},
		{"zero job timeout", func(c *Config) { c.Worker.JobTimeout = 0 }, "worker job_timeout"},
		{"zero shutdown timeout", func(c *Config) { c.Worker.ShutdownTimeout = 0 }, "worker shutdown_timeout"},
		{"empty database host", func(c *Config) { c.Database.Host = "" }, "database host is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.ValidateWorkerConfig()
			if tt.errString == "" {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
			}
		})
	}
}

func TestLoad_ValidateIntegration(t *testing.T) {
	t.Run("load and validate valid config", func(t *testing.T) {
		cfg, err := Load("testdata/valid_config.yaml")
		require.NoError(t, err)
		require.NoError(t, cfg.ValidateAPIConfig())
		require.NoError(t, cfg.ValidateWorkerConfig())
	})

	t.Run("load config with invalid port", func(t *testing.T) {
		cfg, err := Load("testdata/invalid_port.yaml")
		require.NoError(t, err)
		assert.ErrorContains(t, cfg.ValidateAPIConfig(), "invalid server port")
	})

	t.Run("load config with missing database", func(t *testing.T) {
		cfg, err := Load("testdata/missing_database.yaml")
		require.NoError(t, err)
		assert.ErrorContains(t, cfg.ValidateAPIConfig(), "database name is required")
	})
}
