package config

import (
	"testing"

	"HydroWatchAPI/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()

	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_USER", "hydro_admin")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "hydro_watch")
}

func TestLoad(t *testing.T) {
	t.Run("missing required variables fail fast", func(t *testing.T) {
		t.Setenv("DB_HOST", "")
		t.Setenv("DB_PASSWORD", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DB_HOST")
	})

	t.Run("defaults apply when optional variables are unset", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, "0.0.0.0", cfg.Server.Host)
		assert.Equal(t, "hydro/sensors/readings", cfg.MQTT.ReadingsTopic)
		assert.Equal(t, "hydro/alerts", cfg.MQTT.AlertsTopic)
		assert.Equal(t, logger.INFO, cfg.Logging.Level)
		assert.True(t, cfg.Security.EnableRateLimit)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SERVER_PORT", "9100")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("MQTT_QOS", "2")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 9100, cfg.Server.Port)
		assert.Equal(t, logger.DEBUG, cfg.Logging.Level)
		assert.Equal(t, byte(2), cfg.MQTT.QoS)
	})
}

func TestDSN(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	dsn := cfg.Database.DSN()
	assert.Contains(t, dsn, "host=db.internal")
	assert.Contains(t, dsn, "dbname=hydro_watch")
	assert.Contains(t, dsn, "sslmode=disable")
}

func TestBrokerURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MQTT_BROKER", "broker.internal")
	t.Setenv("MQTT_PORT", "8883")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "tcp://broker.internal:8883", cfg.MQTT.BrokerURL())
}

func TestValidate(t *testing.T) {
	setRequiredEnv(t)

	t.Run("valid configuration passes", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("out-of-range port is rejected", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		cfg.Server.Port = 70000
		assert.Error(t, cfg.Validate())
	})

	t.Run("empty database password is rejected", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		cfg.Database.Password = ""
		assert.Error(t, cfg.Validate())
	})
}
