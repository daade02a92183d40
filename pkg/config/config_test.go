package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Manifold/internal/domain/models"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const minimal = `
environment: development
clickhouse:
  host: ch.local
monitor:
  symbols: [BTCUSD]
`

func TestLoadAppliesDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, minimal))
	require.NoError(t, err)

	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, "info", c.Logger.Level)
	assert.Equal(t, 30*time.Second, c.Monitor.Interval)
	assert.Equal(t, 500, c.Monitor.Window)
	assert.Equal(t, []models.Horizon{models.HorizonShort}, c.Monitor.Horizons)
	assert.Equal(t, 1000, c.Monitor.HistorySize)
	assert.Equal(t, 10, c.Engine.Entropy.Bins)
	assert.Equal(t, 5, c.Engine.Singularity.MinGap)
	assert.Equal(t, 0.05, c.Interpreter.HighTension)
	assert.Equal(t, 9000, c.ClickHouse.Port)
	assert.Equal(t, "manifold", c.ClickHouse.Database)
	assert.Equal(t, "manifold.alerts", c.Kafka.Topic)
	assert.Equal(t, 5.0, c.Feed.RequestsPerSec)
	assert.False(t, c.Kafka.Enabled)
}

func TestLoadOverridesNestedThresholds(t *testing.T) {
	c, err := Load(writeConfig(t, `
environment: production
clickhouse:
  host: ch.local
engine:
  singularity:
    mad_multiplier: 3.5
  entropy:
    bins: 16
interpreter:
  high_tension: 0.08
monitor:
  symbols: [BTCUSD, ETHUSD]
  horizons: [micro, long]
  interval: 1m
`))
	require.NoError(t, err)
	assert.Equal(t, 3.5, c.Engine.Singularity.MADMultiplier)
	assert.Equal(t, 16, c.Engine.Entropy.Bins)
	assert.Equal(t, 0.08, c.Interpreter.HighTension)
	assert.Equal(t, time.Minute, c.Monitor.Interval)
	assert.Equal(t, []string{"BTCUSD", "ETHUSD"}, c.Monitor.Symbols)
	assert.Equal(t, []models.Horizon{models.HorizonMicro, models.HorizonLong}, c.Monitor.Horizons)
}

func TestLoadKeepsExplicitZeros(t *testing.T) {
	c, err := Load(writeConfig(t, minimal+`
engine:
  tension:
    persistence_bonus: 0
  singularity:
    tension_floor: 0
`))
	require.NoError(t, err)
	assert.Equal(t, 0.0, c.Engine.Tension.PersistenceBonus)
	assert.Equal(t, 0.0, c.Engine.Singularity.TensionFloor)
	assert.Equal(t, 2.5, c.Engine.Singularity.MADMultiplier)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"missing clickhouse host": "environment: development\n",
		"bad environment":         "environment: qa\nclickhouse: {host: x}\n",
		"unknown horizon":         minimal + "  horizons: [hourly]\n",
		"kafka without brokers":   minimal + "kafka:\n  enabled: true\n",
		"bins out of range":       minimal + "engine:\n  entropy:\n    bins: 1\n",
		"inverted tension bands":  minimal + "interpreter:\n  high_tension: 0.2\n  tension_hard_limit: 0.1\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("MANIFOLD_SYMBOLS", "SOLUSD, ADAUSD")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("CLICKHOUSE_HOST", "ch.prod")
	t.Setenv("ALERT_WEBHOOK_URL", "https://hooks.example.com/alerts")

	c, err := LoadWithEnv(writeConfig(t, minimal))
	require.NoError(t, err)
	assert.Equal(t, []string{"SOLUSD", "ADAUSD"}, c.Monitor.Symbols)
	assert.True(t, c.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.True(t, c.Redis.Enabled)
	assert.Equal(t, "cache", c.Redis.Host)
	assert.Equal(t, 6380, c.Redis.Port)
	assert.Equal(t, "ch.prod", c.ClickHouse.Host)
	assert.Equal(t, "https://hooks.example.com/alerts", c.Webhook.URL)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
