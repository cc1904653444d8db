package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"DATA_FILE", "TIMESTAMP_LAYOUT", "LISTEN_ADDR", "LOG_LEVEL", "EXPORT_FILE_NAME",
	"SNAPSHOT_TTL_SECONDS", "AVAILABILITY_THRESHOLD", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID",
	"RABBITMQ_URL", "RABBITMQ_EXCHANGE", "RABBITMQ_ROUTING_KEY", "MQTT_BROKER", "MQTT_TOPIC",
	"MQTT_USERNAME", "MQTT_PASSWORD", "REPORT_WEBHOOK_URL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("LoadConfig - Passed (defaults)", func(t *testing.T) {
		clearEnv(t)

		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, "A2_data.csv", cfg.DataFile)
		assert.Equal(t, ":8080", cfg.ListenAddr)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, "filtered_data.csv", cfg.ExportFileName)
		assert.Equal(t, 1800, cfg.SnapshotTTLSeconds)
		assert.Equal(t, 90.0, cfg.AvailabilityThreshold)
		assert.Equal(t, "machinedash.reports", cfg.RabbitMQExchange)
		assert.Equal(t, "availability", cfg.RabbitMQRoutingKey)
		assert.Equal(t, "machinedash/reports", cfg.MQTTTopic)
		assert.False(t, cfg.TelegramEnabled())
	})

	t.Run("LoadConfig - Passed (environment overrides)", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DATA_FILE", "/data/telemetry.csv")
		t.Setenv("LOG_LEVEL", "DEBUG")
		t.Setenv("SNAPSHOT_TTL_SECONDS", "60")
		t.Setenv("AVAILABILITY_THRESHOLD", "75.5")
		t.Setenv("TELEGRAM_BOT_TOKEN", "token")
		t.Setenv("TELEGRAM_CHAT_ID", "12345")
		t.Setenv("REPORT_WEBHOOK_URL", "https://hooks.example.com")

		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, "/data/telemetry.csv", cfg.DataFile)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, 60, cfg.SnapshotTTLSeconds)
		assert.Equal(t, 75.5, cfg.AvailabilityThreshold)
		assert.True(t, cfg.TelegramEnabled())
		assert.Equal(t, "https://hooks.example.com", cfg.ReportWebhookURL)
	})

	t.Run("LoadConfig - Passed (unparsable number falls back to default)", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SNAPSHOT_TTL_SECONDS", "soon")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, 1800, cfg.SnapshotTTLSeconds)
	})

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "LoadConfig - Failed (unknown log level)", key: "LOG_LEVEL", value: "verbose"},
		{name: "LoadConfig - Failed (threshold above 100)", key: "AVAILABILITY_THRESHOLD", value: "120"},
		{name: "LoadConfig - Failed (non positive ttl)", key: "SNAPSHOT_TTL_SECONDS", value: "-1"},
		{name: "LoadConfig - Failed (invalid webhook url)", key: "REPORT_WEBHOOK_URL", value: "not a url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := LoadConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}
