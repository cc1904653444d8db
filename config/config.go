package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

type Config struct {
	DataFile        string `validate:"required"`
	TimestampLayout string
	ListenAddr      string `validate:"required"`
	LogLevel        string `validate:"oneof=debug info warn error"`

	// Export
	ExportFileName     string `validate:"required"`
	SnapshotTTLSeconds int    `validate:"gt=0"`

	// Reports
	AvailabilityThreshold float64 `validate:"gte=0,lte=100"`
	TelegramBotToken      string
	TelegramChatID        string
	RabbitMQURL           string
	RabbitMQExchange      string
	RabbitMQRoutingKey    string
	MQTTBroker            string
	MQTTTopic             string
	MQTTUsername          string
	MQTTPassword          string
	ReportWebhookURL      string `validate:"omitempty,url"`
}

func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	config := &Config{
		DataFile:        getEnv("DATA_FILE", "A2_data.csv"),
		TimestampLayout: getEnv("TIMESTAMP_LAYOUT", ""),
		ListenAddr:      getEnv("LISTEN_ADDR", ":8080"),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", "info")),

		ExportFileName:     getEnv("EXPORT_FILE_NAME", "filtered_data.csv"),
		SnapshotTTLSeconds: getEnvInt("SNAPSHOT_TTL_SECONDS", 1800),

		AvailabilityThreshold: getEnvFloat("AVAILABILITY_THRESHOLD", 90.0),
		TelegramBotToken:      getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:        getEnv("TELEGRAM_CHAT_ID", ""),
		RabbitMQURL:           getEnv("RABBITMQ_URL", ""),
		RabbitMQExchange:      getEnv("RABBITMQ_EXCHANGE", "machinedash.reports"),
		RabbitMQRoutingKey:    getEnv("RABBITMQ_ROUTING_KEY", "availability"),
		MQTTBroker:            getEnv("MQTT_BROKER", ""),
		MQTTTopic:             getEnv("MQTT_TOPIC", "machinedash/reports"),
		MQTTUsername:          getEnv("MQTT_USERNAME", ""),
		MQTTPassword:          getEnv("MQTT_PASSWORD", ""),
		ReportWebhookURL:      getEnv("REPORT_WEBHOOK_URL", ""),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the struct tags of the configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// TelegramEnabled reports whether both telegram settings are present.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := cast.ToFloat64E(value); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := cast.ToIntE(value); err == nil {
			return i
		}
	}
	return defaultValue
}
