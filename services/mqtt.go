package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"machinedash/config"
	"machinedash/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

const mqttPublishTimeout = 10 * time.Second

// MQTTService publishes availability reports to an MQTT topic
type MQTTService struct {
	client mqtt.Client
	topic  string
	logger *zap.Logger
}

// NewMQTTService connects to the configured broker
func NewMQTTService(cfg *config.Config, logger *zap.Logger) (*MQTTService, error) {
	broker := cfg.MQTTBroker
	if !strings.Contains(broker, "://") {
		broker = "tcp://" + broker
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(fmt.Sprintf("machinedash-%d", time.Now().UnixNano()))
	opts.SetUsername(cfg.MQTTUsername)
	opts.SetPassword(cfg.MQTTPassword)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetAutoReconnect(true)

	opts.OnConnect = func(client mqtt.Client) {
		logger.Info("Connected to MQTT broker", zap.String("broker", broker))
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		logger.Error("MQTT connection lost", zap.Error(err))
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttPublishTimeout) {
		return nil, fmt.Errorf("timeout connecting to MQTT broker %s", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	return &MQTTService{
		client: client,
		topic:  cfg.MQTTTopic,
		logger: logger,
	}, nil
}

func (m *MQTTService) Name() string {
	return "mqtt"
}

// SendReport publishes the report JSON with QoS 1
func (m *MQTTService) SendReport(ctx context.Context, report *models.Report) error {
	body, err := marshalReport(report)
	if err != nil {
		return err
	}

	token := m.client.Publish(m.topic, 1, false, body)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(mqttPublishTimeout):
		return fmt.Errorf("timeout publishing to MQTT topic %s", m.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish MQTT message: %w", err)
	}

	m.logger.Debug("Published report to MQTT",
		zap.String("report_id", report.ID),
		zap.String("topic", m.topic))
	return nil
}

// Close disconnects from the broker
func (m *MQTTService) Close() error {
	m.client.Disconnect(250)
	m.logger.Info("MQTT client disconnected")
	return nil
}
