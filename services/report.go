package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"machinedash/config"
	"machinedash/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReportSink delivers an availability report to one destination
type ReportSink interface {
	Name() string
	SendReport(ctx context.Context, report *models.Report) error
}

// BuildReport summarises a view. Machines with a defined availability under threshold are flagged.
func BuildReport(view models.ViewModel, threshold float64, now time.Time) *models.Report {
	report := &models.Report{
		ID:                uuid.NewString(),
		GeneratedAt:       now,
		Selection:         view.Selection,
		Threshold:         threshold,
		Totals:            view.Totals,
		Availability:      view.Availability,
		BelowThreshold:    []models.Availability{},
		MaintenanceCounts: view.MaintenanceCounts,
		AnomalyCounts:     view.AnomalyCounts,
		Delivered:         []string{},
	}

	for _, a := range view.Availability {
		if a.Defined && a.Percent < threshold {
			report.BelowThreshold = append(report.BelowThreshold, a)
		}
	}

	return report
}

// ReportService fans a report out to every configured sink
type ReportService struct {
	sinks   []ReportSink
	metrics *Metrics
	logger  *zap.Logger
}

// NewReportService creates a report service over the given sinks
func NewReportService(logger *zap.Logger, metrics *Metrics, sinks ...ReportSink) *ReportService {
	return &ReportService{
		sinks:   sinks,
		metrics: metrics,
		logger:  logger,
	}
}

// SinkNames returns the names of the configured sinks
func (rs *ReportService) SinkNames() []string {
	names := make([]string, 0, len(rs.sinks))
	for _, s := range rs.sinks {
		names = append(names, s.Name())
	}
	return names
}

// Distribute sends the report to every sink. A failing sink does not stop the others;
// all failures are returned joined.
func (rs *ReportService) Distribute(ctx context.Context, report *models.Report) error {
	if len(rs.sinks) == 0 {
		rs.logger.Info("No report sink configured, report not delivered",
			zap.String("report_id", report.ID))
		return nil
	}

	var errs []error
	for _, sink := range rs.sinks {
		if err := sink.SendReport(ctx, report); err != nil {
			rs.logger.Error("Failed to deliver report",
				zap.String("report_id", report.ID),
				zap.String("sink", sink.Name()),
				zap.Error(err))
			if rs.metrics != nil {
				rs.metrics.ReportFailures.Inc(1)
			}
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
			continue
		}

		report.Delivered = append(report.Delivered, sink.Name())
		if rs.metrics != nil {
			rs.metrics.Reports.Inc(1)
		}
		rs.logger.Info("Report delivered",
			zap.String("report_id", report.ID),
			zap.String("sink", sink.Name()),
			zap.Int("below_threshold", len(report.BelowThreshold)))
	}

	return errors.Join(errs...)
}

// SetupReportSinks connects every sink that has configuration. The returned function
// closes the connections that were opened.
func SetupReportSinks(cfg *config.Config, logger *zap.Logger) ([]ReportSink, func(), error) {
	var sinks []ReportSink
	var closers []func() error

	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Error("Error closing report sink", zap.Error(err))
			}
		}
	}

	if cfg.TelegramEnabled() {
		telegram, err := NewTelegramService(cfg, logger)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to initialize telegram sink: %w", err)
		}
		sinks = append(sinks, telegram)
	}

	if cfg.RabbitMQURL != "" {
		rabbit, err := NewRabbitMQService(cfg, logger)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to initialize rabbitmq sink: %w", err)
		}
		sinks = append(sinks, rabbit)
		closers = append(closers, rabbit.Close)
	}

	if cfg.MQTTBroker != "" {
		mqttSink, err := NewMQTTService(cfg, logger)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to initialize mqtt sink: %w", err)
		}
		sinks = append(sinks, mqttSink)
		closers = append(closers, mqttSink.Close)
	}

	if cfg.ReportWebhookURL != "" {
		sinks = append(sinks, NewWebhookService(logger, cfg.ReportWebhookURL))
	}

	return sinks, closeAll, nil
}

func marshalReport(report *models.Report) ([]byte, error) {
	body, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return body, nil
}
