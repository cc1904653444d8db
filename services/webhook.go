package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"machinedash/models"

	"go.uber.org/zap"
)

// WebhookService posts availability reports to an HTTP endpoint
type WebhookService struct {
	logger     *zap.Logger
	apiURL     string
	httpClient *http.Client
}

// WebhookPayload represents the payload sent to the report webhook
type WebhookPayload struct {
	Report    *models.Report `json:"report"`
	Severity  string         `json:"severity"`
	AlertType string         `json:"alert_type"`
}

// NewWebhookService creates a new webhook sink
func NewWebhookService(logger *zap.Logger, apiURL string) *WebhookService {
	return &WebhookService{
		logger: logger,
		apiURL: strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (h *WebhookService) Name() string {
	return "webhook"
}

// SendReport sends the report via HTTP POST
func (h *WebhookService) SendReport(ctx context.Context, report *models.Report) error {
	payload := WebhookPayload{
		Report:    report,
		Severity:  determineSeverity(report),
		AlertType: "availability_report",
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/v1/availability-report", h.apiURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "MachineDash/1.0")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		h.logger.Error("Failed to send report webhook",
			zap.Error(err),
			zap.String("url", endpoint),
		)
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		h.logger.Info("Report webhook sent successfully",
			zap.String("report_id", report.ID),
			zap.String("severity", payload.Severity),
			zap.Int("status_code", resp.StatusCode),
		)
		return nil
	}

	h.logger.Error("Report webhook returned error",
		zap.String("report_id", report.ID),
		zap.Int("status_code", resp.StatusCode),
		zap.String("status", resp.Status),
	)
	return fmt.Errorf("report webhook error: %s", resp.Status)
}

// determineSeverity grades a report by its worst defined availability
func determineSeverity(report *models.Report) string {
	if !report.HasAlerts() {
		return "info"
	}

	worst := 100.0
	for _, a := range report.BelowThreshold {
		if a.Percent < worst {
			worst = a.Percent
		}
	}

	switch {
	case worst < 50:
		return "critical"
	case worst < 75:
		return "high"
	default:
		return "medium"
	}
}
