package services

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"machinedash/config"
	"machinedash/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type TelegramService struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	config *config.Config
	logger *zap.Logger
}

func NewTelegramService(cfg *config.Config, logger *zap.Logger) (*TelegramService, error) {
	chatID, err := strconv.ParseInt(cfg.TelegramChatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("error parsing chat ID: %w", err)
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("error creating telegram bot: %w", err)
	}

	logger.Info("Telegram bot authorized", zap.String("username", bot.Self.UserName))

	ts := &TelegramService{
		bot:    bot,
		chatID: chatID,
		config: cfg,
		logger: logger,
	}

	// Test Telegram connection with retry
	if err := ts.testConnection(); err != nil {
		logger.Error("Telegram connection test failed", zap.Error(err))
		return nil, fmt.Errorf("telegram connection test failed: %w", err)
	}

	return ts, nil
}

// testConnection tests Telegram connection with retry logic
func (ts *TelegramService) testConnection() error {
	maxRetries := 3

	for attempt := 1; attempt <= maxRetries; attempt++ {
		ts.logger.Info("Testing Telegram connection", zap.Int("attempt", attempt), zap.Int("max_retries", maxRetries))

		_, err := ts.bot.GetMe()
		if err == nil {
			ts.logger.Info("Telegram connection successful")
			return nil
		}

		ts.logger.Warn("Telegram connection failed",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", maxRetries),
			zap.Error(err))

		if attempt < maxRetries {
			time.Sleep(time.Duration(attempt) * time.Second)
		}
	}

	return fmt.Errorf("failed to connect to Telegram after %d attempts", maxRetries)
}

func (ts *TelegramService) Name() string {
	return "telegram"
}

// SendReport sends the availability digest as an HTML message
func (ts *TelegramService) SendReport(ctx context.Context, report *models.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(ts.chatID, formatReportMessage(report))
	msg.ParseMode = "HTML"
	msg.DisableWebPagePreview = true

	if _, err := ts.bot.Send(msg); err != nil {
		return fmt.Errorf("error sending telegram message: %w", err)
	}

	ts.logger.Info("Sent availability report",
		zap.String("report_id", report.ID),
		zap.Int("machines", len(report.Availability)))
	return nil
}

// SendStatusMessage sends a general status message
func (ts *TelegramService) SendStatusMessage(message string) error {
	msg := tgbotapi.NewMessage(ts.chatID, message)
	msg.ParseMode = "HTML"

	_, err := ts.bot.Send(msg)
	return err
}

// SendStartupMessage sends a message when the dashboard starts
func (ts *TelegramService) SendStartupMessage(records int) error {
	message := "🟢 <b>Machine Dashboard Started</b>\n\n" +
		fmt.Sprintf("📄 %d telemetry records loaded\n", records) +
		"🤖 Availability reports will be posted here"

	return ts.SendStatusMessage(message)
}

// formatReportMessage renders a report as a compact Telegram HTML message
func formatReportMessage(report *models.Report) string {
	var sb strings.Builder

	if report.HasAlerts() {
		sb.WriteString("🚨 <b>AVAILABILITY REPORT</b>\n\n")
	} else {
		sb.WriteString("📊 <b>AVAILABILITY REPORT</b>\n\n")
	}

	sb.WriteString(fmt.Sprintf("🕐 <b>Generated:</b> %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("🏭 <b>Machines:</b> %s\n", describeMachines(report.Selection.Machines)))
	sb.WriteString(fmt.Sprintf("📅 <b>Weeks:</b> %s\n\n", describeWeeks(report.Selection.Weeks)))

	sb.WriteString(fmt.Sprintf("🔧 Maintenance required: %d\n", report.Totals.Maintenance))
	sb.WriteString(fmt.Sprintf("⚠️ Anomalies: %d\n\n", report.Totals.Anomalies))

	sb.WriteString("<b>Availability:</b>\n")
	for _, a := range report.Availability {
		if !a.Defined {
			sb.WriteString(fmt.Sprintf("⚪ %s: n/a\n", html.EscapeString(a.Machine)))
			continue
		}
		marker := "🟢"
		if a.Percent < report.Threshold {
			marker = "🔴"
		}
		sb.WriteString(fmt.Sprintf("%s %s: %.2f%% (%s)\n", marker, html.EscapeString(a.Machine), a.Percent, a.AvailableFormatted))
	}

	if report.HasAlerts() {
		sb.WriteString(fmt.Sprintf("\n🔴 <b>%d machine(s) below %.1f%%</b>", len(report.BelowThreshold), report.Threshold))
	} else {
		sb.WriteString(fmt.Sprintf("\n✅ All machines at or above %.1f%%", report.Threshold))
	}

	return sb.String()
}

func describeMachines(machines []string) string {
	if len(machines) == 0 {
		return "all"
	}
	return html.EscapeString(strings.Join(machines, ", "))
}

func describeWeeks(weeks []int) string {
	if len(weeks) == 0 {
		return "all"
	}
	parts := make([]string, len(weeks))
	for i, w := range weeks {
		parts[i] = strconv.Itoa(w)
	}
	return strings.Join(parts, ", ")
}
