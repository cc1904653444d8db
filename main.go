package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"machinedash/api"
	"machinedash/config"
	"machinedash/log"
	"machinedash/services"

	"go.uber.org/zap"
)

func main() {
	// Initialize structured logger
	logger := log.GetInstance()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	log.SetLevel(cfg.LogLevel)

	// Load the telemetry table once; it is read-only from here on
	loader := services.NewLoader(cfg, logger)
	table, err := loader.LoadFile(cfg.DataFile)
	if err != nil {
		logger.Fatal("Failed to load telemetry data", zap.String("file", cfg.DataFile), zap.Error(err))
	}

	metrics := services.NewMetrics()
	snapshots := services.NewSnapshotStore(time.Duration(cfg.SnapshotTTLSeconds)*time.Second, logger)

	sinks, closeSinks, err := services.SetupReportSinks(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize report sinks", zap.Error(err))
	}
	defer closeSinks()

	reportService := services.NewReportService(logger, metrics, sinks...)

	// Send startup notification
	for _, sink := range sinks {
		if telegram, ok := sink.(*services.TelegramService); ok {
			if err := telegram.SendStartupMessage(table.Len()); err != nil {
				logger.Warn("Failed to send startup message", zap.Error(err))
			}
		}
	}

	router := api.NewRouter(cfg, table, snapshots, reportService, metrics, logger)
	router.LoadRestRoutes()

	logger.Info("Machine dashboard started",
		zap.String("data_file", cfg.DataFile),
		zap.Int("records", table.Len()),
		zap.String("listen_addr", cfg.ListenAddr),
		zap.Float64("availability_threshold", cfg.AvailabilityThreshold),
		zap.Strings("report_sinks", reportService.SinkNames()),
	)

	// Set up graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- router.Start(cfg.ListenAddr)
	}()

	select {
	case <-sigChan:
		logger.Info("Shutdown signal received, stopping server")
	case err := <-serverErr:
		if err != nil {
			logger.Error("HTTP server stopped unexpectedly", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := router.Shutdown(ctx); err != nil {
		logger.Warn("Cleanup timeout, forcing exit", zap.Error(err))
	}

	logger.Info("Machine dashboard stopped")
}
