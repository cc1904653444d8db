package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"machinedash/config"
	"machinedash/log"
	"machinedash/models"
	"machinedash/services"

	"go.uber.org/zap"
)

// listFlag collects a flag given several times or as a comma separated list
type listFlag []string

func (l *listFlag) String() string {
	return strings.Join(*l, ",")
}

func (l *listFlag) Set(value string) error {
	*l = append(*l, value)
	return nil
}

var (
	machineFlags listFlag
	weekFlags    listFlag
	columnFlags  listFlag

	dataFile   = flag.String("file", "", "Telemetry CSV file (defaults to DATA_FILE)")
	exportPath = flag.String("export", "", "Write the filtered rows to this CSV file")
	sendReport = flag.Bool("report", false, "Send an availability report to the configured sinks")
)

func main() {
	flag.Var(&machineFlags, "machine", "Machine to include, repeatable or comma separated (default all)")
	flag.Var(&weekFlags, "week", "ISO week to include, repeatable or comma separated (default all)")
	flag.Var(&columnFlags, "columns", "Columns to export, repeatable or comma separated (default all)")
	flag.Parse()

	logger := log.GetInstance()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	log.SetLevel(cfg.LogLevel)

	path := cfg.DataFile
	if *dataFile != "" {
		path = *dataFile
	}

	table, err := services.NewLoader(cfg, logger).LoadFile(path)
	if err != nil {
		logger.Fatal("Failed to load telemetry data", zap.String("file", path), zap.Error(err))
	}

	sel, err := selection(machineFlags, weekFlags)
	if err != nil {
		logger.Fatal("Invalid selection", zap.Error(err))
	}

	view := services.ComputeView(table, sel)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(view); err != nil {
		logger.Fatal("Failed to write view", zap.Error(err))
	}

	if *exportPath != "" {
		if err := export(view.Filtered, *exportPath, services.SplitList(columnFlags)); err != nil {
			logger.Fatal("Failed to export filtered data", zap.String("file", *exportPath), zap.Error(err))
		}
		logger.Info("Filtered data exported", zap.String("file", *exportPath))
	}

	if *sendReport {
		if err := report(cfg, logger, view); err != nil {
			logger.Fatal("Failed to send report", zap.Error(err))
		}
	}
}

func selection(machines, weeks []string) (models.Selection, error) {
	var sel models.Selection
	for _, m := range services.SplitList(machines) {
		if services.IsAllSelection(m) {
			sel.Machines = nil
			break
		}
		sel.Machines = append(sel.Machines, m)
	}
	for _, w := range services.SplitList(weeks) {
		if services.IsAllSelection(w) {
			sel.Weeks = nil
			break
		}
		week, err := strconv.Atoi(w)
		if err != nil || week < 1 || week > 53 {
			return models.Selection{}, fmt.Errorf("invalid week %q", w)
		}
		sel.Weeks = append(sel.Weeks, week)
	}
	return sel, nil
}

func export(snapshot *models.Table, path string, columns []string) error {
	if len(columns) == 0 {
		columns = snapshot.Columns
	}

	// Render first so a rejected column list leaves no file behind.
	var buf bytes.Buffer
	if _, err := services.ExportCSV(&buf, snapshot, columns); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func report(cfg *config.Config, logger *zap.Logger, view models.ViewModel) error {
	sinks, closeSinks, err := services.SetupReportSinks(cfg, logger)
	if err != nil {
		return err
	}
	defer closeSinks()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rs := services.NewReportService(logger, nil, sinks...)
	r := services.BuildReport(view, cfg.AvailabilityThreshold, time.Now())
	if err := rs.Distribute(ctx, r); err != nil {
		return err
	}

	logger.Info("Report sent",
		zap.String("report_id", r.ID),
		zap.Strings("delivered", r.Delivered),
		zap.Int("below_threshold", len(r.BelowThreshold)))
	return nil
}
