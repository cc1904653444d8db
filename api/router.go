package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"machinedash/config"
	apperrors "machinedash/errors"
	"machinedash/models"
	"machinedash/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	machineParam  = "machine"
	weekParam     = "week"
	columnParam   = "column"
	snapshotParam = "snapshot"
)

type Router struct {
	echo      *echo.Echo
	config    *config.Config
	table     *models.Table
	snapshots *services.SnapshotStore
	reports   *services.ReportService
	metrics   *services.Metrics
	logger    *zap.Logger
}

// FiltersResponse lists the selector options, each headed by the "all" sentinel.
type FiltersResponse struct {
	Machines []string `json:"machines"`
	Weeks    []string `json:"weeks"`
}

type ColumnsResponse struct {
	SnapshotID string   `json:"snapshot_id"`
	Columns    []string `json:"columns"`
	Selected   []string `json:"selected"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ReportRequest struct {
	Machines []string `json:"machines"`
	Weeks    []int    `json:"weeks"`
}

func NewRouter(cfg *config.Config, table *models.Table, snapshots *services.SnapshotStore,
	reports *services.ReportService, metrics *services.Metrics, logger *zap.Logger) *Router {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	r := &Router{
		echo:      e,
		config:    cfg,
		table:     table,
		snapshots: snapshots,
		reports:   reports,
		metrics:   metrics,
		logger:    logger,
	}
	e.HTTPErrorHandler = r.errorHandler
	return r
}

// Echo exposes the underlying server, mainly for tests and shutdown.
func (r *Router) Echo() *echo.Echo {
	return r.echo
}

func (r *Router) LoadRestRoutes() {
	r.echo.GET("/api/health", r.health)
	r.echo.GET("/api/filters", r.filters)
	r.echo.GET("/api/view", r.view)
	r.echo.GET("/api/export/columns", r.exportColumns)
	r.echo.GET("/api/export", r.export)
	r.echo.POST("/api/reports", r.createReport)
	r.echo.GET("/api/metrics", r.metricsSnapshot)
}

// Start serves HTTP until Shutdown is called
func (r *Router) Start(addr string) error {
	r.logger.Info("HTTP server listening", zap.String("addr", addr))
	if err := r.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (r *Router) Shutdown(ctx context.Context) error {
	return r.echo.Shutdown(ctx)
}

func (r *Router) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":    "ok",
		"records":   r.table.Len(),
		"snapshots": r.snapshots.Count(),
	})
}

func (r *Router) filters(c echo.Context) error {
	opts := services.Options(r.table)
	resp := FiltersResponse{
		Machines: append([]string{models.AllSentinel}, opts.Machines...),
		Weeks:    []string{models.AllSentinel},
	}
	for _, w := range opts.Weeks {
		resp.Weeks = append(resp.Weeks, strconv.Itoa(w))
	}
	return c.JSON(http.StatusOK, resp)
}

func (r *Router) view(c echo.Context) error {
	sel, err := parseSelection(c.QueryParams()[machineParam], c.QueryParams()[weekParam])
	if err != nil {
		return err
	}

	start := time.Now()
	view := services.ComputeView(r.table, sel)
	r.metrics.ViewCompute.UpdateSince(start)

	view.SnapshotID = r.snapshots.Put(view.Filtered)

	r.logger.Debug("View computed",
		zap.Strings("machines", view.Selection.Machines),
		zap.Ints("weeks", view.Selection.Weeks),
		zap.Int("records", view.Totals.Records),
		zap.Duration("elapsed", time.Since(start)))

	return c.JSON(http.StatusOK, view)
}

func (r *Router) exportColumns(c echo.Context) error {
	id := c.QueryParam(snapshotParam)
	snapshot, err := r.snapshots.Get(id)
	if err != nil {
		return err
	}
	columns, err := services.ExportColumns(snapshot)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ColumnsResponse{
		SnapshotID: id,
		Columns:    columns,
		Selected:   columns,
	})
}

func (r *Router) export(c echo.Context) error {
	snapshot, err := r.snapshots.Get(c.QueryParam(snapshotParam))
	if err != nil {
		return err
	}

	// No column parameter exports every column; an empty one selects none.
	values, selected := c.QueryParams()[columnParam]
	columns := services.SplitList(values)
	if !selected {
		columns = snapshot.Columns
	}

	var buf bytes.Buffer
	rows, err := services.ExportCSV(&buf, snapshot, columns)
	if errors.Is(err, services.ErrNoColumnsSelected) {
		return c.JSON(http.StatusOK, MessageResponse{Message: services.ErrNoColumnsSelected.Message()})
	}
	if err != nil {
		return err
	}

	r.metrics.Exports.Inc(1)
	r.metrics.ExportedRows.Inc(int64(rows))
	r.logger.Info("Filtered data exported",
		zap.Int("rows", rows),
		zap.Strings("columns", columns))

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", r.config.ExportFileName))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (r *Router) createReport(c echo.Context) error {
	var req ReportRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.NewAppError(apperrors.ErrorTypeBadRequest, "invalid report request body")
	}

	view := services.ComputeView(r.table, models.Selection{Machines: req.Machines, Weeks: req.Weeks})
	report := services.BuildReport(view, r.config.AvailabilityThreshold, time.Now())

	if err := r.reports.Distribute(c.Request().Context(), report); err != nil {
		// partial delivery is still reported; the body lists the sinks that succeeded
		r.logger.Warn("Report delivered partially", zap.String("report_id", report.ID), zap.Error(err))
		return c.JSON(http.StatusBadGateway, report)
	}
	return c.JSON(http.StatusCreated, report)
}

func (r *Router) metricsSnapshot(c echo.Context) error {
	var buf bytes.Buffer
	r.metrics.WriteJSON(&buf)
	return c.JSONBlob(http.StatusOK, buf.Bytes())
}

// errorHandler converts application errors into HTTP errors before echo writes them.
func (r *Router) errorHandler(err error, c echo.Context) {
	var appErr apperrors.AppError
	if errors.As(err, &appErr) {
		err = appErr.ConvertToHTTPError()
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) && httpErr.Code >= http.StatusInternalServerError {
		r.logger.Error("Request failed",
			zap.String("path", c.Path()),
			zap.Error(err))
	}

	r.echo.DefaultHTTPErrorHandler(err, c)
}

// parseSelection reads repeated or comma separated machine and week parameters.
// The "all" sentinel, or no value at all, selects everything.
func parseSelection(machineValues, weekValues []string) (models.Selection, error) {
	var sel models.Selection

	for _, v := range services.SplitList(machineValues) {
		if services.IsAllSelection(v) {
			sel.Machines = nil
			break
		}
		sel.Machines = append(sel.Machines, v)
	}

	for _, v := range services.SplitList(weekValues) {
		if services.IsAllSelection(v) {
			sel.Weeks = nil
			break
		}
		week, err := strconv.Atoi(v)
		if err != nil || week < 1 || week > 53 {
			return models.Selection{}, apperrors.NewAppError(apperrors.ErrorTypeBadRequest,
				fmt.Sprintf("invalid week %q: expected an ISO week number between 1 and 53", v))
		}
		sel.Weeks = append(sel.Weeks, week)
	}

	return sel, nil
}
