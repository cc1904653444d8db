package services

import (
	"io"

	"github.com/rcrowley/go-metrics"
)

// Metrics groups the counters and timers of the dashboard service
type Metrics struct {
	registry       metrics.Registry
	ViewCompute    metrics.Timer
	Exports        metrics.Counter
	ExportedRows   metrics.Counter
	Reports        metrics.Counter
	ReportFailures metrics.Counter
}

// NewMetrics registers every metric in a fresh registry
func NewMetrics() *Metrics {
	registry := metrics.NewRegistry()
	return &Metrics{
		registry:       registry,
		ViewCompute:    metrics.GetOrRegisterTimer("view.compute", registry),
		Exports:        metrics.GetOrRegisterCounter("export.requests", registry),
		ExportedRows:   metrics.GetOrRegisterCounter("export.rows", registry),
		Reports:        metrics.GetOrRegisterCounter("report.sent", registry),
		ReportFailures: metrics.GetOrRegisterCounter("report.failures", registry),
	}
}

// WriteJSON writes a snapshot of every registered metric
func (m *Metrics) WriteJSON(w io.Writer) {
	metrics.WriteJSONOnce(m.registry, w)
}
