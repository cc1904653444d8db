package services

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"machinedash/config"
	"machinedash/models"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// nonNumericColumns never take part in the numeric means, whatever they contain.
var nonNumericColumns = map[string]bool{
	models.ColumnMachine:             true,
	models.ColumnTimestamp:           true,
	models.ColumnMachineStatus:       true,
	models.ColumnMaintenanceRequired: true,
	models.ColumnAnomalyFlag:         true,
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Loader reads the telemetry CSV into an in-memory table
type Loader struct {
	timestampLayout string
	logger          *zap.Logger
}

// NewLoader creates a loader using the configured timestamp layout
func NewLoader(cfg *config.Config, logger *zap.Logger) *Loader {
	return &Loader{
		timestampLayout: cfg.TimestampLayout,
		logger:          logger,
	}
}

// LoadFile opens path and loads it. Every error is fatal to startup.
func (l *Loader) LoadFile(path string) (*models.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file %s: %w", path, err)
	}
	defer f.Close()

	table, err := l.Load(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load data file %s: %w", path, err)
	}
	return table, nil
}

// Load parses CSV content into a table, deriving the ISO week of every record.
// A week column present in the source is overwritten with the derived value.
func (l *Loader) Load(r io.Reader) (*models.Table, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, fmt.Errorf("failed to skip byte order mark: %w", err)
		}
	}

	df := dataframe.ReadCSV(br,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", df.Err)
	}
	if df.Nrow() == 0 {
		return nil, fmt.Errorf("csv has no data rows")
	}

	columns := df.Names()
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		index[name] = i
	}

	var missing []string
	for _, name := range models.RequiredColumns {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	_, hasWeek := index[models.ColumnWeek]
	if !hasWeek {
		columns = append(columns, models.ColumnWeek)
	}

	rows := df.Records()[1:]
	table := &models.Table{
		Columns: columns,
		Records: make([]models.Record, 0, len(rows)),
	}

	missingLife := 0
	for i, row := range rows {
		ts, err := l.parseTimestamp(row[index[models.ColumnTimestamp]])
		if err != nil {
			// +2: header line and 1-based numbering
			return nil, fmt.Errorf("line %d: invalid timestamp %q: %w", i+2, row[index[models.ColumnTimestamp]], err)
		}
		_, week := ts.ISOWeek()

		values := make([]string, len(row), len(columns))
		copy(values, row)
		if hasWeek {
			values[index[models.ColumnWeek]] = strconv.Itoa(week)
		} else {
			values = append(values, strconv.Itoa(week))
		}

		life, ok := parseNumber(row[index[models.ColumnPredictedRemainingLife]])
		if !ok {
			missingLife++
		}

		table.Records = append(table.Records, models.Record{
			Machine:                strings.TrimSpace(row[index[models.ColumnMachine]]),
			Timestamp:              ts,
			MachineStatus:          row[index[models.ColumnMachineStatus]],
			MaintenanceRequired:    row[index[models.ColumnMaintenanceRequired]],
			AnomalyFlag:            row[index[models.ColumnAnomalyFlag]],
			PredictedRemainingLife: life,
			HasPredictedLife:       ok,
			Week:                   week,
			Values:                 values,
		})
	}

	table.NumericColumns = detectNumericColumns(table)

	if missingLife > 0 {
		l.logger.Warn("Records without a usable predicted remaining life",
			zap.Int("count", missingLife))
	}

	l.logger.Info("Telemetry data loaded",
		zap.Int("records", len(table.Records)),
		zap.Int("columns", len(table.Columns)),
		zap.Strings("numeric_columns", table.NumericColumns))

	return table, nil
}

func (l *Loader) parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if l.timestampLayout != "" {
		return time.Parse(l.timestampLayout, value)
	}
	return cast.ToTimeE(value)
}

// isMissingCell reports whether a cell holds one of the usual missing value markers.
func isMissingCell(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "na", "nan", "null", "none":
		return true
	}
	return false
}

// parseNumber parses a numeric cell. Missing and non-numeric cells report false.
func parseNumber(value string) (float64, bool) {
	if isMissingCell(value) {
		return 0, false
	}
	value = strings.TrimSpace(value)
	f, err := cast.ToFloat64E(value)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// detectNumericColumns returns the columns where every non-empty cell is a number
// and at least one cell is present.
func detectNumericColumns(table *models.Table) []string {
	var numeric []string
	for i, name := range table.Columns {
		if nonNumericColumns[name] {
			continue
		}

		seen := false
		isNumeric := true
		for _, r := range table.Records {
			cell := r.Values[i]
			if isMissingCell(cell) {
				continue
			}
			if _, ok := parseNumber(cell); !ok {
				isNumeric = false
				break
			}
			seen = true
		}

		if isNumeric && seen {
			numeric = append(numeric, name)
		}
	}
	return numeric
}
