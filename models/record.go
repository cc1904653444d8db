package models

import (
	"time"
)

// Column names the dashboard relies on. Any other column is carried through untouched.
const (
	ColumnMachine                = "machine"
	ColumnTimestamp              = "timestamp"
	ColumnMachineStatus          = "machine_status"
	ColumnMaintenanceRequired    = "maintenance_required"
	ColumnAnomalyFlag            = "anomaly_flag"
	ColumnPredictedRemainingLife = "predicted_remaining_life"
	ColumnWeek                   = "week"
)

// RequiredColumns must all be present in the source file.
var RequiredColumns = []string{
	ColumnMachine,
	ColumnTimestamp,
	ColumnMachineStatus,
	ColumnMaintenanceRequired,
	ColumnAnomalyFlag,
	ColumnPredictedRemainingLife,
}

// Record is one telemetry reading from the source file
type Record struct {
	Machine                string
	Timestamp              time.Time
	MachineStatus          string
	MaintenanceRequired    string
	AnomalyFlag            string
	PredictedRemainingLife float64
	HasPredictedLife       bool
	// Week is the ISO-8601 week number of Timestamp.
	Week int
	// Values holds the raw cells, aligned with Table.Columns.
	Values []string
}

// Table is an ordered set of records sharing the same columns.
type Table struct {
	Columns []string
	Records []Record
	// NumericColumns lists the columns whose cells all parse as numbers.
	NumericColumns []string
}

// Len returns the number of records
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// ColumnIndex returns the position of a column or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Rows returns the header followed by every record's raw cells.
func (t *Table) Rows() [][]string {
	rows := make([][]string, 0, len(t.Records)+1)
	rows = append(rows, append([]string(nil), t.Columns...))
	for _, r := range t.Records {
		rows = append(rows, r.Values)
	}
	return rows
}
