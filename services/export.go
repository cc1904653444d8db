package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	apperrors "machinedash/errors"
	"machinedash/models"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

var (
	ErrNoFilteredData    = apperrors.NewAppError(apperrors.ErrorTypeNoData, "no filtered data found; go back to the dashboard, apply the filters and try again")
	ErrNoColumnsSelected = apperrors.NewAppError(apperrors.ErrorTypeInfo, "select at least one column to export")
)

// ExportColumns lists the columns that can be exported from a snapshot.
func ExportColumns(snapshot *models.Table) ([]string, error) {
	if snapshot == nil {
		return nil, ErrNoFilteredData
	}
	return append([]string(nil), snapshot.Columns...), nil
}

// ExportCSV writes the chosen columns of snapshot to w as comma separated UTF-8 text with a
// header row and no index column. Columns are written in the requested order.
func ExportCSV(w io.Writer, snapshot *models.Table, columns []string) (int, error) {
	if snapshot == nil {
		return 0, ErrNoFilteredData
	}

	columns = uniqueColumns(columns)
	if len(columns) == 0 {
		return 0, ErrNoColumnsSelected
	}
	for _, c := range columns {
		if snapshot.ColumnIndex(c) < 0 {
			return 0, apperrors.NewAppError(apperrors.ErrorTypeBadRequest, fmt.Sprintf("unknown column %q", c))
		}
	}

	// A frame needs at least one row; an empty selection still yields a header.
	if snapshot.Len() == 0 {
		cw := csv.NewWriter(w)
		if err := cw.Write(columns); err != nil {
			return 0, fmt.Errorf("failed to write csv header: %w", err)
		}
		cw.Flush()
		return 0, cw.Error()
	}

	df := dataframe.LoadRecords(snapshot.Rows(),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return 0, fmt.Errorf("failed to build export frame: %w", df.Err)
	}

	selected := df.Select(columns)
	if selected.Err != nil {
		return 0, fmt.Errorf("failed to select export columns: %w", selected.Err)
	}

	if err := selected.WriteCSV(w); err != nil {
		return 0, fmt.Errorf("failed to write csv: %w", err)
	}
	return selected.Nrow(), nil
}

// SplitList flattens repeated and comma separated parameter values, dropping blanks.
func SplitList(values []string) []string {
	var columns []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				columns = append(columns, part)
			}
		}
	}
	return columns
}

func uniqueColumns(columns []string) []string {
	seen := make(map[string]bool, len(columns))
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
