package services

import (
	"bytes"
	"errors"
	"testing"

	apperrors "machinedash/errors"
	"machinedash/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportCSV(t *testing.T) {
	table := loadTable(t, telemetryCSV)
	snapshot := Filter(table, models.Selection{Machines: []string{"M1"}, Weeks: []int{1}})

	t.Run("ExportCSV - Passed (selected columns in order)", func(t *testing.T) {
		var buf bytes.Buffer
		rows, err := ExportCSV(&buf, snapshot, []string{"temperature", "machine"})

		require.NoError(t, err)
		assert.Equal(t, 3, rows)
		assert.Equal(t, "temperature,machine\n70,M1\n72,M1\n74,M1\n", buf.String())
	})

	t.Run("ExportCSV - Passed (missing cells kept empty)", func(t *testing.T) {
		var buf bytes.Buffer
		_, err := ExportCSV(&buf, snapshot, []string{"predicted_remaining_life", "week"})

		require.NoError(t, err)
		assert.Equal(t, "predicted_remaining_life,week\n100,1\n90,1\n,1\n", buf.String())
	})

	t.Run("ExportCSV - Passed (duplicate columns collapsed)", func(t *testing.T) {
		var buf bytes.Buffer
		_, err := ExportCSV(&buf, snapshot, []string{"machine", "machine"})

		require.NoError(t, err)
		assert.Equal(t, "machine\nM1\nM1\nM1\n", buf.String())
	})

	t.Run("ExportCSV - Passed (empty snapshot writes header)", func(t *testing.T) {
		var buf bytes.Buffer
		empty := Filter(table, models.Selection{Machines: []string{"M9"}})
		rows, err := ExportCSV(&buf, empty, []string{"machine", "week"})

		require.NoError(t, err)
		assert.Equal(t, 0, rows)
		assert.Equal(t, "machine,week\n", buf.String())
	})

	t.Run("ExportCSV - Failed (no columns)", func(t *testing.T) {
		var buf bytes.Buffer
		_, err := ExportCSV(&buf, snapshot, nil)

		assert.True(t, errors.Is(err, ErrNoColumnsSelected))
		assert.Empty(t, buf.String())
	})

	t.Run("ExportCSV - Failed (no snapshot)", func(t *testing.T) {
		_, err := ExportCSV(&bytes.Buffer{}, nil, []string{"machine"})
		assert.True(t, errors.Is(err, ErrNoFilteredData))
	})

	t.Run("ExportCSV - Failed (unknown column)", func(t *testing.T) {
		_, err := ExportCSV(&bytes.Buffer{}, snapshot, []string{"machine", "colour"})

		var appErr apperrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.True(t, appErr.IsErrorType(apperrors.ErrorTypeBadRequest))
		assert.Contains(t, appErr.Message(), "colour")
	})
}

func TestExportColumns(t *testing.T) {
	t.Run("ExportColumns - Passed", func(t *testing.T) {
		table := loadTable(t, telemetryCSV)
		columns, err := ExportColumns(table)

		require.NoError(t, err)
		assert.Equal(t, table.Columns, columns)

		columns[0] = "changed"
		assert.Equal(t, "timestamp", table.Columns[0])
	})

	t.Run("ExportColumns - Failed (no snapshot)", func(t *testing.T) {
		_, err := ExportColumns(nil)
		assert.True(t, errors.Is(err, ErrNoFilteredData))
	})
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SplitList([]string{"a, b", " c ", ""}))
	assert.Empty(t, SplitList(nil))
}
