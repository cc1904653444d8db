package main

import (
	"os"
	"path/filepath"
	"testing"

	"machinedash/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportTable() *models.Table {
	return &models.Table{
		Columns: []string{"machine", "temperature", "week"},
		Records: []models.Record{
			{Machine: "M1", Week: 1, Values: []string{"M1", "70", "1"}},
			{Machine: "M2", Week: 2, Values: []string{"M2", "61", "2"}},
		},
	}
}

func TestExport(t *testing.T) {
	t.Run("export - Passed (defaults to every column)", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.csv")

		require.NoError(t, export(exportTable(), path, nil))

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "machine,temperature,week\nM1,70,1\nM2,61,2\n", string(content))
	})

	t.Run("export - Passed (selected columns)", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.csv")

		require.NoError(t, export(exportTable(), path, []string{"week", "machine"}))

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "week,machine\n1,M1\n2,M2\n", string(content))
	})

	t.Run("export - Failed (unknown column leaves no file)", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.csv")

		err := export(exportTable(), path, []string{"machine", "colour"})

		require.Error(t, err)
		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr))
	})
}

func TestSelection(t *testing.T) {
	t.Run("selection - Passed (all sentinel)", func(t *testing.T) {
		sel, err := selection([]string{"M1,all"}, []string{"ALL"})

		require.NoError(t, err)
		assert.Empty(t, sel.Machines)
		assert.Empty(t, sel.Weeks)
	})

	t.Run("selection - Passed (lists)", func(t *testing.T) {
		sel, err := selection([]string{"M1", "M2"}, []string{"1,3"})

		require.NoError(t, err)
		assert.Equal(t, []string{"M1", "M2"}, sel.Machines)
		assert.Equal(t, []int{1, 3}, sel.Weeks)
	})

	t.Run("selection - Failed (week out of range)", func(t *testing.T) {
		_, err := selection(nil, []string{"60"})
		assert.Error(t, err)
	})
}
