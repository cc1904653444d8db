package services

import (
	"fmt"
	"testing"
	"time"

	"machinedash/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reading(machine string, offset time.Duration, status string) models.Record {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(offset)
	_, week := ts.ISOWeek()
	return models.Record{Machine: machine, Timestamp: ts, MachineStatus: status, Week: week}
}

func TestComputeAvailability(t *testing.T) {
	t.Run("ComputeAvailability - Passed (failure interval closed by failure record)", func(t *testing.T) {
		table := &models.Table{Records: []models.Record{
			reading("M1", 0, "normal"),
			reading("M1", 100*time.Second, "failure"),
			reading("M1", 300*time.Second, "normal"),
		}}

		result := ComputeAvailability(table)
		require.Len(t, result, 1)

		a := result[0]
		assert.Equal(t, "M1", a.Machine)
		assert.Equal(t, 300.0, a.TotalSeconds)
		assert.Equal(t, 200.0, a.AvailableSeconds)
		assert.InDelta(t, 66.67, a.Percent, 0.01)
		assert.InDelta(t, 33.33, a.UnavailablePercent, 0.01)
		assert.True(t, a.Defined)
		assert.Equal(t, "0d 0h 5m 0s", a.TotalFormatted)
		assert.Equal(t, "0d 0h 3m 20s", a.AvailableFormatted)
	})

	t.Run("ComputeAvailability - Passed (unsorted input)", func(t *testing.T) {
		table := &models.Table{Records: []models.Record{
			reading("M1", 300*time.Second, "normal"),
			reading("M1", 0, "normal"),
			reading("M1", 100*time.Second, "failure"),
		}}

		a := ComputeAvailability(table)[0]
		assert.Equal(t, 300.0, a.TotalSeconds)
		assert.Equal(t, 200.0, a.AvailableSeconds)
	})

	t.Run("ComputeAvailability - Passed (single record is undefined)", func(t *testing.T) {
		table := &models.Table{Records: []models.Record{reading("M1", 0, "normal")}}

		a := ComputeAvailability(table)[0]
		assert.False(t, a.Defined)
		assert.Equal(t, 0.0, a.Percent)
		assert.Equal(t, 0.0, a.UnavailablePercent)
		assert.Equal(t, "0d 0h 0m 0s", a.TotalFormatted)
	})

	t.Run("ComputeAvailability - Passed (identical timestamps)", func(t *testing.T) {
		table := &models.Table{Records: []models.Record{
			reading("M1", 0, "normal"),
			reading("M1", 0, "failure"),
		}}

		a := ComputeAvailability(table)[0]
		assert.Equal(t, 0.0, a.TotalSeconds)
		assert.False(t, a.Defined)
	})

	t.Run("ComputeAvailability - Passed (status is case insensitive)", func(t *testing.T) {
		table := &models.Table{Records: []models.Record{
			reading("M1", 0, "normal"),
			reading("M1", time.Hour, " FAILURE "),
		}}

		a := ComputeAvailability(table)[0]
		assert.Equal(t, 0.0, a.Percent)
		assert.Equal(t, 100.0, a.UnavailablePercent)
	})

	t.Run("ComputeAvailability - Passed (machines sorted)", func(t *testing.T) {
		result := ComputeAvailability(loadTable(t, telemetryCSV))

		require.Len(t, result, 2)
		assert.Equal(t, "M1", result[0].Machine)
		assert.Equal(t, 1209900.0, result[0].TotalSeconds)
		assert.Equal(t, 605000.0, result[0].AvailableSeconds)
		assert.Equal(t, "M2", result[1].Machine)
		assert.Equal(t, 100.0, result[1].Percent)
	})

	t.Run("ComputeAvailability - Passed (empty table)", func(t *testing.T) {
		assert.Empty(t, ComputeAvailability(&models.Table{}))
	})
}

func TestComputeWeeklyAvailability(t *testing.T) {
	t.Run("ComputeWeeklyAvailability - Passed (one machine, all weeks)", func(t *testing.T) {
		table := Filter(loadTable(t, telemetryCSV), models.Selection{Machines: []string{"M1"}})

		result := ComputeWeeklyAvailability(table)
		require.Len(t, result, 3)

		assert.Equal(t, 1, result[0].Week)
		assert.Equal(t, 300.0, result[0].TotalSeconds)
		assert.Equal(t, 200.0, result[0].AvailableSeconds)

		assert.Equal(t, 2, result[1].Week)
		assert.Equal(t, 100.0, result[1].Percent)

		assert.Equal(t, 3, result[2].Week)
		assert.Equal(t, 0.0, result[2].Percent)
		assert.Equal(t, 100.0, result[2].UnavailablePercent)
	})

	t.Run("ComputeWeeklyAvailability - Passed (rows per machine and week)", func(t *testing.T) {
		result := ComputeWeeklyAvailability(loadTable(t, telemetryCSV))

		var keys []string
		for _, w := range result {
			keys = append(keys, fmt.Sprintf("%s/%d", w.Machine, w.Week))
		}
		assert.Equal(t, []string{"M1/1", "M1/2", "M1/3", "M2/4"}, keys)
	})
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{seconds: 0, want: "0d 0h 0m 0s"},
		{seconds: 59.9, want: "0d 0h 0m 59s"},
		{seconds: 3600, want: "0d 1h 0m 0s"},
		{seconds: 90061, want: "1d 1h 1m 1s"},
		{seconds: 1209600, want: "14d 0h 0m 0s"},
		{seconds: -5, want: "0d 0h 0m 0s"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.seconds))
		})
	}

	t.Run("FormatDuration - Passed (components add back up)", func(t *testing.T) {
		for _, seconds := range []int{1, 61, 3599, 86399, 86400, 123456, 987654} {
			var d, h, m, s int
			_, err := fmt.Sscanf(FormatDuration(float64(seconds)), "%dd %dh %dm %ds", &d, &h, &m, &s)
			require.NoError(t, err)

			assert.Equal(t, seconds, d*86400+h*3600+m*60+s)
			assert.Less(t, h, 24)
			assert.Less(t, m, 60)
			assert.Less(t, s, 60)
		}
	})
}
