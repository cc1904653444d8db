package services

import (
	"strings"
	"testing"

	"machinedash/config"
	"machinedash/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testLayout = "2006-01-02 15:04:05"

// telemetryCSV covers two machines over four ISO weeks of 2024.
// M1: weeks 1 to 3, M2: week 4.
const telemetryCSV = `timestamp,machine,temperature,machine_status,anomaly_flag,predicted_remaining_life,maintenance_required
2024-01-01 00:00:00,M1,70,normal,yes,100,no
2024-01-01 00:01:40,M1,72,failure,no,90,yes
2024-01-01 00:05:00,M1,74,normal,Yes,,YES
2024-01-08 00:05:00,M1,76,normal,no,80,no
2024-01-15 00:05:00,M1,78,failure,NO,70,no
2024-01-22 00:00:00,M2,60,normal,no,200,yes
2024-01-22 01:00:00, M2 ,62,normal,yes,na,no
`

func testConfig() *config.Config {
	return &config.Config{TimestampLayout: testLayout}
}

func loadTable(t *testing.T, content string) *models.Table {
	t.Helper()
	table, err := NewLoader(testConfig(), zap.NewNop()).Load(strings.NewReader(content))
	require.NoError(t, err)
	return table
}

func machinesOf(table *models.Table) []string {
	var out []string
	for _, r := range table.Records {
		out = append(out, r.Machine)
	}
	return out
}
