package services

import (
	"strings"

	"machinedash/models"
)

const yesValue = "yes"

func isYes(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), yesValue)
}

// countYes counts, per machine, the records for which column returns "yes".
// Machines without any match are left out.
func countYes(table *models.Table, column func(models.Record) string) ([]string, map[string]int) {
	machines, groups := groupByMachine(table.Records)
	counts := make(map[string]int)
	var present []string
	for _, machine := range machines {
		n := 0
		for _, r := range groups[machine] {
			if isYes(column(r)) {
				n++
			}
		}
		if n > 0 {
			present = append(present, machine)
			counts[machine] = n
		}
	}
	return present, counts
}

// CountMaintenance counts maintenance_required == "yes" per machine
func CountMaintenance(table *models.Table) []models.MaintenanceCount {
	machines, counts := countYes(table, func(r models.Record) string { return r.MaintenanceRequired })
	result := make([]models.MaintenanceCount, 0, len(machines))
	for _, m := range machines {
		result = append(result, models.MaintenanceCount{Machine: m, Count: counts[m]})
	}
	return result
}

// CountAnomalies counts anomaly_flag == "yes" per machine
func CountAnomalies(table *models.Table) []models.AnomalyCount {
	machines, counts := countYes(table, func(r models.Record) string { return r.AnomalyFlag })
	result := make([]models.AnomalyCount, 0, len(machines))
	for _, m := range machines {
		result = append(result, models.AnomalyCount{Machine: m, Count: counts[m]})
	}
	return result
}

// MaintenanceCountFor returns the count of a machine, 0 when it is absent.
func MaintenanceCountFor(counts []models.MaintenanceCount, machine string) int {
	for _, c := range counts {
		if c.Machine == machine {
			return c.Count
		}
	}
	return 0
}

// AnomalyCountFor returns the count of a machine, 0 when it is absent.
func AnomalyCountFor(counts []models.AnomalyCount, machine string) int {
	for _, c := range counts {
		if c.Machine == machine {
			return c.Count
		}
	}
	return 0
}

// AveragePredictedLife returns the mean predicted remaining life per machine.
// Missing values are skipped; a machine with no value at all is left out.
func AveragePredictedLife(table *models.Table) []models.PredictedLifeAverage {
	machines, groups := groupByMachine(table.Records)
	result := make([]models.PredictedLifeAverage, 0, len(machines))
	for _, machine := range machines {
		var values []float64
		for _, r := range groups[machine] {
			if r.HasPredictedLife {
				values = append(values, r.PredictedRemainingLife)
			}
		}
		if len(values) == 0 {
			continue
		}
		result = append(result, models.PredictedLifeAverage{
			Machine: machine,
			Average: average(values),
			Samples: len(values),
		})
	}
	return result
}

// ColumnMeans returns the mean of every numeric column over the table, skipping missing cells.
func ColumnMeans(table *models.Table) []models.ColumnMean {
	result := make([]models.ColumnMean, 0, len(table.NumericColumns))
	for _, column := range table.NumericColumns {
		idx := table.ColumnIndex(column)
		if idx < 0 {
			continue
		}
		var values []float64
		for _, r := range table.Records {
			if v, ok := parseNumber(r.Values[idx]); ok {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			continue
		}
		result = append(result, models.ColumnMean{Column: column, Mean: average(values)})
	}
	return result
}

// ComputeTotals summarises the table as a whole
func ComputeTotals(table *models.Table) models.Totals {
	machines := make(map[string]bool)
	totals := models.Totals{Records: len(table.Records)}
	for _, r := range table.Records {
		machines[r.Machine] = true
		if isYes(r.MaintenanceRequired) {
			totals.Maintenance++
		}
		if isYes(r.AnomalyFlag) {
			totals.Anomalies++
		}
	}
	totals.Machines = len(machines)
	return totals
}

func average(xs []float64) float64 {
	total := 0.0
	for _, v := range xs {
		total += v
	}
	return total / float64(len(xs))
}
