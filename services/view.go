package services

import (
	"machinedash/models"
)

// ComputeView runs the filter and every aggregation for one selection.
// It only reads the table, so calling it twice with the same input yields the same view.
//
// Weekly availability honours the machine selection only; every other table honours both.
func ComputeView(table *models.Table, sel models.Selection) models.ViewModel {
	filtered := Filter(table, sel)
	machineOnly := Filter(table, models.Selection{Machines: sel.Machines})

	return models.ViewModel{
		Selection:          normalizeSelection(sel),
		Totals:             ComputeTotals(filtered),
		MaintenanceCounts:  CountMaintenance(filtered),
		AnomalyCounts:      CountAnomalies(filtered),
		Availability:       ComputeAvailability(filtered),
		WeeklyAvailability: ComputeWeeklyAvailability(machineOnly),
		PredictedLife:      AveragePredictedLife(filtered),
		ColumnMeans:        ColumnMeans(filtered),
		Filtered:           filtered,
	}
}

// normalizeSelection maps the "all" sentinel to an empty list so the view echoes
// one canonical form.
func normalizeSelection(sel models.Selection) models.Selection {
	out := models.Selection{Machines: []string{}, Weeks: []int{}}
	if machineSet(sel.Machines) != nil {
		out.Machines = append(out.Machines, sel.Machines...)
	}
	if weekSet(sel.Weeks) != nil {
		out.Weeks = append(out.Weeks, sel.Weeks...)
	}
	return out
}
