package services

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"machinedash/models"
)

const failureStatus = "failure"

// interval is the time elapsed between a record and the previous record of the same machine.
// It is attributed to the record that closes it: its status decides availability and its
// week decides the weekly bucket.
type interval struct {
	week      int
	seconds   float64
	available bool
}

// machineIntervals orders each machine's records by timestamp and derives the intervals.
// The first record of a machine and any non-positive gap contribute 0 seconds.
func machineIntervals(records []models.Record) ([]string, map[string][]interval) {
	machines, groups := groupByMachine(records)
	intervals := make(map[string][]interval, len(groups))

	for _, machine := range machines {
		group := groups[machine]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Timestamp.Before(group[j].Timestamp)
		})

		out := make([]interval, len(group))
		for i, r := range group {
			seconds := 0.0
			if i > 0 {
				seconds = r.Timestamp.Sub(group[i-1].Timestamp).Seconds()
				if seconds < 0 {
					seconds = 0
				}
			}
			out[i] = interval{
				week:      r.Week,
				seconds:   seconds,
				available: !isFailure(r.MachineStatus),
			}
		}
		intervals[machine] = out
	}

	return machines, intervals
}

// ComputeAvailability returns one availability row per machine present in the table.
func ComputeAvailability(table *models.Table) []models.Availability {
	machines, intervals := machineIntervals(table.Records)
	result := make([]models.Availability, 0, len(machines))

	for _, machine := range machines {
		var total, available float64
		for _, iv := range intervals[machine] {
			total += iv.seconds
			if iv.available {
				available += iv.seconds
			}
		}

		percent, unavailable, defined := availabilityPercent(available, total)
		result = append(result, models.Availability{
			Machine:            machine,
			TotalSeconds:       total,
			AvailableSeconds:   available,
			Percent:            percent,
			UnavailablePercent: unavailable,
			Defined:            defined,
			TotalFormatted:     FormatDuration(total),
			AvailableFormatted: FormatDuration(available),
		})
	}

	return result
}

// ComputeWeeklyAvailability returns one row per (machine, week) present in the table.
// Intervals are derived over each machine's whole history before being split by week.
func ComputeWeeklyAvailability(table *models.Table) []models.WeeklyAvailability {
	machines, intervals := machineIntervals(table.Records)
	result := make([]models.WeeklyAvailability, 0)

	for _, machine := range machines {
		totals := make(map[int]float64)
		available := make(map[int]float64)
		var weeks []int

		for _, iv := range intervals[machine] {
			if _, ok := totals[iv.week]; !ok {
				weeks = append(weeks, iv.week)
			}
			totals[iv.week] += iv.seconds
			if iv.available {
				available[iv.week] += iv.seconds
			}
		}

		sort.Ints(weeks)
		for _, week := range weeks {
			percent, unavailable, defined := availabilityPercent(available[week], totals[week])
			result = append(result, models.WeeklyAvailability{
				Machine:            machine,
				Week:               week,
				TotalSeconds:       totals[week],
				AvailableSeconds:   available[week],
				Percent:            percent,
				UnavailablePercent: unavailable,
				Defined:            defined,
			})
		}
	}

	return result
}

// availabilityPercent returns 0, 0, false when no time elapsed.
func availabilityPercent(available, total float64) (float64, float64, bool) {
	if total <= 0 {
		return 0, 0, false
	}
	percent := available / total * 100
	return percent, 100 - percent, true
}

// FormatDuration renders seconds as "{d}d {h}h {m}m {s}s", truncating every unit.
func FormatDuration(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	days := int64(math.Floor(seconds / 86400))
	hours := int64(math.Floor(math.Mod(seconds, 86400) / 3600))
	minutes := int64(math.Floor(math.Mod(seconds, 3600) / 60))
	secs := int64(math.Floor(math.Mod(seconds, 60)))
	return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, secs)
}

func isFailure(status string) bool {
	return strings.EqualFold(strings.TrimSpace(status), failureStatus)
}

// groupByMachine splits records per machine, machines sorted ascending.
// Each group is a fresh slice so callers may reorder it.
func groupByMachine(records []models.Record) ([]string, map[string][]models.Record) {
	groups := make(map[string][]models.Record)
	var machines []string
	for _, r := range records {
		if _, ok := groups[r.Machine]; !ok {
			machines = append(machines, r.Machine)
		}
		groups[r.Machine] = append(groups[r.Machine], r)
	}
	sort.Strings(machines)
	return machines, groups
}
