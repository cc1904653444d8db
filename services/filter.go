package services

import (
	"sort"
	"strings"

	"machinedash/models"
)

// Filter returns the records matching both the machine and the week selection.
// The source table is never modified.
func Filter(table *models.Table, sel models.Selection) *models.Table {
	machines := machineSet(sel.Machines)
	weeks := weekSet(sel.Weeks)

	filtered := &models.Table{
		Columns:        table.Columns,
		Records:        make([]models.Record, 0, len(table.Records)),
		NumericColumns: table.NumericColumns,
	}

	for _, r := range table.Records {
		if machines != nil && !machines[r.Machine] {
			continue
		}
		if weeks != nil && !weeks[r.Week] {
			continue
		}
		filtered.Records = append(filtered.Records, r)
	}

	return filtered
}

// Options lists the distinct machines and weeks of a table, sorted ascending.
func Options(table *models.Table) models.FilterOptions {
	machineSeen := make(map[string]bool)
	weekSeen := make(map[int]bool)
	opts := models.FilterOptions{
		Machines: []string{},
		Weeks:    []int{},
	}

	for _, r := range table.Records {
		if !machineSeen[r.Machine] {
			machineSeen[r.Machine] = true
			opts.Machines = append(opts.Machines, r.Machine)
		}
		if !weekSeen[r.Week] {
			weekSeen[r.Week] = true
			opts.Weeks = append(opts.Weeks, r.Week)
		}
	}

	sort.Strings(opts.Machines)
	sort.Ints(opts.Weeks)
	return opts
}

// IsAllSelection reports whether a raw selector value is the "all" sentinel.
func IsAllSelection(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), models.AllSentinel)
}

// machineSet returns nil when every machine is selected
func machineSet(machines []string) map[string]bool {
	if len(machines) == 0 {
		return nil
	}
	set := make(map[string]bool, len(machines))
	for _, m := range machines {
		if IsAllSelection(m) {
			return nil
		}
		set[strings.TrimSpace(m)] = true
	}
	return set
}

// weekSet returns nil when every week is selected
func weekSet(weeks []int) map[int]bool {
	if len(weeks) == 0 {
		return nil
	}
	set := make(map[int]bool, len(weeks))
	for _, w := range weeks {
		set[w] = true
	}
	return set
}
