package models

// AllSentinel is the selection value meaning "no restriction".
const AllSentinel = "all"

// Selection restricts a table to a set of machines and ISO weeks.
// An empty list means every value.
type Selection struct {
	Machines []string `json:"machines"`
	Weeks    []int    `json:"weeks"`
}

// FilterOptions are the values offered by the machine and week selectors.
type FilterOptions struct {
	Machines []string `json:"machines"`
	Weeks    []int    `json:"weeks"`
}

type MaintenanceCount struct {
	Machine string `json:"machine"`
	Count   int    `json:"count"`
}

type AnomalyCount struct {
	Machine string `json:"machine"`
	Count   int    `json:"count"`
}

// Availability is the share of elapsed time a machine was not in failure.
// Defined is false when no time elapsed; Percent and UnavailablePercent are then 0.
type Availability struct {
	Machine            string  `json:"machine"`
	TotalSeconds       float64 `json:"total_seconds"`
	AvailableSeconds   float64 `json:"available_seconds"`
	Percent            float64 `json:"percent"`
	UnavailablePercent float64 `json:"unavailable_percent"`
	Defined            bool    `json:"defined"`
	TotalFormatted     string  `json:"total_formatted"`
	AvailableFormatted string  `json:"available_formatted"`
}

type WeeklyAvailability struct {
	Machine            string  `json:"machine"`
	Week               int     `json:"week"`
	TotalSeconds       float64 `json:"total_seconds"`
	AvailableSeconds   float64 `json:"available_seconds"`
	Percent            float64 `json:"percent"`
	UnavailablePercent float64 `json:"unavailable_percent"`
	Defined            bool    `json:"defined"`
}

type PredictedLifeAverage struct {
	Machine string  `json:"machine"`
	Average float64 `json:"average"`
	Samples int     `json:"samples"`
}

type ColumnMean struct {
	Column string  `json:"column"`
	Mean   float64 `json:"mean"`
}

type Totals struct {
	Records     int `json:"records"`
	Machines    int `json:"machines"`
	Maintenance int `json:"maintenance"`
	Anomalies   int `json:"anomalies"`
}

// ViewModel holds the input table of every chart for one selection.
type ViewModel struct {
	Selection          Selection              `json:"selection"`
	Totals             Totals                 `json:"totals"`
	MaintenanceCounts  []MaintenanceCount     `json:"maintenance_counts"`
	AnomalyCounts      []AnomalyCount         `json:"anomaly_counts"`
	Availability       []Availability         `json:"availability"`
	WeeklyAvailability []WeeklyAvailability   `json:"weekly_availability"`
	PredictedLife      []PredictedLifeAverage `json:"predicted_life"`
	ColumnMeans        []ColumnMean           `json:"column_means"`
	SnapshotID         string                 `json:"snapshot_id,omitempty"`

	// Filtered is the record set the view was computed from, handed to export.
	Filtered *Table `json:"-"`
}
