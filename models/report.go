package models

import (
	"time"
)

// Report is the availability digest delivered to notification sinks
type Report struct {
	ID                string             `json:"id"`
	GeneratedAt       time.Time          `json:"generated_at"`
	Selection         Selection          `json:"selection"`
	Threshold         float64            `json:"threshold"`
	Totals            Totals             `json:"totals"`
	Availability      []Availability     `json:"availability"`
	BelowThreshold    []Availability     `json:"below_threshold"`
	MaintenanceCounts []MaintenanceCount `json:"maintenance_counts"`
	AnomalyCounts     []AnomalyCount     `json:"anomaly_counts"`
	Delivered         []string           `json:"delivered"`
}

// HasAlerts returns true if any machine is under the availability threshold
func (r *Report) HasAlerts() bool {
	return len(r.BelowThreshold) > 0
}
