package domain

import "time"

// FieldGap summarizes how often one field came back empty.
type FieldGap struct {
	Name      string  `json:"name"`
	Requested int     `json:"requested"`
	Missing   int     `json:"missing"`
	FillRate  float64 `json:"fill_rate"`
}

// CompletenessReport aggregates extraction quality over a time window.
type CompletenessReport struct {
	Since               time.Time  `json:"since"`
	TotalIncidents      int        `json:"total_incidents"`
	AverageCompleteness float64    `json:"average_completeness"`
	Fields              []FieldGap `json:"fields"`
}
