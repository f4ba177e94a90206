package domain

import "time"

// Comparison holds the before/after aggregation of one composition run.
type Comparison struct {
	Workflow string
	Key      GroupKey

	// WindowStart and WindowEnd bound the baseline by open time; nil when nothing survived the filter.
	WindowStart *time.Time
	WindowEnd   *time.Time

	BaselineOverall Summary
	FilteredOverall Summary
	Baseline        []SummaryRow
	Filtered        []SummaryRow
}
