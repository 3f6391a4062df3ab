package model

import (
	"cmp"
	"slices"
	"time"
)

// ValueCount is one distinct model value and its occurrence count.
type ValueCount struct {
	// Value is the decoded model string.
	Value string `json:"value"`

	// Count is how many times the value occurred in the input.
	Count uint64 `json:"count"`
}

// ScanReport is the result of one counting run. All inputs merge into a
// single frequency table, so the report is flat; there is no per-input
// breakdown.
type ScanReport struct {
	// Inputs are the file paths that were scanned, in argument order.
	Inputs []string `json:"inputs"`

	// TargetKey is the JSON key whose string values were counted.
	TargetKey string `json:"target_key"`

	// StartedAt is when the scan began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the wall-clock time of the scan.
	Duration time.Duration `json:"duration"`

	// TotalBytes is the combined size of all inputs, when known.
	TotalBytes int64 `json:"total_bytes"`

	// ModelsSeen is the number of emitted values, including repeats.
	ModelsSeen uint64 `json:"models_seen"`

	// UniqueModels is the number of distinct values.
	UniqueModels int `json:"unique_models"`

	// Models holds one ValueCount per distinct value, sorted by
	// descending count, ties broken by ascending value.
	Models []ValueCount `json:"models"`
}

// SortValueCounts sorts pairs in the report output order: descending
// count, ties broken by ascending lexicographic value.
func SortValueCounts(pairs []ValueCount) {
	slices.SortFunc(pairs, func(a, b ValueCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Value, b.Value)
	})
}
