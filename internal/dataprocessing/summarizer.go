package dataprocessing

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ColumnStats summarizes the non-missing values of a numeric column
type ColumnStats struct {
	Column  string  `json:"column"`
	Count   int     `json:"count"`
	Missing int     `json:"missing"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Mean    float64 `json:"mean"`
	Median  float64 `json:"median"`
	StdDev  float64 `json:"std_dev"`
}

// MissingCount is the number of missing cells in one column
type MissingCount struct {
	Column  string  `json:"column"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Median returns the median of values, averaging the two middle values for
// even lengths. It returns NaN for an empty slice. values is not modified.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return math.NaN()
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Describe computes summary statistics for a numeric column
func Describe(f *Frame, column string) (ColumnStats, error) {
	values, err := f.Floats(column)
	if err != nil {
		return ColumnStats{}, err
	}
	s := ColumnStats{
		Column:  column,
		Count:   len(values),
		Missing: f.Len() - len(values),
	}
	if len(values) == 0 {
		return s, fmt.Errorf("column %q: %w", column, ErrNoValues)
	}

	s.Min = floats.Min(values)
	s.Max = floats.Max(values)
	s.Mean = stat.Mean(values, nil)
	s.Median = Median(values)
	if len(values) > 1 {
		s.StdDev = stat.StdDev(values, nil)
	}
	return s, nil
}

// MissingSummary counts missing cells per column, in column order
func MissingSummary(f *Frame) []MissingCount {
	summary := make([]MissingCount, 0, len(f.columns))
	for _, column := range f.columns {
		n, _ := f.CountMissing(column)
		pct := 0.0
		if f.Len() > 0 {
			pct = float64(n) / float64(f.Len()) * 100
		}
		summary = append(summary, MissingCount{Column: column, Count: n, Percent: pct})
	}
	return summary
}

// UniqueCount returns the number of distinct non-missing values in a column
func UniqueCount(f *Frame, column string) (int, error) {
	i, err := f.columnIndex(column)
	if err != nil {
		return 0, err
	}
	seen := make(map[string]struct{})
	for _, cells := range f.rows {
		if cells[i].Null {
			continue
		}
		seen[f.cellKey(i, cells[i])] = struct{}{}
	}
	return len(seen), nil
}

// TimeRange returns the earliest and latest values of a time column. ok is
// false when the column has no values.
func TimeRange(f *Frame, column string) (earliest, latest time.Time, ok bool, err error) {
	times, err := f.Times(column)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	if len(times) == 0 {
		return time.Time{}, time.Time{}, false, nil
	}
	earliest, latest = times[0], times[0]
	for _, t := range times[1:] {
		if t.Before(earliest) {
			earliest = t
		}
		if t.After(latest) {
			latest = t
		}
	}
	return earliest, latest, true, nil
}
