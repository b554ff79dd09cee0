package dataprocessing

import (
	"fmt"
)

// MissingValueProcessor drops rows without a timestamp, fills missing numeric
// entries with the column median of the remaining rows and then drops rows
// without an identifier. Rows missing only the identifier still count toward
// the medians.
type MissingValueProcessor struct {
	opts ProcessingOptions
}

// NewMissingValueProcessor creates a processor for the given columns
func NewMissingValueProcessor(opts ProcessingOptions) *MissingValueProcessor {
	return &MissingValueProcessor{opts: opts}
}

// ImputationStatistics describes what a MissingValueProcessor changed
type ImputationStatistics struct {
	RowsBefore  int
	RowsAfter   int
	DroppedKeys map[string]int
	Imputed     map[string]int
	// Medians holds the fill value of every column that was imputed
	Medians map[string]float64
}

// Dropped returns the total number of rows removed for missing keys
func (s ImputationStatistics) Dropped() int {
	return s.RowsBefore - s.RowsAfter
}

// Process returns a derived frame with no missing keys or numeric values
func (p *MissingValueProcessor) Process(f *Frame) (*Frame, ImputationStatistics, error) {
	stats := ImputationStatistics{
		RowsBefore:  f.Len(),
		DroppedKeys: make(map[string]int, len(p.opts.FilterColumns)+len(p.opts.KeyColumns)),
		Imputed:     make(map[string]int, len(p.opts.NumericColumns)),
		Medians:     make(map[string]float64, len(p.opts.NumericColumns)),
	}

	out, dropped, err := f.DropMissing(p.opts.FilterColumns...)
	if err != nil {
		return nil, stats, err
	}
	for column, n := range dropped {
		stats.DroppedKeys[column] += n
	}

	for _, column := range p.opts.NumericColumns {
		filled, n, median, err := out.FillMedian(column)
		if err != nil {
			return nil, stats, fmt.Errorf("failed to impute %s: %w", column, err)
		}
		out = filled
		stats.Imputed[column] = n
		if n > 0 {
			stats.Medians[column] = median
		}
	}

	out, dropped, err = out.DropMissing(p.opts.KeyColumns...)
	if err != nil {
		return nil, stats, err
	}
	for column, n := range dropped {
		stats.DroppedKeys[column] += n
	}

	stats.RowsAfter = out.Len()
	return out, stats, nil
}

// DropHeaderRows removes rows that repeat the header inside the data, which
// shows up when exports are concatenated. A row is a repeated header when its
// value in column equals the column name.
func DropHeaderRows(f *Frame, column string) (*Frame, int, error) {
	if !f.HasColumn(column) {
		return nil, 0, &MissingColumnsError{Columns: []string{column}}
	}
	out := f.Filter(func(r Row) bool {
		c := r.Get(column)
		return c.Null || c.Str != column
	})
	return out, f.Len() - out.Len(), nil
}
