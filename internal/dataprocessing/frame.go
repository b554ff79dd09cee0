package dataprocessing

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the type held by a column
type Kind int

const (
	KindString Kind = iota
	KindFloat
	KindTime
)

// String returns the lower-case kind name used in logs
func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindTime:
		return "time"
	default:
		return "string"
	}
}

// Cell is a single value of a Frame. A null cell carries no value whatever
// the column kind.
type Cell struct {
	Str  string
	Num  float64
	Time time.Time
	Null bool
}

// ErrNoValues is returned when a statistic is requested over a column
// without a single non-missing value.
var ErrNoValues = errors.New("column has no non-missing values")

// MissingColumnsError lists columns requested from a Frame that it lacks
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing columns: %s", strings.Join(e.Columns, ", "))
}

// Frame is an ordered, in-memory table. Every operation returns a derived
// Frame and leaves the receiver untouched; row slices are shared between
// frames and copied before any cell is rewritten.
type Frame struct {
	columns []string
	kinds   []Kind
	index   map[string]int
	rows    [][]Cell
}

// Row is a read-only view of one Frame row
type Row struct {
	frame *Frame
	cells []Cell
}

// Get returns the cell for a column, or a null cell if the column is unknown
func (r Row) Get(column string) Cell {
	i, ok := r.frame.index[column]
	if !ok {
		return Cell{Null: true}
	}
	return r.cells[i]
}

// missingTokens are the raw strings read as missing values
var missingTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"n/a":  true,
	"#N/A": true,
	"#NA":  true,
	"NaN":  true,
	"nan":  true,
	"-NaN": true,
	"-nan": true,
	"NULL": true,
	"null": true,
	"None": true,
	"<NA>": true,
	"NaT":  true,
}

// IsMissingToken reports whether a raw value denotes a missing entry
func IsMissingToken(s string) bool {
	return missingTokens[strings.TrimSpace(s)]
}

// NewFrame builds a string-typed Frame from a header and records. Records
// shorter than the header are padded with missing cells.
func NewFrame(columns []string, records [][]string) (*Frame, error) {
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		index[name] = i
	}

	rows := make([][]Cell, 0, len(records))
	for n, record := range records {
		if len(record) > len(columns) {
			return nil, fmt.Errorf("record %d has %d fields, header has %d", n+1, len(record), len(columns))
		}
		row := make([]Cell, len(columns))
		for i := range row {
			if i >= len(record) || IsMissingToken(record[i]) {
				row[i] = Cell{Null: true}
				continue
			}
			row[i] = Cell{Str: record[i]}
		}
		rows = append(rows, row)
	}

	return &Frame{
		columns: slices.Clone(columns),
		kinds:   make([]Kind, len(columns)),
		index:   index,
		rows:    rows,
	}, nil
}

// Len returns the number of rows
func (f *Frame) Len() int {
	return len(f.rows)
}

// Columns returns a copy of the column names in order
func (f *Frame) Columns() []string {
	return slices.Clone(f.columns)
}

// HasColumn reports whether the frame has the named column
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Kind returns the kind of the named column
func (f *Frame) Kind(column string) (Kind, bool) {
	i, ok := f.index[column]
	if !ok {
		return KindString, false
	}
	return f.kinds[i], true
}

// Row returns a view of row i
func (f *Frame) Row(i int) Row {
	return Row{frame: f, cells: f.rows[i]}
}

// derive returns a Frame with the receiver's schema and the given rows
func (f *Frame) derive(rows [][]Cell) *Frame {
	return &Frame{
		columns: f.columns,
		kinds:   f.kinds,
		index:   f.index,
		rows:    rows,
	}
}

func (f *Frame) columnIndex(column string) (int, error) {
	i, ok := f.index[column]
	if !ok {
		return 0, &MissingColumnsError{Columns: []string{column}}
	}
	return i, nil
}

// Select keeps only the named columns, in the given order
func (f *Frame) Select(columns ...string) (*Frame, error) {
	var missing []string
	positions := make([]int, 0, len(columns))
	for _, name := range columns {
		i, ok := f.index[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		positions = append(positions, i)
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	index := make(map[string]int, len(columns))
	kinds := make([]Kind, len(columns))
	for n, name := range columns {
		index[name] = n
		kinds[n] = f.kinds[positions[n]]
	}

	rows := make([][]Cell, len(f.rows))
	for r, src := range f.rows {
		row := make([]Cell, len(positions))
		for n, i := range positions {
			row[n] = src[i]
		}
		rows[r] = row
	}

	return &Frame{
		columns: slices.Clone(columns),
		kinds:   kinds,
		index:   index,
		rows:    rows,
	}, nil
}

// Filter keeps the rows for which keep returns true, preserving order
func (f *Frame) Filter(keep func(Row) bool) *Frame {
	rows := make([][]Cell, 0, len(f.rows))
	for _, cells := range f.rows {
		if keep(Row{frame: f, cells: cells}) {
			rows = append(rows, cells)
		}
	}
	return f.derive(rows)
}

// convert rewrites one column cell by cell into a new kind. fn receives only
// non-null cells and reports false when the value cannot be converted, which
// turns the cell null and counts it as a failure.
func (f *Frame) convert(column string, kind Kind, fn func(Cell) (Cell, bool)) (*Frame, int, error) {
	i, err := f.columnIndex(column)
	if err != nil {
		return nil, 0, err
	}

	failures := 0
	rows := make([][]Cell, len(f.rows))
	for r, src := range f.rows {
		row := slices.Clone(src)
		if !row[i].Null {
			converted, ok := fn(row[i])
			if !ok {
				converted = Cell{Null: true}
				failures++
			}
			row[i] = converted
		}
		rows[r] = row
	}

	kinds := slices.Clone(f.kinds)
	kinds[i] = kind
	return &Frame{columns: f.columns, kinds: kinds, index: f.index, rows: rows}, failures, nil
}

// CoerceNumeric converts a column to float64. Unparseable and non-finite
// entries become missing; the second result counts them.
func (f *Frame) CoerceNumeric(column string) (*Frame, int, error) {
	return f.convert(column, KindFloat, func(c Cell) (Cell, bool) {
		if kind, _ := f.Kind(column); kind == KindFloat {
			return c, true
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(c.Str), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return Cell{}, false
		}
		return Cell{Num: v}, true
	})
}

// ParseTimestamps converts a column to time.Time using parse. Entries that
// fail to parse become missing; the second result counts them.
func (f *Frame) ParseTimestamps(column string, parse func(string) (time.Time, error)) (*Frame, int, error) {
	return f.convert(column, KindTime, func(c Cell) (Cell, bool) {
		if kind, _ := f.Kind(column); kind == KindTime {
			return c, true
		}
		t, err := parse(c.Str)
		if err != nil {
			return Cell{}, false
		}
		return Cell{Time: t}, true
	})
}

// DropMissing removes rows with a null cell in any of the given columns.
// The returned counts attribute each dropped row to the first null column.
func (f *Frame) DropMissing(columns ...string) (*Frame, map[string]int, error) {
	positions := make([]int, len(columns))
	for n, name := range columns {
		i, err := f.columnIndex(name)
		if err != nil {
			return nil, nil, err
		}
		positions[n] = i
	}

	dropped := make(map[string]int, len(columns))
	rows := make([][]Cell, 0, len(f.rows))
	for _, cells := range f.rows {
		keep := true
		for n, i := range positions {
			if cells[i].Null {
				dropped[columns[n]]++
				keep = false
				break
			}
		}
		if keep {
			rows = append(rows, cells)
		}
	}
	return f.derive(rows), dropped, nil
}

// CountMissing returns the number of null cells in a column
func (f *Frame) CountMissing(column string) (int, error) {
	i, err := f.columnIndex(column)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, cells := range f.rows {
		if cells[i].Null {
			n++
		}
	}
	return n, nil
}

// Floats returns the non-missing values of a numeric column in row order
func (f *Frame) Floats(column string) ([]float64, error) {
	i, err := f.columnIndex(column)
	if err != nil {
		return nil, err
	}
	if f.kinds[i] != KindFloat {
		return nil, fmt.Errorf("column %q is %s, not float", column, f.kinds[i])
	}
	values := make([]float64, 0, len(f.rows))
	for _, cells := range f.rows {
		if !cells[i].Null {
			values = append(values, cells[i].Num)
		}
	}
	return values, nil
}

// Times returns the non-missing values of a time column in row order
func (f *Frame) Times(column string) ([]time.Time, error) {
	i, err := f.columnIndex(column)
	if err != nil {
		return nil, err
	}
	if f.kinds[i] != KindTime {
		return nil, fmt.Errorf("column %q is %s, not time", column, f.kinds[i])
	}
	values := make([]time.Time, 0, len(f.rows))
	for _, cells := range f.rows {
		if !cells[i].Null {
			values = append(values, cells[i].Time)
		}
	}
	return values, nil
}

// FillMissing replaces null cells of a numeric column with v
func (f *Frame) FillMissing(column string, v float64) (*Frame, int, error) {
	i, err := f.columnIndex(column)
	if err != nil {
		return nil, 0, err
	}
	if f.kinds[i] != KindFloat {
		return nil, 0, fmt.Errorf("column %q is %s, not float", column, f.kinds[i])
	}

	filled := 0
	rows := make([][]Cell, len(f.rows))
	for r, src := range f.rows {
		if !src[i].Null {
			rows[r] = src
			continue
		}
		row := slices.Clone(src)
		row[i] = Cell{Num: v}
		rows[r] = row
		filled++
	}
	return f.derive(rows), filled, nil
}

// FillMedian replaces null cells of a numeric column with the median of its
// non-missing values. It returns ErrNoValues when there is something to fill
// but nothing to compute the median from.
func (f *Frame) FillMedian(column string) (*Frame, int, float64, error) {
	values, err := f.Floats(column)
	if err != nil {
		return nil, 0, 0, err
	}
	if len(values) == len(f.rows) {
		return f, 0, Median(values), nil
	}
	if len(values) == 0 {
		return nil, 0, 0, fmt.Errorf("column %q: %w", column, ErrNoValues)
	}

	median := Median(values)
	filled, n, err := f.FillMissing(column, median)
	if err != nil {
		return nil, 0, 0, err
	}
	return filled, n, median, nil
}

// DropDuplicates keeps the first row of every distinct key tuple
func (f *Frame) DropDuplicates(keys ...string) (*Frame, int, error) {
	positions := make([]int, len(keys))
	for n, name := range keys {
		i, err := f.columnIndex(name)
		if err != nil {
			return nil, 0, err
		}
		positions[n] = i
	}

	seen := make(map[string]struct{}, len(f.rows))
	rows := make([][]Cell, 0, len(f.rows))
	var b strings.Builder
	for _, cells := range f.rows {
		b.Reset()
		for _, i := range positions {
			b.WriteString(f.cellKey(i, cells[i]))
			b.WriteByte(0x1f)
		}
		key := b.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		rows = append(rows, cells)
	}
	return f.derive(rows), len(f.rows) - len(rows), nil
}

// cellKey renders a cell as an identity key for deduplication
func (f *Frame) cellKey(i int, c Cell) string {
	if c.Null {
		return "\x00"
	}
	switch f.kinds[i] {
	case KindFloat:
		return strconv.FormatFloat(c.Num, 'g', -1, 64)
	case KindTime:
		return strconv.FormatInt(c.Time.UnixNano(), 10)
	default:
		return IdentifierKey(c.Str)
	}
}

// IdentifierKey returns the canonical form of an identifier: integers lose
// surrounding space and leading zeros, other strings are kept as they are.
// Identifiers with the same key compare equal in CompareIdentifiers.
func IdentifierKey(s string) string {
	if n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
		return strconv.FormatInt(n, 10)
	}
	return s
}

// SortBy orders rows by the given columns ascending. The sort is stable, so
// rows with equal keys keep their relative order. Null cells sort last.
func (f *Frame) SortBy(keys ...string) (*Frame, error) {
	positions := make([]int, len(keys))
	for n, name := range keys {
		i, err := f.columnIndex(name)
		if err != nil {
			return nil, err
		}
		positions[n] = i
	}

	rows := slices.Clone(f.rows)
	slices.SortStableFunc(rows, func(a, b []Cell) int {
		for _, i := range positions {
			if c := f.compareCells(i, a[i], b[i]); c != 0 {
				return c
			}
		}
		return 0
	})
	return f.derive(rows), nil
}

func (f *Frame) compareCells(i int, a, b Cell) int {
	switch {
	case a.Null && b.Null:
		return 0
	case a.Null:
		return 1
	case b.Null:
		return -1
	}
	switch f.kinds[i] {
	case KindFloat:
		return cmpFloat(a.Num, b.Num)
	case KindTime:
		return a.Time.Compare(b.Time)
	default:
		return CompareIdentifiers(a.Str, b.Str)
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// CompareIdentifiers orders two identifiers numerically when both are
// integers and lexically otherwise; integers sort before other strings.
// Integers of equal value compare equal, so "1" and "01" are one location.
func CompareIdentifiers(a, b string) int {
	ai, aErr := strconv.ParseInt(strings.TrimSpace(a), 10, 64)
	bi, bErr := strconv.ParseInt(strings.TrimSpace(b), 10, 64)
	switch {
	case aErr == nil && bErr == nil:
		if ai != bi {
			if ai < bi {
				return -1
			}
			return 1
		}
		return 0
	case aErr == nil:
		return -1
	case bErr == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

// Records renders the frame as string records. Floats use the shortest
// representation that round-trips, times use layout in UTC, nulls are empty.
func (f *Frame) Records(layout string) [][]string {
	records := make([][]string, len(f.rows))
	for r, cells := range f.rows {
		record := make([]string, len(cells))
		for i, c := range cells {
			record[i] = f.formatCell(i, c, layout)
		}
		records[r] = record
	}
	return records
}

func (f *Frame) formatCell(i int, c Cell, layout string) string {
	if c.Null {
		return ""
	}
	switch f.kinds[i] {
	case KindFloat:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case KindTime:
		return FormatTimestamp(c.Time, layout)
	default:
		return c.Str
	}
}
