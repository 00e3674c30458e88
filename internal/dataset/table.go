package dataset

import (
	"fmt"
	"math"
)

// Missing returns the sentinel used for undefined or unmeasurable values.
// 결측값은 0이 아니라 NaN. 절대 0으로 강제 변환하지 않음
func Missing() float64 {
	return math.NaN()
}

// IsMissing reports whether v is the missing sentinel.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Table is an in-memory cross-section: one row per security for a single
// evaluation date. Columns are not a fixed schema: each factor reads
// whatever raw columns it needs and skips what is absent.
type Table struct {
	codes    []string
	numCols  map[string][]float64
	strCols  map[string][]string
	numOrder []string
	strOrder []string
}

// New creates a table keyed by security codes.
func New(codes []string) *Table {
	c := make([]string, len(codes))
	copy(c, codes)
	return &Table{
		codes:   c,
		numCols: make(map[string][]float64),
		strCols: make(map[string][]string),
	}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.codes)
}

// Codes returns a copy of the security codes in row order.
func (t *Table) Codes() []string {
	out := make([]string, len(t.codes))
	copy(out, t.codes)
	return out
}

// Code returns the security code at row i.
func (t *Table) Code(i int) string {
	return t.codes[i]
}

// SetNumeric adds or replaces a numeric column. The slice is copied.
func (t *Table) SetNumeric(name string, values []float64) error {
	if len(values) != len(t.codes) {
		return fmt.Errorf("dataset: column %q has %d values, table has %d rows", name, len(values), len(t.codes))
	}
	if _, exists := t.numCols[name]; !exists {
		t.numOrder = append(t.numOrder, name)
	}
	col := make([]float64, len(values))
	copy(col, values)
	t.numCols[name] = col
	return nil
}

// Numeric returns the backing slice of a numeric column. Callers must not
// mutate it; public engine entry points copy the whole table on entry.
func (t *Table) Numeric(name string) ([]float64, bool) {
	col, ok := t.numCols[name]
	return col, ok
}

// HasNumeric reports whether a numeric column exists.
func (t *Table) HasNumeric(name string) bool {
	_, ok := t.numCols[name]
	return ok
}

// NumericNames returns numeric column names in insertion order.
func (t *Table) NumericNames() []string {
	out := make([]string, len(t.numOrder))
	copy(out, t.numOrder)
	return out
}

// SetString adds or replaces a string column (sector, trading status).
func (t *Table) SetString(name string, values []string) error {
	if len(values) != len(t.codes) {
		return fmt.Errorf("dataset: column %q has %d values, table has %d rows", name, len(values), len(t.codes))
	}
	if _, exists := t.strCols[name]; !exists {
		t.strOrder = append(t.strOrder, name)
	}
	col := make([]string, len(values))
	copy(col, values)
	t.strCols[name] = col
	return nil
}

// Strings returns the backing slice of a string column.
func (t *Table) Strings(name string) ([]string, bool) {
	col, ok := t.strCols[name]
	return col, ok
}

// HasString reports whether a string column exists.
func (t *Table) HasString(name string) bool {
	_, ok := t.strCols[name]
	return ok
}

// Copy returns a deep copy. Every public engine method copies its input
// table on entry so concurrent callers never alias each other's data.
func (t *Table) Copy() *Table {
	out := New(t.codes)
	for _, name := range t.numOrder {
		_ = out.SetNumeric(name, t.numCols[name])
	}
	for _, name := range t.strOrder {
		_ = out.SetString(name, t.strCols[name])
	}
	return out
}

// Select returns a new table containing the given rows in the given order.
func (t *Table) Select(rows []int) *Table {
	codes := make([]string, len(rows))
	for i, r := range rows {
		codes[i] = t.codes[r]
	}
	out := New(codes)
	for _, name := range t.numOrder {
		src := t.numCols[name]
		col := make([]float64, len(rows))
		for i, r := range rows {
			col[i] = src[r]
		}
		_ = out.SetNumeric(name, col)
	}
	for _, name := range t.strOrder {
		src := t.strCols[name]
		col := make([]string, len(rows))
		for i, r := range rows {
			col[i] = src[r]
		}
		_ = out.SetString(name, col)
	}
	return out
}
