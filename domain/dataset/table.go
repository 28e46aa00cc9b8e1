package dataset

import (
	"fmt"
	"math"
	"strconv"
)

// ValueKind defines the storage kind of a single cell
type ValueKind string

const (
	KindMissing ValueKind = "missing"
	KindNumeric ValueKind = "numeric"
	KindText    ValueKind = "text"
)

// Value represents one typed cell of a table
type Value struct {
	Kind ValueKind `json:"kind"`
	Num  float64   `json:"num,omitempty"`
	Str  string    `json:"str,omitempty"`
}

// NewNumericValue creates a numeric value; NaN is stored as missing
func NewNumericValue(n float64) Value {
	if math.IsNaN(n) {
		return NewMissingValue()
	}
	return Value{Kind: KindNumeric, Num: n}
}

// NewTextValue creates a text value
func NewTextValue(s string) Value {
	return Value{Kind: KindText, Str: s}
}

// NewMissingValue creates a missing value
func NewMissingValue() Value {
	return Value{Kind: KindMissing}
}

// IsMissing reports whether the cell holds no value
func (v Value) IsMissing() bool {
	return v.Kind == KindMissing
}

// IsNumeric reports whether the cell holds a number
func (v Value) IsNumeric() bool {
	return v.Kind == KindNumeric
}

// Float returns the numeric content, or NaN for anything that is not a number
func (v Value) Float() float64 {
	if v.Kind == KindNumeric {
		return v.Num
	}
	return math.NaN()
}

// String returns the string representation of the value
func (v Value) String() string {
	switch v.Kind {
	case KindNumeric:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case KindText:
		return v.Str
	}
	return ""
}

// Key returns a label usable for distinct-value counting and class encoding.
// Numbers and text never collide because text keys are prefixed.
func (v Value) Key() string {
	switch v.Kind {
	case KindNumeric:
		return "n:" + strconv.FormatFloat(v.Num, 'g', -1, 64)
	case KindText:
		return "s:" + v.Str
	}
	return ""
}

// ColumnType is the inferred statistical type of a column
type ColumnType string

const (
	ColumnNumeric     ColumnType = "numeric"
	ColumnCategorical ColumnType = "categorical"
)

// Column is a named, typed sequence of values
type Column struct {
	Name   string     `json:"name"`
	Type   ColumnType `json:"type"`
	Values []Value    `json:"values"`
}

// Len returns the number of rows in the column
func (c *Column) Len() int {
	return len(c.Values)
}

// IsNumeric reports whether the column was inferred as numeric
func (c *Column) IsNumeric() bool {
	return c.Type == ColumnNumeric
}

// MissingCount counts missing cells
func (c *Column) MissingCount() int {
	n := 0
	for _, v := range c.Values {
		if v.IsMissing() {
			n++
		}
	}
	return n
}

// Floats returns the column as float64 values; missing and text cells become NaN
func (c *Column) Floats() []float64 {
	out := make([]float64, len(c.Values))
	for i, v := range c.Values {
		out[i] = v.Float()
	}
	return out
}

// NonMissingFloats returns only the present numeric values
func (c *Column) NonMissingFloats() []float64 {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if v.IsNumeric() {
			out = append(out, v.Num)
		}
	}
	return out
}

// Clone returns a deep copy of the column
func (c *Column) Clone() *Column {
	values := make([]Value, len(c.Values))
	copy(values, c.Values)
	return &Column{Name: c.Name, Type: c.Type, Values: values}
}

// Table is an ordered collection of equally long named columns
type Table struct {
	Columns []*Column `json:"columns"`
}

// NewTable builds a table and validates the equal-length invariant
func NewTable(columns ...*Column) (*Table, error) {
	t := &Table{Columns: columns}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks that column names are unique and all columns have equal length
func (t *Table) Validate() error {
	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if seen[c.Name] {
			return fmt.Errorf("duplicate column %q", c.Name)
		}
		seen[c.Name] = true
		if c.Len() != t.Columns[0].Len() {
			return fmt.Errorf("column %q has %d rows, expected %d", c.Name, c.Len(), t.Columns[0].Len())
		}
	}
	return nil
}

// RowCount returns the number of rows
func (t *Table) RowCount() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

// ColumnNames returns the column names in table order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column, or nil when absent
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// HasColumn reports whether the named column exists
func (t *Table) HasColumn(name string) bool {
	return t.Column(name) != nil
}

// ReplaceColumn swaps the values of the named column in place
func (t *Table) ReplaceColumn(name string, values []Value) error {
	c := t.Column(name)
	if c == nil {
		return fmt.Errorf("column %q not in table", name)
	}
	if len(values) != c.Len() {
		return fmt.Errorf("column %q replacement has %d rows, expected %d", name, len(values), c.Len())
	}
	c.Values = values
	return nil
}

// Row returns the values of one row in column order
func (t *Table) Row(i int) []Value {
	row := make([]Value, len(t.Columns))
	for j, c := range t.Columns {
		row[j] = c.Values[i]
	}
	return row
}
