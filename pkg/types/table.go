// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strconv"
	"strings"
)

// ColumnKind is the value type held by every cell of a column.
type ColumnKind string

const (
	KindString ColumnKind = "string"
	KindInt    ColumnKind = "int"
	KindFloat  ColumnKind = "float"
)

// Column names one field of a table and the kind of value it holds.
type Column struct {
	Name string     `json:"name" yaml:"name"`
	Kind ColumnKind `json:"kind" yaml:"kind"`
}

// StringColumn, IntColumn and FloatColumn are shorthands for Column literals.
func StringColumn(name string) Column { return Column{Name: name, Kind: KindString} }
func IntColumn(name string) Column    { return Column{Name: name, Kind: KindInt} }
func FloatColumn(name string) Column  { return Column{Name: name, Kind: KindFloat} }

// Value is one typed cell. Only the field matching Kind is meaningful.
type Value struct {
	Kind  ColumnKind
	Str   string
	Int   int64
	Float float64
}

// StringValue wraps s as a string cell.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// IntValue wraps n as an integer cell.
func IntValue(n int64) Value { return Value{Kind: KindInt, Int: n} }

// FloatValue wraps f as a float cell.
func FloatValue(f float64) Value { return Value{Kind: KindFloat, Float: f} }

// ParseValue converts a raw token into a cell of the given kind. Numeric
// tokens that do not parse are an error; they are never kept as text.
func ParseValue(kind ColumnKind, token string) (Value, error) {
	switch kind {
	case KindString:
		return StringValue(token), nil
	case KindInt:
		n, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("token %q is not an integer", token)
		}
		return IntValue(n), nil
	case KindFloat:
		f, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return Value{}, fmt.Errorf("token %q is not a number", token)
		}
		return FloatValue(f), nil
	default:
		return Value{}, fmt.Errorf("unknown column kind %q", kind)
	}
}

// String renders the cell the way it is written to CSV. Floats keep at
// least one fractional digit so 56 is written as 56.0.
func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		s := strconv.FormatFloat(v.Float, 'f', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s
	default:
		return v.Str
	}
}

// Record is one parsed row. Cells are positional with the owning table's
// Columns.
type Record []Value

// Table is an ordered list of records sharing one column schema.
type Table struct {
	// Name identifies the report section the table came from (e.g. "disease_age").
	Name string `json:"name" yaml:"name"`

	// Destination is the output file name (e.g. "report_disease_age.csv").
	Destination string `json:"destination" yaml:"destination"`

	// Columns is the fixed column order written to the header row.
	Columns []Column `json:"columns" yaml:"columns"`

	Records []Record `json:"-" yaml:"-"`
}

// NewTable returns an empty table with the given schema.
func NewTable(name, destination string, columns ...Column) *Table {
	return &Table{Name: name, Destination: destination, Columns: columns}
}

// Append adds a record after checking it against the schema.
func (t *Table) Append(rec Record) error {
	if len(rec) != len(t.Columns) {
		return fmt.Errorf("table %s: record has %d values, want %d", t.Name, len(rec), len(t.Columns))
	}
	for i, v := range rec {
		if v.Kind != t.Columns[i].Kind {
			return fmt.Errorf("table %s: column %q holds %s, got %s", t.Name, t.Columns[i].Name, t.Columns[i].Kind, v.Kind)
		}
	}
	t.Records = append(t.Records, rec)
	return nil
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.Records)
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Get returns the value of the named column in row i.
func (t *Table) Get(i int, name string) (Value, bool) {
	idx := t.ColumnIndex(name)
	if idx < 0 || i < 0 || i >= len(t.Records) {
		return Value{}, false
	}
	return t.Records[i][idx], true
}

// Header returns the column names in order.
func (t *Table) Header() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Row renders record i as strings in column order.
func (t *Table) Row(i int) []string {
	rec := t.Records[i]
	out := make([]string, len(rec))
	for j, v := range rec {
		out[j] = v.String()
	}
	return out
}
