package table

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Row maps column names to values. A column missing from the map reads as Null.
type Row map[string]Value

// Get returns the value for column, or Null if the row has no such entry.
func (r Row) Get(column string) Value {
	if v, ok := r[column]; ok {
		return v
	}
	return Null()
}

// Table is an ordered set of rows sharing one column set.
type Table struct {
	Columns []string
	Rows    []Row
}

// New returns an empty table with the given columns.
func New(columns ...string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether name is one of the table's columns.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Column returns the values of one column in row order.
func (t *Table) Column(name string) []Value {
	out := make([]Value, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Get(name)
	}
	return out
}

// Append adds a row built from values in column order.
// Missing trailing values are stored as Null.
func (t *Table) Append(values ...Value) {
	row := make(Row, len(t.Columns))
	for i, c := range t.Columns {
		if i < len(values) {
			row[c] = values[i]
		} else {
			row[c] = Null()
		}
	}
	t.Rows = append(t.Rows, row)
}

// Clone returns a deep copy of the table. Values are immutable so copying
// the row maps is sufficient.
func (t *Table) Clone() *Table {
	out := &Table{
		Columns: make([]string, len(t.Columns)),
		Rows:    make([]Row, len(t.Rows)),
	}
	copy(out.Columns, t.Columns)
	for i, r := range t.Rows {
		nr := make(Row, len(r))
		for k, v := range r {
			nr[k] = v
		}
		out.Rows[i] = nr
	}
	return out
}

// FromStrings builds a table from a header and raw string records.
// Every cell becomes Text; use the loader for null-token handling.
func FromStrings(header []string, records [][]string) *Table {
	t := New(header...)
	for _, rec := range records {
		values := make([]Value, len(rec))
		for i, s := range rec {
			values[i] = Text(s)
		}
		t.Append(values...)
	}
	return t
}

// FromRecords builds a table from Go values keyed by column name.
// nil becomes Null, strings become Text, time.Time becomes Date and numeric
// types become Number. Anything else is coerced to its string form.
func FromRecords(columns []string, records []map[string]any) (*Table, error) {
	t := New(columns...)
	for i, rec := range records {
		row := make(Row, len(columns))
		for _, c := range columns {
			v, err := ValueOf(rec[c])
			if err != nil {
				return nil, fmt.Errorf("record %d column %q: %w", i, c, err)
			}
			row[c] = v
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// ValueOf converts a Go value to a Value.
func ValueOf(x any) (Value, error) {
	switch v := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return v, nil
	case string:
		return Text(v), nil
	case time.Time:
		return Date(v), nil
	case *time.Time:
		if v == nil {
			return Null(), nil
		}
		return Date(*v), nil
	case decimal.Decimal:
		return Number(v), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		n, err := cast.ToInt64E(v)
		if err != nil {
			return Null(), err
		}
		return Number(decimal.NewFromInt(n)), nil
	case float32, float64:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return Null(), err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Null(), nil
		}
		return Number(decimal.NewFromFloat(f)), nil
	default:
		s, err := cast.ToStringE(v)
		if err != nil {
			return Null(), err
		}
		return Text(s), nil
	}
}
