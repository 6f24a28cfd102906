// Package table holds the in-memory representation of a loaded dataset.
//
// A Table is an ordered list of column names plus an ordered list of rows.
// Each cell is a Value, an explicit nullable type: there is no sentinel
// "missing" string anywhere in the model. Loaders produce Text values,
// cleaning rules convert them to Number or Date where appropriate, and any
// value that cannot be interpreted becomes Null.
package table

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies which field of a Value is populated.
type Kind int

const (
	KindNull Kind = iota
	KindText
	KindNumber
	KindDate
)

// DateLayout is the canonical rendering of a Date value.
const DateLayout = "2006-01-02"

// Value is a single nullable cell.
type Value struct {
	Kind   Kind
	Text   string
	Number decimal.Decimal
	Date   time.Time
}

// Null returns the null value.
func Null() Value {
	return Value{Kind: KindNull}
}

// Text returns a text value. Empty strings are kept as text, not null.
func Text(s string) Value {
	return Value{Kind: KindText, Text: s}
}

// Number returns a numeric value.
func Number(d decimal.Decimal) Value {
	return Value{Kind: KindNumber, Number: d}
}

// Date returns a calendar date value. The time of day and location are
// discarded; the date is stored at midnight UTC.
func Date(t time.Time) Value {
	y, m, d := t.Date()
	return Value{Kind: KindDate, Date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// IsNull reports whether v is null.
func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

// IsText reports whether v holds a string.
func (v Value) IsText() bool {
	return v.Kind == KindText
}

// String renders the value for display and text output.
// Null renders as the empty string.
func (v Value) String() string {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindNumber:
		return v.Number.String()
	case KindDate:
		return v.Date.Format(DateLayout)
	default:
		return ""
	}
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindText:
		return v.Text == o.Text
	case KindNumber:
		return v.Number.Equal(o.Number)
	case KindDate:
		return v.Date.Equal(o.Date)
	default:
		return true
	}
}
