package core

// convert.go turns the messy text of user spreadsheets into typed values.
//
// These functions handle:
//   - Multiple date formats (ISO, US, EU, month names, 2-digit years)
//   - Currency symbols and thousands separators in numbers
//   - The literal N/A and NULL placeholders
//
// Nothing here returns an error: input that cannot be interpreted becomes
// table.Null(), and required-field validation decides what happens to the row.

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FranciscoH-alt/CSV-Excel-Cleaning-Tool/internal/table"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// Parsed numbers must stay within these bounds. Arithmetic on a decimal with
// a huge exponent expands its coefficient to that many digits.
const (
	maxNumberExponent = 100
	maxNumberDigits   = 100
)

// Date layouts grouped by how they are tried. Month-first is preferred for
// slash dates; day-first is only a fallback for values like 13/01/2023.
var (
	isoLayouts = []string{
		"2006-01-02", time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05",
		"2006-01-02 15:04", "2006/01/02", "2006.01.02", "20060102",
	}
	monthFirstLayouts = []string{
		"1/2/2006", "1-2-2006", "1.2.2006", "1/2/2006 15:04", "1/2/2006 15:04:05",
	}
	namedMonthLayouts = []string{
		"Jan 2, 2006", "January 2, 2006", "Jan 2 2006", "January 2 2006",
		"2 Jan 2006", "2 January 2006", "2-Jan-2006", "Mon, 2 Jan 2006", "Monday, January 2, 2006",
	}
	dayFirstLayouts = []string{
		"2/1/2006", "2-1-2006", "2.1.2006",
	}
	twoDigitYearLayouts = []string{
		"1/2/06", "1-2-06", "1.2.06", "2-Jan-06", "2/1/06",
	}
)

// dateParser parses calendar dates with an optional set of extra layouts.
type dateParser struct {
	extra []string
	pivot int
	now   func() time.Time
}

// Parse returns the date in s, or false if no layout matches.
func (p dateParser) Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, group := range [][]string{p.extra, isoLayouts, monthFirstLayouts, namedMonthLayouts, dayFirstLayouts} {
		for _, layout := range group {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}

	// Try 2-digit year layouts with pivot year adjustment
	now := time.Now
	if p.now != nil {
		now = p.now
	}
	pivotYear := now().Year() + p.pivot

	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}

	return time.Time{}, false
}

// ToDate converts a value to a calendar date.
// Dates pass through, text is parsed, anything else (or unparseable text) is null.
func (p dateParser) ToDate(v table.Value) table.Value {
	switch v.Kind {
	case table.KindDate:
		return v
	case table.KindText:
		if t, ok := p.Parse(v.Text); ok {
			return table.Date(t)
		}
	}
	return table.Null()
}

// ToNumber converts a currency-formatted value to a number.
// Numbers pass through. Text has "$" and "," removed; "N/A", "NULL" and
// empty text become null, as does anything that is not a plain decimal.
func ToNumber(v table.Value) table.Value {
	switch v.Kind {
	case table.KindNumber:
		return v
	case table.KindText:
		d, ok := ParseCurrency(v.Text)
		if !ok {
			return table.Null()
		}
		return table.Number(d)
	default:
		return table.Null()
	}
}

// ParseCurrency parses s after removing currency symbols and thousands separators.
// Values with more than maxNumberDigits digits or an exponent beyond
// maxNumberExponent are rejected.
func ParseCurrency(s string) (decimal.Decimal, bool) {
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	switch s {
	case "", "N/A", "NULL":
		return decimal.Decimal{}, false
	}

	if !numericRegex.MatchString(s) {
		return decimal.Decimal{}, false
	}

	d, err := decimal.NewFromString(strings.TrimPrefix(s, "+"))
	if err != nil {
		return decimal.Decimal{}, false
	}
	if exp := d.Exponent(); exp > maxNumberExponent || exp < -maxNumberExponent || d.NumDigits() > maxNumberDigits {
		return decimal.Decimal{}, false
	}
	return d, true
}
