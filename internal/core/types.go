package core

import (
	"time"

	"github.com/FranciscoH-alt/CSV-Excel-Cleaning-Tool/internal/table"
)

// Columns names the columns the cleaner treats specially. Names are
// normalized with NormalizeColumnName before use, so callers may pass the
// header exactly as it appears in the source file.
type Columns struct {
	FullName  string
	Email     string
	StartDate string
	Revenue   string
	Region    string
	Notes     string
}

// DefaultColumns returns the column names of the standard contact export.
func DefaultColumns() Columns {
	return Columns{
		FullName:  "full_name",
		Email:     "e-mail_address",
		StartDate: "start_date",
		Revenue:   "revenue($)",
		Region:    "region",
		Notes:     "notes",
	}
}

func (c Columns) normalized() Columns {
	return Columns{
		FullName:  NormalizeColumnName(c.FullName),
		Email:     NormalizeColumnName(c.Email),
		StartDate: NormalizeColumnName(c.StartDate),
		Revenue:   NormalizeColumnName(c.Revenue),
		Region:    NormalizeColumnName(c.Region),
		Notes:     NormalizeColumnName(c.Notes),
	}
}

// Options configures a Cleaner. The zero value is not useful; start from
// DefaultOptions.
type Options struct {
	Columns Columns

	// DateLayouts are tried before the built-in layouts.
	DateLayouts []string

	// TwoDigitYearPivot: 2-digit years landing more than this many years
	// after Now are moved back a century.
	TwoDigitYearPivot int

	// NotesSeparator joins the distinct notes of a group.
	NotesSeparator string

	// Now returns the reference time for 2-digit years. Defaults to time.Now.
	Now func() time.Time
}

// DefaultOptions returns the standard cleaning options.
func DefaultOptions() Options {
	return Options{
		Columns:           DefaultColumns(),
		TwoDigitYearPivot: 20,
		NotesSeparator:    "; ",
		Now:               time.Now,
	}
}

// FieldRule rewrites every value of one column. Rules are applied only when
// the column is present; an absent column is not an error.
//
// Apply must be pure and state its own null handling: it receives Null
// values too and decides whether they pass through, stay null or are coerced.
type FieldRule struct {
	Column string
	Apply  func(table.Value) table.Value
}

// Reducer folds the ordered values of one column within a group into one value.
type Reducer func(values []table.Value) table.Value

// Aggregation binds a reducer to a column.
type Aggregation struct {
	Column string
	Reduce Reducer
}

// Report summarizes one cleaning pass.
type Report struct {
	InputRows      int            // Rows in the input table
	ValidRows      int            // Rows that passed required-field validation
	DroppedRows    int            // Rows removed by validation
	DroppedByField map[string]int // Dropped rows keyed by the first null required field
	OutputRows     int            // Rows after grouping
	MergedRows     int            // Valid rows folded into another row of the same group
	Columns        []string       // Input columns after name normalization
	Exported       int64          // Rows copied to the database by Service.Run

	Rejected []ValidationError // One entry per dropped row, in input order
}
