package core

// validation.go rejects rows whose required fields are null after cleaning.
//
// This is the only place rows are dropped. Field rules never fail; they turn
// bad values into nulls, and the validator decides whether a null is fatal
// for the row.

import (
	"fmt"

	"github.com/FranciscoH-alt/CSV-Excel-Cleaning-Tool/internal/table"
)

// ValidationError represents a rejected row.
type ValidationError struct {
	Row     int    // Zero-based index in the cleaned input
	Field   string // First required column found null
	Message string // Human-readable error message
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("row %d: %s: %s", e.Row, e.Field, e.Message)
}

// RowValidator checks rows for null required fields.
type RowValidator struct {
	required []string
}

// NewRowValidator creates a validator for the given required columns.
// A required column missing from the table reads as null for every row.
func NewRowValidator(required ...string) *RowValidator {
	return &RowValidator{required: required}
}

// ValidateRow returns the first failing field of row i, or nil.
func (v *RowValidator) ValidateRow(i int, row table.Row) error {
	if verr, failed := v.check(i, row); failed {
		return verr
	}
	return nil
}

func (v *RowValidator) check(i int, row table.Row) (ValidationError, bool) {
	for _, col := range v.required {
		if row.Get(col).IsNull() {
			return ValidationError{Row: i, Field: col, Message: "required field is empty"}, true
		}
	}
	return ValidationError{}, false
}

// Filter returns the rows that pass, in their original order, and one
// ValidationError per rejected row.
func (v *RowValidator) Filter(rows []table.Row) ([]table.Row, []ValidationError) {
	kept := make([]table.Row, 0, len(rows))
	var rejected []ValidationError

	for i, r := range rows {
		if verr, failed := v.check(i, r); failed {
			rejected = append(rejected, verr)
			continue
		}
		kept = append(kept, r)
	}

	return kept, rejected
}
