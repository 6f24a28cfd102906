package core

import (
	"time"

	"github.com/FranciscoH-alt/CSV-Excel-Cleaning-Tool/internal/table"
)

// Cleaner normalizes, validates and deduplicates a table.
// A Cleaner holds no per-run state and can be reused across tables.
type Cleaner struct {
	cols      Columns
	dates     dateParser
	separator string
}

// NewCleaner builds a cleaner. Empty column names and separator fall back to
// DefaultOptions.
func NewCleaner(opts Options) *Cleaner {
	def := DefaultOptions()

	cols := opts.Columns
	fill := func(v *string, d string) {
		if *v == "" {
			*v = d
		}
	}
	fill(&cols.FullName, def.Columns.FullName)
	fill(&cols.Email, def.Columns.Email)
	fill(&cols.StartDate, def.Columns.StartDate)
	fill(&cols.Revenue, def.Columns.Revenue)
	fill(&cols.Region, def.Columns.Region)
	fill(&cols.Notes, def.Columns.Notes)

	sep := opts.NotesSeparator
	if sep == "" {
		sep = def.NotesSeparator
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Cleaner{
		cols:      cols.normalized(),
		dates:     dateParser{extra: opts.DateLayouts, pivot: opts.TwoDigitYearPivot, now: now},
		separator: sep,
	}
}

// Clean runs the default cleaner over t.
func Clean(t *table.Table) *table.Table {
	return NewCleaner(DefaultOptions()).Clean(t)
}

// Clean returns the cleaned table. The input is not modified.
func (c *Cleaner) Clean(t *table.Table) *table.Table {
	out, _ := c.CleanReport(t)
	return out
}

// Columns returns the normalized names of the special columns.
func (c *Cleaner) Columns() Columns {
	return c.cols
}

// FieldRules returns the per-column rules in the order they are applied.
func (c *Cleaner) FieldRules() []FieldRule {
	return []FieldRule{
		{Column: c.cols.FullName, Apply: titleText},
		{Column: c.cols.Email, Apply: emailValue},
		{Column: c.cols.StartDate, Apply: c.dates.ToDate},
		{Column: c.cols.Revenue, Apply: ToNumber},
		{Column: c.cols.Region, Apply: titleText},
		{Column: c.cols.Notes, Apply: notesValue},
	}
}

// Aggregations returns the reducers applied to each group, in output column order.
func (c *Cleaner) Aggregations() []Aggregation {
	return []Aggregation{
		{Column: c.cols.StartDate, Reduce: MaxDate},
		{Column: c.cols.Revenue, Reduce: Sum},
		{Column: c.cols.Region, Reduce: First},
		{Column: c.cols.Notes, Reduce: JoinDistinct(c.separator)},
	}
}

// CleanReport cleans t and reports what happened. Steps run in a fixed
// order because each relies on the normalization done before it:
//
//  1. column names normalized
//  2. text trimmed
//  3. field rules applied to the columns that exist
//  4. rows with a null name, email or start date dropped
//  5. rows grouped by (name, email) and aggregated
func (c *Cleaner) CleanReport(in *table.Table) (*table.Table, Report) {
	t := in.Clone()
	report := Report{InputRows: t.Len(), DroppedByField: make(map[string]int)}

	normalizeColumns(t)
	report.Columns = append([]string(nil), t.Columns...)

	for _, row := range t.Rows {
		for col, v := range row {
			row[col] = trimText(v)
		}
	}

	for _, rule := range c.FieldRules() {
		if !t.HasColumn(rule.Column) {
			continue
		}
		for _, row := range t.Rows {
			row[rule.Column] = rule.Apply(row.Get(rule.Column))
		}
	}

	validator := NewRowValidator(c.cols.FullName, c.cols.Email, c.cols.StartDate)
	kept, rejected := validator.Filter(t.Rows)
	for _, r := range rejected {
		report.DroppedByField[r.Field]++
	}
	report.Rejected = rejected
	report.ValidRows = len(kept)
	report.DroppedRows = len(rejected)

	var aggs []Aggregation
	columns := []string{c.cols.FullName, c.cols.Email}
	for _, agg := range c.Aggregations() {
		if t.HasColumn(agg.Column) {
			aggs = append(aggs, agg)
			columns = append(columns, agg.Column)
		}
	}

	out := table.New(columns...)
	out.Rows = groupBy(kept, c.cols.FullName, c.cols.Email, aggs)

	report.OutputRows = out.Len()
	report.MergedRows = report.ValidRows - report.OutputRows
	return out, report
}

// normalizeColumns renames every column with NormalizeColumnName. If two
// names collapse into one, the column keeps its first position and the
// later column's values win.
func normalizeColumns(t *table.Table) {
	names := make([]string, len(t.Columns))
	var columns []string
	seen := make(map[string]bool, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = NormalizeColumnName(c)
		if !seen[names[i]] {
			seen[names[i]] = true
			columns = append(columns, names[i])
		}
	}

	for i, row := range t.Rows {
		nr := make(table.Row, len(columns))
		for j, c := range t.Columns {
			nr[names[j]] = row.Get(c)
		}
		t.Rows[i] = nr
	}
	t.Columns = columns
}
