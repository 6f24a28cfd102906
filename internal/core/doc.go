// Package core cleans contact tables exported from spreadsheets.
//
// The package holds the cleaning rules and the file pipeline around them,
// independent of any CLI or storage layer. It can be used by the command,
// by other programs, or by tests without modification.
//
// # Cleaning
//
// [Cleaner.Clean] takes a [table.Table] and returns a new one. The steps
// always run in the same order:
//
//  1. Column names are trimmed, lowercased and spaces become underscores.
//  2. Text values are trimmed.
//  3. Field rules rewrite the special columns that are present: names and
//     regions are title-cased, emails lowercased and validated, start dates
//     parsed, revenue parsed as currency, notes collapsed to single spaces.
//  4. Rows with a null name, email or start date are dropped.
//  5. The remaining rows are grouped by (name, email). Each group becomes
//     one row: the latest start date, the revenue sum, the first region,
//     and the distinct notes joined with "; ".
//
// Field problems never fail the call. A value that cannot be interpreted
// becomes null, and step 4 decides whether the row survives.
//
//	out := core.Clean(in)
//
// # File Pipeline
//
// [Service.Run] wraps the cleaner with [tableio.Load] and [tableio.Save]:
//
//	svc := core.NewService(afero.NewOsFs(), core.NewCleaner(core.DefaultOptions()), core.ServiceOptions{})
//	report, err := svc.Run(ctx, "contacts.csv", "output/cleaned_file.xlsx")
//
// An optional [Exporter] receives the cleaned table after the file is saved.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - FILE001-FILE008: File errors (size, format, missing, sheets)
//   - CFG001-CFG002: Configuration errors
//   - DB001-DB010: Export errors
//   - RUN001: Cancellation
package core
