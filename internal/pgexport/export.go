// Package pgexport copies cleaned tables into PostgreSQL.
package pgexport

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/FranciscoH-alt/CSV-Excel-Cleaning-Tool/internal/logging"
	"github.com/FranciscoH-alt/CSV-Excel-Cleaning-Tool/internal/table"
)

// ErrInvalidTableName is returned when the destination name is empty or has
// an empty part.
var ErrInvalidTableName = errors.New("invalid table name")

// Beginner starts transactions. *pgxpool.Pool satisfies it.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Column types used for the destination table.
const (
	typeText    = "text"
	typeDate    = "date"
	typeNumeric = "numeric"
)

// Exporter writes tables to one destination table.
type Exporter struct {
	db       Beginner
	table    pgx.Identifier
	truncate bool
}

// NewExporter creates an exporter for tableName, which may be schema
// qualified ("reports.contacts"). If truncate is set, existing rows are
// removed in the same transaction as the copy.
func NewExporter(db Beginner, tableName string, truncate bool) (*Exporter, error) {
	ident, err := parseIdentifier(tableName)
	if err != nil {
		return nil, err
	}
	return &Exporter{db: db, table: ident, truncate: truncate}, nil
}

func parseIdentifier(name string) (pgx.Identifier, error) {
	parts := strings.Split(strings.TrimSpace(name), ".")
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTableName, name)
		}
	}
	return pgx.Identifier(parts), nil
}

// Export creates the destination table if needed and copies every row of t.
// Everything runs in one transaction; on error nothing is kept.
// Returns the number of rows copied.
func (e *Exporter) Export(ctx context.Context, t *table.Table) (int64, error) {
	start := time.Now()
	types := ColumnTypes(t)

	tx, err := e.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err := tx.Exec(ctx, CreateTableSQL(e.table, t.Columns, types)); err != nil {
		return 0, fmt.Errorf("create table %s: %w", e.table.Sanitize(), err)
	}

	if e.truncate {
		if _, err := tx.Exec(ctx, "TRUNCATE TABLE "+e.table.Sanitize()); err != nil {
			return 0, fmt.Errorf("truncate %s: %w", e.table.Sanitize(), err)
		}
	}

	rows, err := copyRows(t, types)
	if err != nil {
		return 0, err
	}

	n, err := tx.CopyFrom(ctx, e.table, t.Columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copy rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	committed = true

	logging.FromContext(ctx).Info("table exported",
		"table", e.table.Sanitize(),
		"rows", n,
		"truncated", e.truncate,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return n, nil
}

// ColumnTypes picks a Postgres type per column from the kinds of its
// non-null values. Mixed or all-null columns are text.
func ColumnTypes(t *table.Table) []string {
	types := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		kind := table.KindNull
		mixed := false
		for _, row := range t.Rows {
			v := row.Get(col)
			if v.IsNull() {
				continue
			}
			if kind == table.KindNull {
				kind = v.Kind
			} else if v.Kind != kind {
				mixed = true
				break
			}
		}

		switch {
		case mixed:
			types[i] = typeText
		case kind == table.KindDate:
			types[i] = typeDate
		case kind == table.KindNumber:
			types[i] = typeNumeric
		default:
			types[i] = typeText
		}
	}
	return types
}

// CreateTableSQL renders CREATE TABLE IF NOT EXISTS for the given columns.
func CreateTableSQL(name pgx.Identifier, columns, types []string) string {
	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = pgx.Identifier{col}.Sanitize() + " " + types[i]
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", name.Sanitize(), strings.Join(defs, ", "))
}

func copyRows(t *table.Table, types []string) ([][]any, error) {
	rows := make([][]any, len(t.Rows))
	for i, row := range t.Rows {
		rec := make([]any, len(t.Columns))
		for j, col := range t.Columns {
			v, err := pgValue(row.Get(col), types[j])
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", i, col, err)
			}
			rec[j] = v
		}
		rows[i] = rec
	}
	return rows, nil
}

// pgValue converts v for a column of type typ. Null becomes an invalid
// pgtype value so COPY writes NULL.
func pgValue(v table.Value, typ string) (any, error) {
	switch typ {
	case typeDate:
		if v.Kind != table.KindDate {
			return pgtype.Date{}, nil
		}
		return pgtype.Date{Time: v.Date, Valid: true}, nil

	case typeNumeric:
		if v.Kind != table.KindNumber {
			return pgtype.Numeric{}, nil
		}
		var n pgtype.Numeric
		if err := n.Scan(v.Number.String()); err != nil {
			return nil, fmt.Errorf("numeric %s: %w", v.Number, err)
		}
		return n, nil

	default:
		if v.IsNull() {
			return pgtype.Text{}, nil
		}
		return pgtype.Text{String: v.String(), Valid: true}, nil
	}
}
