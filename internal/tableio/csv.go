package tableio

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/FranciscoH-alt/CSV-Excel-Cleaning-Tool/internal/table"
)

func init() {
	Register(Format{
		Name:       "CSV",
		Extensions: []string{".csv"},
		Read:       readCSV,
		Write:      writeCSV,
	})
}

// readCSV parses delimited text. Ragged rows and stray quotes are tolerated.
func readCSV(data []byte, opts ReadOptions) (*table.Table, error) {
	r := csv.NewReader(newTextReader(bytes.NewReader(data)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}

	for _, rec := range records {
		for i, c := range rec {
			rec[i] = unwrapExcelText(c)
		}
	}

	return buildTable(records, opts, nil)
}

// writeCSV writes a header row followed by one line per row. Null cells are empty.
func writeCSV(w io.Writer, t *table.Table, _ WriteOptions) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(t.Columns); err != nil {
		return err
	}

	rec := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, c := range t.Columns {
			rec[i] = row.Get(c).String()
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
