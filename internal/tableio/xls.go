package tableio

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"

	"github.com/FranciscoH-alt/CSV-Excel-Cleaning-Tool/internal/table"
)

func init() {
	// Legacy BIFF workbooks are read-only; cleaned output goes to .xlsx or .csv.
	Register(Format{
		Name:       "Excel 97-2003",
		Extensions: []string{".xls"},
		MIMETypes:  []string{"application/vnd.ms-excel", "application/x-ole-storage"},
		Read:       readXLS,
	})
}

// readXLS reads one worksheet of a legacy workbook. Text comes from the
// xls reader; numbers, dates, booleans and formula results come from the
// BIFF records, which carry the number format the text reader drops.
func readXLS(data []byte, opts ReadOptions) (*table.Table, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	book, err := scanBIFF(data)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}

	names := make([]string, 0, wb.NumSheets())
	sheets := make(map[string]*xls.WorkSheet, wb.NumSheets())
	for i := 0; i < wb.NumSheets(); i++ {
		ws := wb.GetSheet(i)
		if ws == nil {
			continue
		}
		names = append(names, ws.Name)
		sheets[ws.Name] = ws
	}

	name, err := pickSheet(names, opts.Sheet)
	if err != nil {
		return nil, err
	}

	typed := book.sheets[name]
	if typed == nil {
		typed = &biffSheet{cells: map[[2]int]table.Value{}, widths: map[int]int{}}
	}
	records, first := xlsRecords(sheets[name], typed)

	return buildTable(records, opts, func(record, col int, _ string) (table.Value, bool) {
		v, ok := typed.cells[[2]int{first + record, col}]
		return v, ok
	})
}

// xlsRecords flattens a worksheet into string records starting at its first
// row, which it also returns. Missing rows come back as empty records and
// are skipped by buildTable.
func xlsRecords(ws *xls.WorkSheet, typed *biffSheet) ([][]string, int) {
	var records [][]string
	first, width := 0, 0
	for i := 0; i <= int(ws.MaxRow); i++ {
		row := xlsRow(ws, i)
		if row == nil {
			if len(records) > 0 {
				records = append(records, nil)
			}
			continue
		}
		if len(records) == 0 {
			first = i
			width = max(row.LastCol(), typed.widths[i])
		}
		rec := make([]string, width)
		for c := 0; c < width; c++ {
			rec[c] = row.Col(c)
		}
		records = append(records, rec)
	}
	return records, first
}

// xlsRow returns row i, or nil when the sheet has no record for it.
// WorkSheet.Row dereferences missing rows, so that panic becomes nil.
func xlsRow(ws *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return ws.Row(i)
}
