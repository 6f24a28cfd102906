package tableio

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/FranciscoH-alt/CSV-Excel-Cleaning-Tool/internal/table"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func init() {
	Register(Format{
		Name:       "Excel",
		Extensions: []string{".xlsx"},
		MIMETypes:  []string{xlsxMIME},
		Read:       readXLSX,
		Write:      writeXLSX,
	})
}

// readXLSX reads one worksheet from its stored cell values. Numeric cells
// load as numbers, or as dates when their number format shows a date;
// everything else loads as text.
func readXLSX(data []byte, opts ReadOptions) (*table.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet, err := pickSheet(f.GetSheetList(), opts.Sheet)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	cells := &xlsxCells{f: f, sheet: sheet, dateStyles: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		cells.date1904 = *props.Date1904
	}

	return buildTable(rows, opts, cells.value)
}

// xlsxCells types the raw cells of one worksheet.
type xlsxCells struct {
	f          *excelize.File
	sheet      string
	date1904   bool
	dateStyles map[int]bool
}

// value types the cell behind a GetRows record. Record r is worksheet row r+1.
func (x *xlsxCells) value(record, col int, raw string) (table.Value, bool) {
	if raw == "" {
		return table.Value{}, false
	}
	cell, err := excelize.CoordinatesToCellName(col+1, record+1)
	if err != nil {
		return table.Value{}, false
	}
	typ, err := x.f.GetCellType(x.sheet, cell)
	if err != nil {
		return table.Value{}, false
	}

	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
	case excelize.CellTypeDate:
		if t, ok := parseISOCell(raw); ok {
			return table.Date(t), true
		}
		return table.Value{}, false
	case excelize.CellTypeBool:
		if raw == "1" {
			return table.Text("TRUE"), true
		}
		return table.Text("FALSE"), true
	default:
		return table.Value{}, false
	}

	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return table.Value{}, false
	}
	return serialValue(n, x.isDateCell(cell), x.date1904), true
}

func (x *xlsxCells) isDateCell(cell string) bool {
	idx, err := x.f.GetCellStyle(x.sheet, cell)
	if err != nil {
		return false
	}
	if isDate, ok := x.dateStyles[idx]; ok {
		return isDate
	}

	isDate := false
	if style, err := x.f.GetStyle(idx); err == nil && style != nil {
		code := ""
		if style.CustomNumFmt != nil {
			code = *style.CustomNumFmt
		}
		isDate = isDateFormat(style.NumFmt, code)
	}
	x.dateStyles[idx] = isDate
	return isDate
}

// writeXLSX writes a single-sheet workbook with a header row.
// Numbers are stored as numbers and dates as date serials.
func writeXLSX(w io.Writer, t *table.Table, opts WriteOptions) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := opts.sheet()
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return fmt.Errorf("name sheet: %w", err)
		}
	}

	dateFmt := opts.dateFormat()
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return fmt.Errorf("date style: %w", err)
	}

	for i, c := range t.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(sheet, cell, c); err != nil {
			return err
		}
	}

	for r, row := range t.Rows {
		for i, c := range t.Columns {
			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return err
			}
			if err := setXLSXCell(f, sheet, cell, row.Get(c), dateStyle); err != nil {
				return fmt.Errorf("cell %s: %w", cell, err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setXLSXCell(f *excelize.File, sheet, cell string, v table.Value, dateStyle int) error {
	switch v.Kind {
	case table.KindText:
		return f.SetCellStr(sheet, cell, v.Text)
	case table.KindNumber:
		return f.SetCellValue(sheet, cell, v.Number.InexactFloat64())
	case table.KindDate:
		if err := f.SetCellValue(sheet, cell, v.Date); err != nil {
			return err
		}
		return f.SetCellStyle(sheet, cell, cell, dateStyle)
	default:
		return nil
	}
}

// pickSheet returns want if it exists, or the first sheet when want is empty.
func pickSheet(sheets []string, want string) (string, error) {
	if len(sheets) == 0 {
		return "", ErrEmptyFile
	}
	if want == "" {
		return sheets[0], nil
	}
	for _, s := range sheets {
		if s == want {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrSheetNotFound, want)
}
