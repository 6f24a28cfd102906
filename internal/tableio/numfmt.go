package tableio

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"github.com/xuri/nfp"

	"github.com/FranciscoH-alt/CSV-Excel-Cleaning-Tool/internal/table"
)

// builtinDateFormats are the built-in number format ids that show a date in
// every locale. Ids 18-21 and 45-47 are time-only and stay numeric.
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 36: true,
	50: true, 51: true, 54: true, 57: true, 58: true,
}

// isDateFormat reports whether a cell with number format id and format code
// holds a date. code is empty for built-in formats.
func isDateFormat(id int, code string) bool {
	if code == "" {
		return builtinDateFormats[id]
	}
	return isDateFormatCode(code)
}

// isDateFormatCode reports whether the positive section of a number format
// code has a year, day, era or month-name token. Formats made only of hours,
// minutes and seconds are durations, not dates.
func isDateFormatCode(code string) bool {
	p := nfp.NumberFormatParser()
	sections := p.Parse(code)
	if len(sections) == 0 {
		return false
	}
	for _, tok := range sections[0].Items {
		if tok.TType != nfp.TokenTypeDateTimes {
			continue
		}
		v := strings.ToLower(tok.TValue)
		if strings.ContainsAny(v, "ydeg") || strings.Contains(v, "mmm") {
			return true
		}
	}
	return false
}

// serialValue converts a stored spreadsheet number to a table value. Date
// formatted serials become dates; everything else keeps 15 significant
// digits, the precision spreadsheets display.
func serialValue(f float64, isDate, date1904 bool) table.Value {
	if isDate {
		if t, err := excelize.ExcelDateToTime(f, date1904); err == nil {
			return table.Date(t)
		}
	}
	d, err := decimal.NewFromString(strconv.FormatFloat(f, 'g', 15, 64))
	if err != nil {
		return table.Number(decimal.NewFromFloat(f))
	}
	return table.Number(d)
}

// isoCellLayouts parse cells stored with the ISO 8601 date cell type.
var isoCellLayouts = []string{
	time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05", "2006-01-02",
}

func parseISOCell(s string) (time.Time, bool) {
	for _, layout := range isoCellLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
