package tableio

import (
	"context"
	"fmt"
	"math"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/FranciscoH-alt/CSV-Excel-Cleaning-Tool/internal/table"
)

func day(y int, m time.Month, d int) table.Value {
	return table.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func number(s string) table.Value {
	return table.Number(decimal.RequireFromString(s))
}

func assertValue(t *testing.T, want, got table.Value, msgAndArgs ...any) {
	t.Helper()
	if !want.Equal(got) {
		assert.Fail(t, fmt.Sprintf("want %q (kind %d), got %q (kind %d)", want, want.Kind, got, got.Kind), msgAndArgs...)
	}
}

// ----------------------------------------------------------------------------
// Number Format Tests
// ----------------------------------------------------------------------------

func TestIsDateFormat(t *testing.T) {
	tests := []struct {
		name string
		id   int
		code string
		want bool
	}{
		{name: "builtin short date", id: 14, want: true},
		{name: "builtin date time", id: 22, want: true},
		{name: "builtin general", id: 0, want: false},
		{name: "builtin thousands", id: 4, want: false},
		{name: "builtin time only", id: 20, want: false},
		{name: "day first", id: 164, code: "dd/mm/yyyy", want: true},
		{name: "day and month name", id: 164, code: "d-mmm", want: true},
		{name: "date and time", id: 164, code: "mm/dd/yy hh:mm", want: true},
		{name: "quoted literals", id: 164, code: `yyyy"年"m"月"d"日"`, want: true},
		{name: "iso", id: 164, code: "yyyy-mm-dd", want: true},
		{name: "time only", id: 164, code: "hh:mm:ss", want: false},
		{name: "currency", id: 164, code: `"$"#,##0.00`, want: false},
		{name: "quoted date letters", id: 164, code: `0.00" days"`, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isDateFormat(tt.id, tt.code); got != tt.want {
				t.Errorf("isDateFormat(%d, %q) = %v, want %v", tt.id, tt.code, got, tt.want)
			}
		})
	}
}

func TestRKValue(t *testing.T) {
	negSeven := int32(-7)
	tests :=  []struct {
		name string
		rk   uint32
		want float64
	}{
		{name: "integer", rk: 44931<<2 | 0x02, want: 44931},
		{name: "negative integer", rk: uint32(negSeven<<2) | 0x02, want: -7},
		{name: "integer over 100", rk: 1234<<2 | 0x03, want: 12.34},
		{name: "double", rk: uint32(math.Float64bits(2.5) >> 32), want: 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rkValue(tt.rk); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("rkValue(%#x) = %v, want %v", tt.rk, got, tt.want)
			}
		})
	}
}

func TestSerialValue(t *testing.T) {
	assertValue(t, day(2023, 1, 5), serialValue(44931, true, false))
	assertValue(t, day(2027, 1, 6), serialValue(44931, true, true), "1904 date system")
	assertValue(t, number("44931"), serialValue(44931, false, false))
	assertValue(t, number("0.1"), serialValue(0.1, false, false), "binary noise is dropped")
}

// ----------------------------------------------------------------------------
// XLSX Cell Type Tests
// ----------------------------------------------------------------------------

// saveWorkbook writes f to fs at path.
func saveWorkbook(t *testing.T, fs afero.Fs, path string, f *excelize.File) {
	t.Helper()
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, path, buf.Bytes(), 0o644))
}

func TestLoad_XLSXDateFormats(t *testing.T) {
	tests := []struct {
		name   string
		style  excelize.Style
		serial float64
		want   table.Value
	}{
		{name: "day first", style: excelize.Style{CustomNumFmt: strPtr("dd/mm/yyyy")}, serial: 44931, want: day(2023, 1, 5)},
		{name: "day and month name", style: excelize.Style{CustomNumFmt: strPtr("d-mmm")}, serial: 44931, want: day(2023, 1, 5)},
		{
			name:   "date and time",
			style:  excelize.Style{CustomNumFmt: strPtr("mm/dd/yy hh:mm")},
			serial: 44931.4375,
			want:   table.Date(time.Date(2023, 1, 5, 10, 30, 0, 0, time.UTC)),
		},
		{name: "quoted literals", style: excelize.Style{CustomNumFmt: strPtr(`yyyy"年"m"月"d"日"`)}, serial: 44931, want: day(2023, 1, 5)},
		{name: "builtin short date", style: excelize.Style{NumFmt: 14}, serial: 45000, want: day(2023, 3, 15)},
		{name: "thousands", style: excelize.Style{CustomNumFmt: strPtr("#,##0.00")}, serial: 1234.5, want: number("1234.5")},
		{name: "time only", style: excelize.Style{CustomNumFmt: strPtr("hh:mm")}, serial: 0.5, want: number("0.5")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := excelize.NewFile()
			defer f.Close()
			require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Full Name", "Start Date"}))
			require.NoError(t, f.SetCellValue("Sheet1", "A2", "Al"))
			require.NoError(t, f.SetCellValue("Sheet1", "B2", tt.serial))
			style, err := f.NewStyle(&tt.style)
			require.NoError(t, err)
			require.NoError(t, f.SetCellStyle("Sheet1", "B2", "B2", style))

			fs := afero.NewMemMapFs()
			saveWorkbook(t, fs, "in.xlsx", f)

			tbl, err := Load(context.Background(), fs, "in.xlsx", ReadOptions{})
			require.NoError(t, err)
			require.Equal(t, 1, tbl.Len())
			assertValue(t, tt.want, tbl.Rows[0]["Start Date"])
		})
	}
}

func TestLoad_XLSXCellTypes(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"name", "amount", "flag", "code", "when"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"Al", 150, true, "00123", "N/A"}))
	// Row 3 is left empty.
	require.NoError(t, f.SetSheetRow("Sheet1", "A4", &[]any{"Bo", 12.5, false, "x"}))
	require.NoError(t, f.SetCellFormula("Sheet1", "B5", "B2*2"))
	require.NoError(t, f.SetCellValue("Sheet1", "A5", "Cy"))

	fs := afero.NewMemMapFs()
	saveWorkbook(t, fs, "in.xlsx", f)

	tbl, err := Load(context.Background(), fs, "in.xlsx", ReadOptions{})
	require.NoError(t, err)
	require.Equal(t, 3, tbl.Len(), "the empty row is skipped")

	first := tbl.Rows[0]
	assertValue(t, table.Text("Al"), first["name"])
	assertValue(t, number("150"), first["amount"])
	assertValue(t, table.Text("TRUE"), first["flag"])
	assertValue(t, table.Text("00123"), first["code"], "text cells keep leading zeros")
	assert.True(t, first["when"].IsNull(), "null tokens apply to text cells")

	second := tbl.Rows[1]
	assertValue(t, table.Text("Bo"), second["name"])
	assertValue(t, number("12.5"), second["amount"])
	assertValue(t, table.Text("FALSE"), second["flag"])
	assert.True(t, second["when"].IsNull(), "short rows are padded with null")

	third := tbl.Rows[2]
	assertValue(t, table.Text("Cy"), third["name"])
	assert.True(t, third["amount"].IsNull(), "a formula without a cached result is empty")
}

func strPtr(s string) *string { return &s }

// ----------------------------------------------------------------------------
// XLS Tests
// ----------------------------------------------------------------------------

// loadFixture copies a testdata file into a memory filesystem.
func loadFixture(t *testing.T, name string) afero.Fs {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, name, data, 0o644))
	return fs
}

func TestLoad_XLS(t *testing.T) {
	fs := loadFixture(t, "contacts.xls")

	tbl, err := Load(context.Background(), fs, "contacts.xls", ReadOptions{Sheet: "Contacts"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Full Name", "E-Mail Address", "Start Date", "Revenue($)", "Notes"}, tbl.Columns)
	require.Equal(t, 4, tbl.Len(), "the missing worksheet row is skipped")

	tests := []struct {
		name  string
		email string
		start table.Value
		rev   table.Value
		notes table.Value
	}{
		{name: "alice smith", email: "A@X.COM", start: day(2023, 1, 5), rev: number("100"), notes: table.Text("vip")},
		{name: "Bob", email: "b@x.com", start: day(2023, 1, 5), rev: number("1234.5"), notes: table.Null()},
		{name: "Cy", email: "c@x.com", start: day(2023, 3, 15), rev: number("7.25"), notes: table.Text("see memo")},
		{name: "Dee", email: "d@x.com", start: day(2023, 1, 5), rev: number("2.5"), notes: table.Text("TRUE")},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := tbl.Rows[i]
			assertValue(t, table.Text(tt.name), row["Full Name"])
			assertValue(t, table.Text(tt.email), row["E-Mail Address"])
			assertValue(t, tt.start, row["Start Date"])
			assertValue(t, tt.rev, row["Revenue($)"])
			assertValue(t, tt.notes, row["Notes"])
		})
	}
}

func TestLoad_XLSDefaultSheet(t *testing.T) {
	fs := loadFixture(t, "contacts.xls")

	tbl, err := Load(context.Background(), fs, "contacts.xls", ReadOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"memo"}, tbl.Columns)
	require.Equal(t, 1, tbl.Len())
	assertValue(t, table.Text("hello"), tbl.Rows[0]["memo"])
}

func TestLoad_XLSSheetNotFound(t *testing.T) {
	fs := loadFixture(t, "contacts.xls")

	_, err := Load(context.Background(), fs, "contacts.xls", ReadOptions{Sheet: "Missing"})
	assert.ErrorIs(t, err, ErrSheetNotFound)
}

func TestLoad_CorruptXLS(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "bad.xls", "this is not a workbook")

	_, err := Load(context.Background(), fs, "bad.xls", ReadOptions{})
	assert.Error(t, err)
}
