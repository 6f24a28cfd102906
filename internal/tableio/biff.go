package tableio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"unicode/utf16"

	"github.com/extrame/ole2"

	"github.com/FranciscoH-alt/CSV-Excel-Cleaning-Tool/internal/table"
)

// BIFF8 record ids.
const (
	biffFormula    = 0x0006
	biffEOF        = 0x000A
	biffDateMode   = 0x0022
	biffBoundSheet = 0x0085
	biffMulRK      = 0x00BD
	biffMulBlank   = 0x00BE
	biffXF         = 0x00E0
	biffLabelSST   = 0x00FD
	biffBlank      = 0x0201
	biffNumber     = 0x0203
	biffLabel      = 0x0204
	biffBoolErr    = 0x0205
	biffString     = 0x0207
	biffRK         = 0x027E
	biffFormat     = 0x041E
	biffBOF        = 0x0809
)

var errNoWorkbookStream = errors.New("no workbook stream")

// biffSheet holds the cells of one worksheet whose value is stored as a
// number, boolean or formula result, plus the width of every row.
type biffSheet struct {
	cells  map[[2]int]table.Value
	widths map[int]int
}

// biffBook is the typed view of a legacy workbook that the text reader
// does not give: number formats, the date system and numeric cells.
type biffBook struct {
	date1904 bool
	formats  map[int]string
	xfFormat []int
	sheets   map[string]*biffSheet
}

// scanBIFF reads the workbook stream of a legacy .xls file.
func scanBIFF(data []byte) (*biffBook, error) {
	stream, err := workbookStream(data)
	if err != nil {
		return nil, err
	}

	book := &biffBook{formats: make(map[int]string), sheets: make(map[string]*biffSheet)}
	type sheetPos struct {
		name string
		pos  int
	}
	var positions []sheetPos

	walkRecords(stream, 0, func(id uint16, body []byte) bool {
		switch id {
		case biffDateMode:
			if len(body) >= 2 {
				book.date1904 = binary.LittleEndian.Uint16(body) == 1
			}
		case biffFormat:
			if len(body) >= 2 {
				book.formats[int(binary.LittleEndian.Uint16(body))] = biffString16(body[2:])
			}
		case biffXF:
			if len(body) >= 4 {
				book.xfFormat = append(book.xfFormat, int(binary.LittleEndian.Uint16(body[2:])))
			}
		case biffBoundSheet:
			if len(body) >= 8 {
				positions = append(positions, sheetPos{
					name: biffString8(body[6:]),
					pos:  int(binary.LittleEndian.Uint32(body)),
				})
			}
		case biffEOF:
			return false
		}
		return true
	})

	for _, p := range positions {
		book.sheets[p.name] = book.scanSheet(stream, p.pos)
	}
	return book, nil
}

// workbookStream extracts the "Workbook" (or BIFF5 "Book") stream from the
// OLE2 container.
func workbookStream(data []byte) ([]byte, error) {
	doc, err := ole2.Open(bytes.NewReader(data), "")
	if err != nil {
		return nil, err
	}
	dir, err := doc.ListDir()
	if err != nil {
		return nil, err
	}

	var book, root *ole2.File
	for _, f := range dir {
		switch f.Name() {
		case "Workbook", "Book":
			book = f
		case "Root Entry":
			root = f
		}
	}
	if book == nil || root == nil {
		return nil, errNoWorkbookStream
	}

	stream, err := io.ReadAll(doc.OpenFile(book, root))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read workbook stream: %w", err)
	}
	if len(stream) > int(book.Size) {
		stream = stream[:book.Size]
	}
	return stream, nil
}

// walkRecords calls fn for every record from pos until fn returns false or
// the stream ends.
func walkRecords(stream []byte, pos int, fn func(id uint16, body []byte) bool) {
	for pos >= 0 && pos+4 <= len(stream) {
		id := binary.LittleEndian.Uint16(stream[pos:])
		size := int(binary.LittleEndian.Uint16(stream[pos+2:]))
		end := pos + 4 + size
		if end > len(stream) {
			return
		}
		if !fn(id, stream[pos+4:end]) {
			return
		}
		pos = end
	}
}

// scanSheet reads the substream starting at pos. Embedded chart substreams
// are skipped.
func (b *biffBook) scanSheet(stream []byte, pos int) *biffSheet {
	s := &biffSheet{cells: make(map[[2]int]table.Value), widths: make(map[int]int)}
	depth := 0
	var pending *[2]int

	walkRecords(stream, pos, func(id uint16, body []byte) bool {
		switch id {
		case biffBOF:
			depth++
			return true
		case biffEOF:
			depth--
			return depth > 0
		case biffString:
			// The text result of the formula record just before it.
			if pending != nil && depth == 1 {
				s.set(pending[0], pending[1], table.Text(biffString16(body)))
			}
			pending = nil
			return true
		}
		if depth != 1 || len(body) < 6 {
			return true
		}

		row := int(binary.LittleEndian.Uint16(body))
		col := int(binary.LittleEndian.Uint16(body[2:]))
		xf := int(binary.LittleEndian.Uint16(body[4:]))

		switch id {
		case biffNumber:
			if len(body) >= 14 {
				f := math.Float64frombits(binary.LittleEndian.Uint64(body[6:]))
				s.set(row, col, b.number(xf, f))
			}
		case biffRK:
			if len(body) >= 10 {
				s.set(row, col, b.number(xf, rkValue(binary.LittleEndian.Uint32(body[6:]))))
			}
		case biffMulRK:
			n := (len(body) - 6) / 6
			for i := 0; i < n; i++ {
				off := 4 + 6*i
				xf := int(binary.LittleEndian.Uint16(body[off:]))
				s.set(row, col+i, b.number(xf, rkValue(binary.LittleEndian.Uint32(body[off+2:]))))
			}
		case biffFormula:
			if len(body) < 14 {
				break
			}
			res := body[6:14]
			if res[6] != 0xFF || res[7] != 0xFF {
				s.set(row, col, b.number(xf, math.Float64frombits(binary.LittleEndian.Uint64(res))))
				break
			}
			switch res[0] {
			case 0:
				pending = &[2]int{row, col}
				s.widen(row, col)
			case 1:
				s.set(row, col, boolText(res[2] != 0))
			default:
				s.set(row, col, table.Null())
			}
		case biffBoolErr:
			if len(body) >= 8 {
				if body[7] == 0 {
					s.set(row, col, boolText(body[6] != 0))
				} else {
					s.set(row, col, table.Null())
				}
			}
		case biffMulBlank:
			s.widen(row, col+(len(body)-6)/2-1)
		case biffLabelSST, biffLabel, biffBlank:
			s.widen(row, col)
		}
		return true
	})

	return s
}

func (s *biffSheet) set(row, col int, v table.Value) {
	s.cells[[2]int{row, col}] = v
	s.widen(row, col)
}

func (s *biffSheet) widen(row, col int) {
	if col+1 > s.widths[row] {
		s.widths[row] = col + 1
	}
}

// number types a stored number by the number format of its XF record.
func (b *biffBook) number(xf int, f float64) table.Value {
	isDate := false
	if xf >= 0 && xf < len(b.xfFormat) {
		id := b.xfFormat[xf]
		isDate = isDateFormat(id, b.formats[id])
	}
	return serialValue(f, isDate, b.date1904)
}

// rkValue decodes an RK number: a 30-bit integer or the high bits of a
// double, optionally divided by 100.
func rkValue(rk uint32) float64 {
	var f float64
	if rk&0x02 != 0 {
		f = float64(int32(rk) >> 2)
	} else {
		f = math.Float64frombits(uint64(rk&0xFFFFFFFC) << 32)
	}
	if rk&0x01 != 0 {
		f /= 100
	}
	return f
}

func boolText(b bool) table.Value {
	if b {
		return table.Text("TRUE")
	}
	return table.Text("FALSE")
}

// biffString16 decodes an XLUnicodeString: a 16-bit length, option flags,
// then Latin-1 or UTF-16 characters.
func biffString16(body []byte) string {
	if len(body) < 3 {
		return ""
	}
	return biffChars(body[2:], int(binary.LittleEndian.Uint16(body)))
}

// biffString8 decodes a ShortXLUnicodeString, which has an 8-bit length.
func biffString8(body []byte) string {
	if len(body) < 2 {
		return ""
	}
	return biffChars(body[1:], int(body[0]))
}

// biffChars decodes n characters after the option flags byte at body[0].
// Rich text runs and phonetic data only follow the characters and are ignored.
func biffChars(body []byte, n int) string {
	flags := body[0]
	body = body[1:]
	if flags&0x08 != 0 && len(body) >= 2 {
		body = body[2:]
	}
	if flags&0x04 != 0 && len(body) >= 4 {
		body = body[4:]
	}

	if flags&0x01 == 0 {
		n = min(n, len(body))
		runes := make([]rune, n)
		for i := 0; i < n; i++ {
			runes[i] = rune(body[i])
		}
		return string(runes)
	}

	n = min(n, len(body)/2)
	units := make([]uint16, n)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(body[2*i:])
	}
	return string(utf16.Decode(units))
}
