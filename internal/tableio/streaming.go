package tableio

// streaming.go wraps raw text input before CSV parsing:
//
//   - A UTF-8 BOM (0xEF 0xBB 0xBF), commonly written by Windows programs, is
//     stripped. UTF-16 input with a BOM is transcoded to UTF-8.
//   - Invalid UTF-8 sequences are replaced with U+FFFD instead of failing.

import (
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// newTextReader returns r decoded to clean UTF-8.
func newTextReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// unwrapExcelText removes the ="..." wrapper spreadsheet programs use to
// force a cell to be read as text (e.g. ="00123").
func unwrapExcelText(s string) string {
	if len(s) >= 3 && strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) {
		return s[2 : len(s)-1]
	}
	return s
}
