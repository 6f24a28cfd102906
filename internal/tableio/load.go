package tableio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"

	"github.com/FranciscoH-alt/CSV-Excel-Cleaning-Tool/internal/logging"
	"github.com/FranciscoH-alt/CSV-Excel-Cleaning-Tool/internal/table"
)

// DefaultMaxFileSize is the input size limit used when ReadOptions leaves it unset (100MB).
const DefaultMaxFileSize int64 = 100 * 1024 * 1024

// DefaultNullTokens are the cell values read as null. They match the missing
// value markers spreadsheet and dataframe tools emit. Matching is exact.
var DefaultNullTokens = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

// ReadOptions controls how a file is decoded into a table.
type ReadOptions struct {
	// Sheet selects a worksheet by name. Empty selects the first sheet.
	Sheet string

	// NullTokens replaces DefaultNullTokens when non-nil.
	NullTokens []string

	// MaxFileSize rejects larger inputs. Zero uses DefaultMaxFileSize.
	MaxFileSize int64
}

// WriteOptions controls how a table is encoded.
type WriteOptions struct {
	// Sheet names the output worksheet. Empty uses "Sheet1".
	Sheet string

	// DateFormat is the spreadsheet number format for dates. Empty uses "yyyy-mm-dd".
	DateFormat string
}

func (o ReadOptions) nullTokens() []string {
	if o.NullTokens != nil {
		return o.NullTokens
	}
	return DefaultNullTokens
}

func (o ReadOptions) maxFileSize() int64 {
	if o.MaxFileSize > 0 {
		return o.MaxFileSize
	}
	return DefaultMaxFileSize
}

func (o WriteOptions) sheet() string {
	if o.Sheet != "" {
		return o.Sheet
	}
	return "Sheet1"
}

func (o WriteOptions) dateFormat() string {
	if o.DateFormat != "" {
		return o.DateFormat
	}
	return "yyyy-mm-dd"
}

// Load reads the file at path and decodes it with the format registered for
// its extension.
func Load(ctx context.Context, fs afero.Fs, path string, opts ReadOptions) (*table.Table, error) {
	if err := CheckReadable(path); err != nil {
		return nil, err
	}
	format, _ := Lookup(path)

	data, err := readFile(fs, path, opts.maxFileSize())
	if err != nil {
		return nil, err
	}

	sniff(ctx, path, format, data)

	t, err := format.Read(data, opts)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return t, nil
}

// readFile reads at most limit bytes; the handle is closed on every path.
func readFile(fs afero.Fs, path string, limit int64) ([]byte, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read input %s: %w", filepath.Base(path), err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrFileTooLarge, filepath.Base(path), limit)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, filepath.Base(path))
	}
	return data, nil
}

// sniff logs a warning when the content does not look like the format the
// extension claims. The format reader still decides whether the file is usable.
func sniff(ctx context.Context, path string, format Format, data []byte) {
	if len(format.MIMETypes) == 0 {
		return
	}
	detected := mimetype.Detect(data)
	for _, want := range format.MIMETypes {
		if detected.Is(want) {
			return
		}
	}
	logging.FromContext(ctx).Warn("file content does not match extension",
		"path", path,
		"format", format.Name,
		"detected", detected.String(),
	)
}

// Save encodes t with the format registered for path's extension and writes
// it, creating parent directories. Nothing is written if encoding fails.
func Save(fs afero.Fs, path string, t *table.Table, opts WriteOptions) error {
	var buf bytes.Buffer
	if err := Encode(&buf, path, t, opts); err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	if err := afero.WriteFile(fs, path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// Encode writes t to w in the format registered for path's extension.
// path is only used for format lookup.
func Encode(w io.Writer, path string, t *table.Table, opts WriteOptions) error {
	if err := CheckWritable(path); err != nil {
		return err
	}
	format, _ := Lookup(path)

	if err := format.Write(w, t, opts); err != nil {
		return fmt.Errorf("encode %s: %w", format.Name, err)
	}
	return nil
}

// cellFunc gives a typed value for the raw cell at a record index and
// column. Returning false falls back to null tokens and text.
type cellFunc func(record, col int, raw string) (table.Value, bool)

// buildTable turns decoded string records into a table. The first record is
// the header. Cells typed by typed keep their type; otherwise null tokens
// become Null and everything else Text.
func buildTable(records [][]string, opts ReadOptions, typed cellFunc) (*table.Table, error) {
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		header[i] = h
	}

	tokens := opts.nullTokens()
	t := table.New(header...)
	t.Rows = make([]table.Row, 0, len(records)-1)

	for r := 1; r < len(records); r++ {
		rec := records[r]
		if isBlank(rec) {
			continue
		}
		values := make([]table.Value, len(header))
		for i := range header {
			if i >= len(rec) {
				values[i] = table.Null()
				continue
			}
			if typed != nil {
				if v, ok := typed(r, i, rec[i]); ok {
					values[i] = v
					continue
				}
			}
			if slices.Contains(tokens, rec[i]) {
				values[i] = table.Null()
				continue
			}
			values[i] = table.Text(rec[i])
		}
		t.Append(values...)
	}

	return t, nil
}

// isBlank reports whether every cell of a record is empty.
// Fully blank lines are skipped the way spreadsheet readers skip them.
func isBlank(rec []string) bool {
	for _, c := range rec {
		if c != "" {
			return false
		}
	}
	return true
}
