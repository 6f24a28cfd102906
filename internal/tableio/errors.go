package tableio

import (
	"errors"
	"fmt"
)

var (
	// ErrFileTooLarge is returned when the input exceeds ReadOptions.MaxFileSize.
	ErrFileTooLarge = errors.New("file too large")

	// ErrEmptyFile is returned when the input has no header row.
	ErrEmptyFile = errors.New("empty file")

	// ErrSheetNotFound is returned when ReadOptions.Sheet names a missing worksheet.
	ErrSheetNotFound = errors.New("sheet not found")
)

// UnsupportedFormatError reports a file extension with no registered reader
// (or writer, for output paths).
type UnsupportedFormatError struct {
	Path string
	Ext  string
	Op   string // "read" or "write"
}

func (e *UnsupportedFormatError) Error() string {
	ext := e.Ext
	if ext == "" {
		ext = "(none)"
	}
	return fmt.Sprintf("unsupported file format %s for %s: %s", ext, e.Op, e.Path)
}
