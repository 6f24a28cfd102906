// Package tableio reads and writes tables in delimited and spreadsheet formats.
//
// Formats register themselves at init time, keyed by file extension. Load and
// Save look the extension up in the registry and fail with
// *UnsupportedFormatError before touching the file when no format matches.
package tableio

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/FranciscoH-alt/CSV-Excel-Cleaning-Tool/internal/table"
)

// ReadFunc decodes a whole file into a table.
type ReadFunc func(data []byte, opts ReadOptions) (*table.Table, error)

// WriteFunc encodes a table to w.
type WriteFunc func(w io.Writer, t *table.Table, opts WriteOptions) error

// Format describes one file format.
type Format struct {
	Name       string   // Display name: "CSV", "Excel"
	Extensions []string // Lowercase, with dot: ".csv"
	MIMETypes  []string // Expected content types, used for sniffing only
	Read       ReadFunc
	Write      WriteFunc // nil if the format is read-only
}

var (
	registry   = make(map[string]Format)
	registryMu sync.RWMutex
)

// Register adds a format to the registry under each of its extensions.
// Panics if an extension is already registered.
func Register(f Format) {
	registryMu.Lock()
	defer registryMu.Unlock()

	for _, ext := range f.Extensions {
		ext = strings.ToLower(ext)
		if existing, exists := registry[ext]; exists {
			panic(fmt.Sprintf("extension %s already registered by %s", ext, existing.Name))
		}
		registry[ext] = f
	}
}

// Lookup returns the format registered for path's extension.
func Lookup(path string) (Format, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	f, ok := registry[Ext(path)]
	return f, ok
}

// Formats returns all registered formats, one entry per format,
// sorted by name.
func Formats() []Format {
	registryMu.RLock()
	defer registryMu.RUnlock()

	seen := make(map[string]bool)
	var result []Format
	for _, f := range registry {
		if seen[f.Name] {
			continue
		}
		seen[f.Name] = true
		result = append(result, f)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// Ext returns the lowercase extension of path, including the dot.
func Ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// CheckReadable returns *UnsupportedFormatError if path cannot be loaded.
func CheckReadable(path string) error {
	if f, ok := Lookup(path); ok && f.Read != nil {
		return nil
	}
	return &UnsupportedFormatError{Path: path, Ext: Ext(path), Op: "read"}
}

// CheckWritable returns *UnsupportedFormatError if path cannot be saved.
func CheckWritable(path string) error {
	if f, ok := Lookup(path); ok && f.Write != nil {
		return nil
	}
	return &UnsupportedFormatError{Path: path, Ext: Ext(path), Op: "write"}
}
