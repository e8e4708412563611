// Package source defines the boundary to the hierarchical tick-archive
// reader. The pipeline only needs to enumerate groups, enumerate tables
// within a group, read a named column sliced by row range, and report row
// counts; everything else about the on-disk format lives behind Reader.
//
// Concrete readers register an Opener for their file extension, in the same
// way database/sql drivers register themselves. The package ships an
// in-memory implementation used by tests and fixtures; an HDF5-backed
// driver plugs in without touching the pipeline.
package source

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Reader is one open source file: a set of named groups (one per event
// kind), each holding one table per instrument pair.
type Reader interface {
	// Groups lists the group names in the file.
	Groups() ([]string, error)
	// Tables lists the table names within a group (e.g. "BTC_USD").
	Tables(group string) ([]string, error)
	// Dataset opens the columnar dataset backing one table.
	Dataset(group, table string) (Dataset, error)
	// Close releases the underlying file handle.
	Close() error
}

// Dataset is a column-oriented event table. All columns share the same row
// count; reads are sliced by [start, end) row range so callers never pull
// more than one chunk into memory.
type Dataset interface {
	NumRows() (int, error)
	// ReadText reads a raw byte-encoded column (identifiers, enums).
	ReadText(field string, start, end int) ([][]byte, error)
	// ReadInt64 reads an integer column (fixed-point sizes, epoch times).
	ReadInt64(field string, start, end int) ([]int64, error)
	// ReadFloat64 reads a float column (price).
	ReadFloat64(field string, start, end int) ([]float64, error)
}

// Opener opens a source file at path and returns a Reader over it.
type Opener func(path string) (Reader, error)

var (
	openersMu sync.RWMutex
	openers   = map[string]Opener{}
)

// Register makes an Opener available for a file extension (e.g. ".h5").
// It panics if the extension is already taken, mirroring database/sql's
// driver registration contract.
func Register(ext string, open Opener) {
	openersMu.Lock()
	defer openersMu.Unlock()
	ext = strings.ToLower(ext)
	if _, dup := openers[ext]; dup {
		panic(fmt.Sprintf("source: Register called twice for extension %s", ext))
	}
	openers[ext] = open
}

// Open dispatches to the Opener registered for the path's extension.
func Open(path string) (Reader, error) {
	ext := strings.ToLower(filepath.Ext(path))
	openersMu.RLock()
	open, ok := openers[ext]
	openersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("source: no reader registered for %q (registered: %v)", ext, Extensions())
	}
	return open(path)
}

// Supported reports whether a reader is registered for the path's extension.
func Supported(path string) bool {
	openersMu.RLock()
	defer openersMu.RUnlock()
	_, ok := openers[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extensions returns the sorted list of registered file extensions.
func Extensions() []string {
	openersMu.RLock()
	defer openersMu.RUnlock()
	out := make([]string, 0, len(openers))
	for ext := range openers {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
