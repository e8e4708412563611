// Package serialize assembles transformed column arrays into the row-major
// text buffer handed to the COPY bulk-load primitive.
package serialize

import (
	"bytes"
	"fmt"
)

// COPY text format: tab between fields, newline between rows. None of the
// serialized values (identifiers, enums, numbers, timestamps) can contain
// either byte, so no quoting or escaping is applied.
const (
	Delimiter      = "\t"
	LineTerminator = "\n"
)

// Chunk writes one chunk's columns as delimited rows, in the column order
// given. All columns must share the same length; a ragged input means a bug
// upstream and is rejected rather than silently truncated.
func Chunk(cols [][]string) (*bytes.Buffer, error) {
	if len(cols) == 0 {
		return &bytes.Buffer{}, nil
	}

	rows := len(cols[0])
	for i, c := range cols {
		if len(c) != rows {
			return nil, fmt.Errorf("column %d has %d rows, expected %d", i, len(c), rows)
		}
	}

	var buf bytes.Buffer
	for row := 0; row < rows; row++ {
		for i, c := range cols {
			if i > 0 {
				buf.WriteString(Delimiter)
			}
			buf.WriteString(c[row])
		}
		buf.WriteString(LineTerminator)
	}
	return &buf, nil
}
