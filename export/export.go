// Package export turns a grid snapshot into its two outbound forms: a C
// array literal written to a text file, and a binarized line stream for the
// inference device.
package export

import (
	"os"
	"strconv"
	"strings"

	"github.com/drake/digitpad/grid"
)

// DefaultFileName is where exports land unless configured otherwise.
const DefaultFileName = "mnist_digit.txt"

// SerializeText renders the snapshot as "{v0, v1, ..., v783}" in row-major
// order with raw 0-255 values.
func SerializeText(s grid.Snapshot) string {
	var b strings.Builder
	// Worst case "255, " per cell plus braces.
	b.Grow(grid.Cells*5 + 2)

	b.WriteByte('{')
	for i, v := range s {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Itoa(int(v)))
	}
	b.WriteByte('}')
	return b.String()
}

// WriteFile writes SerializeText(s) to path, replacing any previous export.
func WriteFile(path string, s grid.Snapshot) error {
	if path == "" {
		path = DefaultFileName
	}
	if err := os.WriteFile(path, []byte(SerializeText(s)), 0o644); err != nil {
		return &IOError{Path: path, Err: err}
	}
	return nil
}
