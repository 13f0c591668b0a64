package catalog

import (
	"fmt"
	"slices"
	"strings"
)

// Table is a raw, header-addressed string table as exchanged with file backends.
type Table struct {
	Header []string
	Rows   [][]string
}

// NewTable copies header and rows into a table.
func NewTable(header []string, rows [][]string) Table {
	t := Table{Header: slices.Clone(header), Rows: make([][]string, 0, len(rows))}
	for _, row := range rows {
		t.Rows = append(t.Rows, slices.Clone(row))
	}
	return t
}

// Len returns the number of data rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// Column returns the index of the named column or -1.
func (t Table) Column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at row/column, or "" when either is out of range.
func (t Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// Clone returns a deep copy.
func (t Table) Clone() Table {
	return NewTable(t.Header, t.Rows)
}

// Normalize trims every cell, pads short rows and rejects rows wider than the header.
// Fully empty trailing rows are dropped.
func (t Table) Normalize(name string) (Table, error) {
	if len(t.Header) == 0 {
		return Table{}, headerError(name, "", "missing header")
	}
	out := Table{Header: make([]string, len(t.Header))}
	for i, h := range t.Header {
		out.Header[i] = strings.TrimSpace(h)
	}
	for i, row := range t.Rows {
		if len(row) > len(out.Header) {
			extra := row[len(out.Header):]
			if !allBlank(extra) {
				return Table{}, rowError(name, i, "", fmt.Sprintf("%d cells for %d columns", len(row), len(out.Header)))
			}
			row = row[:len(out.Header)]
		}
		cells := make([]string, len(out.Header))
		for j, cell := range row {
			cells[j] = strings.TrimSpace(cell)
		}
		out.Rows = append(out.Rows, cells)
	}
	for len(out.Rows) > 0 && allBlank(out.Rows[len(out.Rows)-1]) {
		out.Rows = out.Rows[:len(out.Rows)-1]
	}
	return out, nil
}

func allBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
