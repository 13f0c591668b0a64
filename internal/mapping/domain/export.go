package mapping

import (
	"slices"
	"strconv"

	catalog "pinmap/internal/catalog/domain"
)

// ExportTable returns the mapping table with the assignment columns filled from the grid. Columns
// of the loaded table are kept in place; missing assignment columns are appended.
func (g *Grid) ExportTable() catalog.Table {
	header := slices.Clone(g.source.Header)
	cols := make(map[string]int, 3)
	for _, name := range []string{ColumnMapped, ColumnMappedKey, ColumnPrimary} {
		idx := slices.Index(header, name)
		if idx < 0 {
			idx = len(header)
			header = append(header, name)
		}
		cols[name] = idx
	}

	rows := make([][]string, 0, len(g.entries))
	for i, e := range g.entries {
		row := make([]string, len(header))
		copy(row, g.source.Rows[i])
		row[cols[ColumnMapped]] = e.Display()
		row[cols[ColumnMappedKey]] = strconv.Itoa(e.Candidate)
		row[cols[ColumnPrimary]] = ""
		if e.Assigned() && e.Primary {
			row[cols[ColumnPrimary]] = PrimaryMark
		}
		rows = append(rows, row)
	}
	return catalog.Table{Header: header, Rows: rows}
}
