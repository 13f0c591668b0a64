package pdf

import (
	"strings"

	"pinmap/internal/mapping/application"
)

// Mapping tables are printed side by side, three per landscape page.
const (
	TablesPerPage = 3
	RowsPerTable  = 33
	rowsPerPage   = RowsPerTable - 1
)

// Group names.
const (
	GroupELO = "ELO"
	GroupSW  = "SW"
)

// Table is one printed mapping table. Row 0 is the header.
type Table [RowsPerTable][2]string

// Page holds the tables printed on one page.
type Page [TablesPerPage]Table

// Group is the set of pages of one mapping view: ELO pairs grid positions with board pins,
// SW pairs them with pin functions.
type Group struct {
	Name  string
	Pages []Page
}

var groupHeaders = map[string][2]string{
	GroupELO: {"Baseboard", "MCU Board Pin"},
	GroupSW:  {"Baseboard", "MCU Pinfunction"},
}

// Layout distributes the report entries over pages. Grid columns map to tables, grid rows to table
// rows; a grid wider than three columns or taller than RowsPerTable-1 rows spills onto more pages.
func Layout(r application.Report) []Group {
	perRow := ceilDiv(len(r.Columns), TablesPerPage)
	perColumn := ceilDiv(len(r.Rows), rowsPerPage)
	total := perRow * perColumn

	groups := []Group{
		{Name: GroupELO, Pages: newPages(total, groupHeaders[GroupELO])},
		{Name: GroupSW, Pages: newPages(total, groupHeaders[GroupSW])},
	}
	for _, e := range r.Entries {
		if e.ColumnIndex < 0 || e.RowIndex < 0 {
			continue
		}
		page := pageIndex(e.ColumnIndex, e.RowIndex, perColumn)
		if page >= total {
			continue
		}
		table := e.ColumnIndex % TablesPerPage
		row := e.RowIndex%rowsPerPage + 1

		position := e.Position + ": " + e.Signal
		elo := &groups[0].Pages[page][table][row]
		sw := &groups[1].Pages[page][table][row]
		elo[0] = position
		sw[0] = position
		if e.Assigned && e.BoardPin != "" && e.MCUPin != "" {
			elo[1] = e.BoardPin + " - " + e.MCUPin
			sw[1] = e.MCUPin + " - " + e.Module + "_" + e.Function
		}
	}
	return groups
}

// pageIndex orders pages top to bottom within a band of three grid columns, then band by band.
func pageIndex(column, row, perColumn int) int {
	return column/TablesPerPage*perColumn + row/rowsPerPage
}

func newPages(n int, header [2]string) []Page {
	pages := make([]Page, n)
	for i := range pages {
		for t := range pages[i] {
			pages[i][t][0] = header
		}
	}
	return pages
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// NoteLines splits notes into bullet items without their markdown markers.
func NoteLines(notes string) []string {
	var out []string
	for _, line := range strings.Split(notes, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "* ")
		line = strings.TrimPrefix(line, "- ")
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}
