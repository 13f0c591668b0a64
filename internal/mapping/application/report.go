package application

import (
	"regexp"
	"slices"
	"time"

	"pinmap/internal/board"
	mapping "pinmap/internal/mapping/domain"
)

var signalPattern = regexp.MustCompile(`[A-Za-z0-9]+_*[A-Za-z0-9]*`)

// Report is the data handed to report backends. Entries follow mapping table order.
type Report struct {
	Name    string
	Title   string
	Adapter board.Adapter
	Author  string
	Date    time.Time
	Notes   string
	Columns []string
	Rows    []int
	Entries []ReportEntry
}

// ReportEntry is one grid position with its resolved assignment, if any.
type ReportEntry struct {
	Position    string
	Signal      string
	ColumnIndex int
	RowIndex    int
	Assigned    bool
	BoardPin    string
	MCUPin      string
	Module      string
	Function    string
}

// ShortSignal trims a signal name to its leading identifier, e.g. "SPI_MOSI/GPIO3" to "SPI_MOSI".
func ShortSignal(signal string) string {
	return signalPattern.FindString(signal)
}

func buildReport(g *mapping.Grid, adapter board.Adapter, author string, date time.Time, notes string) Report {
	columns, rows := g.Shape()
	r := Report{
		Name:    adapter.Name(),
		Title:   adapter.Title(),
		Adapter: adapter,
		Author:  author,
		Date:    date,
		Notes:   notes,
		Columns: columns,
		Rows:    rows,
		Entries: make([]ReportEntry, 0, g.Len()),
	}
	for i, e := range g.Entries() {
		entry := ReportEntry{
			Position:    e.Coordinate().String(),
			Signal:      ShortSignal(e.Signal),
			ColumnIndex: slices.Index(columns, e.Column),
			RowIndex:    slices.Index(rows, e.Row),
		}
		if resolved, ok := g.Resolved(i); ok {
			entry.Assigned = true
			entry.BoardPin = resolved.BoardPin
			entry.MCUPin = resolved.MCUPin
			entry.Module = resolved.Module
			entry.Function = resolved.Function
		}
		r.Entries = append(r.Entries, entry)
	}
	return r
}
