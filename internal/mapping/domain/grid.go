package mapping

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strconv"

	catalog "pinmap/internal/catalog/domain"
)

// Mapping table column names.
const (
	ColumnColumn        = "Column"
	ColumnRow           = "Row"
	ColumnBus           = "Bus"
	ColumnSignal        = "Signal"
	ColumnStatus        = "Status"
	ColumnRegexModule   = "Regex-Module"
	ColumnRegexFunction = "Regex-Function"
	ColumnMapped        = "Mapped-PinModFunc"
	ColumnMappedKey     = "Mapped-PinModFunc-Key"
	ColumnPrimary       = "Primary"
)

// PrimaryMark is the Primary column value of a primary holder.
const PrimaryMark = "x"

const (
	mappingTable        = "mapping"
	unassignedCandidate = -1
	unassignedKey       = "-1"
)

var requiredColumns = []string{
	ColumnColumn, ColumnRow, ColumnBus, ColumnSignal, ColumnStatus, ColumnRegexModule, ColumnRegexFunction,
}

type filters struct {
	module   *regexp.Regexp
	function *regexp.Regexp
}

// Grid holds every host-board pin position in table order together with the derived bus state.
// Entries are addressed by index; neighbours in the refresh walk are index-1 and index+1.
type Grid struct {
	catalog *catalog.Catalog
	entries []Entry
	filters []filters
	buses   map[string]*Bus
	index   map[Coordinate]int
	source  catalog.Table
}

// NewGrid validates a mapping table against the catalog and builds the grid. Persisted
// assignment columns are optional; when present they restore primary flags and bus locks.
func NewGrid(cat *catalog.Catalog, raw catalog.Table) (*Grid, error) {
	if cat == nil {
		return nil, errors.New("mapping: nil catalog")
	}
	table, err := raw.Normalize(mappingTable)
	if err != nil {
		return nil, err
	}
	cols := make(map[string]int, len(table.Header))
	for _, name := range append(slices.Clone(requiredColumns), ColumnMapped, ColumnMappedKey, ColumnPrimary) {
		cols[name] = table.Column(name)
	}
	for _, name := range requiredColumns {
		if cols[name] < 0 {
			return nil, &catalog.FormatError{Table: mappingTable, Row: -1, Column: name, Reason: "missing required column"}
		}
	}

	g := &Grid{
		catalog: cat,
		entries: make([]Entry, 0, table.Len()),
		filters: make([]filters, 0, table.Len()),
		buses:   make(map[string]*Bus),
		index:   make(map[Coordinate]int, table.Len()),
		source:  table,
	}
	for i := range table.Rows {
		entry, f, err := g.parseEntry(table, cols, i)
		if err != nil {
			return nil, err
		}
		coord := entry.Coordinate()
		if _, dup := g.index[coord]; dup {
			return nil, &catalog.FormatError{Table: mappingTable, Row: i, Column: ColumnColumn, Reason: fmt.Sprintf("duplicate position %s", coord)}
		}
		g.index[coord] = i
		g.entries = append(g.entries, entry)
		g.filters = append(g.filters, f)

		bus, ok := g.buses[entry.Bus]
		if !ok {
			bus = &Bus{Tag: entry.Bus, Module: -1}
			g.buses[entry.Bus] = bus
		}
		bus.Members = append(bus.Members, i)
	}
	for tag := range g.buses {
		g.updateBusLock(tag)
	}
	return g, nil
}

func (g *Grid) parseEntry(table catalog.Table, cols map[string]int, i int) (Entry, filters, error) {
	cell := func(name string) string { return table.Cell(i, cols[name]) }
	formatErr := func(column, reason string) error {
		return &catalog.FormatError{Table: mappingTable, Row: i, Column: column, Reason: reason}
	}

	entry := Entry{
		Column:         cell(ColumnColumn),
		Row:            -1,
		Signal:         cell(ColumnSignal),
		Bus:            cell(ColumnBus),
		Status:         cell(ColumnStatus),
		ModuleFilter:   cell(ColumnRegexModule),
		FunctionFilter: cell(ColumnRegexFunction),
		Candidate:      unassignedCandidate,
	}
	if raw := cell(ColumnRow); raw != "" {
		row, err := parseInt(raw)
		if err != nil {
			return Entry{}, filters{}, formatErr(ColumnRow, "row is not an integer")
		}
		entry.Row = row
	}

	var f filters
	var err error
	if f.module, err = regexp.Compile(entry.ModuleFilter); err != nil {
		return Entry{}, filters{}, formatErr(ColumnRegexModule, err.Error())
	}
	if f.function, err = regexp.Compile(entry.FunctionFilter); err != nil {
		return Entry{}, filters{}, formatErr(ColumnRegexFunction, err.Error())
	}

	display := cell(ColumnMapped)
	key := unassignedCandidate
	if raw := cell(ColumnMappedKey); raw != "" && raw != unassignedKey {
		if key, err = parseInt(raw); err != nil {
			return Entry{}, filters{}, formatErr(ColumnMappedKey, "key is not an integer")
		}
		if !g.catalog.ValidCandidate(key) {
			return Entry{}, filters{}, formatErr(ColumnMappedKey, catalog.ErrCandidateRange.Error())
		}
	}
	conflict, label := ParseConflict(display)
	if label != "" {
		resolved, err := g.catalog.ResolveLabel(label)
		if err != nil {
			return Entry{}, filters{}, formatErr(ColumnMapped, err.Error())
		}
		if key == unassignedCandidate {
			key = resolved
		} else if !g.sameResources(key, resolved) {
			return Entry{}, filters{}, formatErr(ColumnMappedKey, fmt.Sprintf("key %d does not match %q", key, label))
		}
	}
	if key != unassignedCandidate {
		entry.Candidate = key
		entry.Label = g.catalog.Label(key)
		entry.Conflict = conflict
		entry.Primary = cell(ColumnPrimary) != ""
	}
	return entry, f, nil
}

func (g *Grid) sameResources(a, b int) bool {
	return g.catalog.Candidate(a) == g.catalog.Candidate(b)
}

// parseInt accepts integral floats such as "3.0" as written by spreadsheet tools.
func parseInt(raw string) (int, error) {
	if v, err := strconv.Atoi(raw); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("mapping: %q is not an integer", raw)
	}
	return int(f), nil
}

// Catalog returns the catalog the grid validates against.
func (g *Grid) Catalog() *catalog.Catalog {
	return g.catalog
}

// Len returns the number of entries.
func (g *Grid) Len() int {
	return len(g.entries)
}

// Entry returns a copy of entry i.
func (g *Grid) Entry(i int) Entry {
	return g.entries[i]
}

// Entries returns a copy of every entry in table order.
func (g *Grid) Entries() []Entry {
	return slices.Clone(g.entries)
}

// Index returns the entry at a grid position.
func (g *Grid) Index(c Coordinate) (int, bool) {
	i, ok := g.index[c]
	return i, ok
}

// Bus returns a copy of the named bus.
func (g *Grid) Bus(tag string) (Bus, bool) {
	bus, ok := g.buses[tag]
	if !ok {
		return Bus{}, false
	}
	return bus.clone(), true
}

// BusTags returns every bus tag, including the ungrouped "" when present, sorted.
func (g *Grid) BusTags() []string {
	tags := make([]string, 0, len(g.buses))
	for tag := range g.buses {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Buses returns a copy of every bus ordered by tag.
func (g *Grid) Buses() []Bus {
	out := make([]Bus, 0, len(g.buses))
	for _, tag := range g.BusTags() {
		out = append(out, g.buses[tag].clone())
	}
	return out
}

// Resolved returns the names of the candidate assigned to entry i.
func (g *Grid) Resolved(i int) (catalog.Resolved, bool) {
	e := g.entries[i]
	if !e.Assigned() {
		return catalog.Resolved{}, false
	}
	return g.catalog.Resolve(e.Candidate), true
}

// Shape returns the sorted distinct columns and rows of the grid.
func (g *Grid) Shape() ([]string, []int) {
	var columns []string
	var rows []int
	for _, e := range g.entries {
		if !slices.Contains(columns, e.Column) {
			columns = append(columns, e.Column)
		}
		if !slices.Contains(rows, e.Row) {
			rows = append(rows, e.Row)
		}
	}
	sort.Strings(columns)
	sort.Ints(rows)
	return columns, rows
}

func (g *Grid) checkIndex(i int) error {
	if i < 0 || i >= len(g.entries) {
		return fmt.Errorf("%w: %d", ErrEntryRange, i)
	}
	return nil
}
