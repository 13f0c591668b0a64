package mapping

import (
	"fmt"
	"strconv"
	"strings"

	catalog "pinmap/internal/catalog/domain"
)

// StatusOpen marks a pin position that is open by default.
const StatusOpen = "Open"

// Coordinate addresses a position of the host-board pin grid.
type Coordinate struct {
	Column string
	Row    int
}

func (c Coordinate) String() string {
	return c.Column + strconv.Itoa(c.Row)
}

// ParseCoordinate parses a position such as "C3", "AA12" or "D-1".
func ParseCoordinate(position string) (Coordinate, error) {
	position = strings.TrimSpace(position)
	split := strings.IndexFunc(position, func(r rune) bool {
		return r == '-' || (r >= '0' && r <= '9')
	})
	if split <= 0 {
		return Coordinate{}, fmt.Errorf("mapping: invalid position %q", position)
	}
	row, err := strconv.Atoi(position[split:])
	if err != nil {
		return Coordinate{}, fmt.Errorf("mapping: invalid position %q: %w", position, err)
	}
	return Coordinate{Column: position[:split], Row: row}, nil
}

// Entry is one host-board pin position.
type Entry struct {
	Column         string
	Row            int
	Signal         string
	Bus            string
	Status         string
	ModuleFilter   string
	FunctionFilter string

	// Candidate is the assigned catalog candidate key, -1 when unassigned.
	Candidate int
	// Label is the bare label of Candidate.
	Label string
	// Conflict is the display tag of the selected option.
	Conflict Conflict
	Primary  bool
}

func (e Entry) Coordinate() Coordinate {
	return Coordinate{Column: e.Column, Row: e.Row}
}

func (e Entry) Assigned() bool {
	return e.Candidate >= 0
}

func (e Entry) Open() bool {
	return strings.Contains(e.Status, StatusOpen)
}

// Display returns the selected value as shown to the user, conflict tag included.
func (e Entry) Display() string {
	if !e.Assigned() {
		return ""
	}
	return e.Conflict.Prefix() + e.Label
}

// holder names the entry inside another entry's conflict tag.
func (e Entry) holder() string {
	if e.Bus == "" {
		return e.Coordinate().String()
	}
	return e.Coordinate().String() + "@" + e.Bus
}

// ConflictKind tells which resource of a candidate is primarily held elsewhere.
type ConflictKind int

const (
	ConflictNone ConflictKind = iota
	ConflictPin
	ConflictFunc
)

func (k ConflictKind) String() string {
	switch k {
	case ConflictPin:
		return "Pin"
	case ConflictFunc:
		return "Func"
	default:
		return ""
	}
}

// Conflict is a cosmetic tag naming the primary holder of a shared resource.
type Conflict struct {
	Kind   ConflictKind
	Holder string
}

// Prefix renders the tag as "Pin><holder>>> " or "Func><holder>>> ".
func (c Conflict) Prefix() string {
	if c.Kind == ConflictNone {
		return ""
	}
	return c.Kind.String() + ">" + c.Holder + catalog.ConflictPrefixEnd
}

// ParseConflict splits a display string into its conflict tag and bare label.
func ParseConflict(display string) (Conflict, string) {
	label := catalog.StripConflictPrefix(display)
	if len(label) == len(display) {
		return Conflict{}, display
	}
	tag := strings.TrimSuffix(display[:len(display)-len(label)], catalog.ConflictPrefixEnd)
	for _, kind := range []ConflictKind{ConflictPin, ConflictFunc} {
		if holder, ok := strings.CutPrefix(tag, kind.String()+">"); ok {
			if end := strings.Index(holder, catalog.ConflictPrefixEnd); end >= 0 {
				holder = holder[:end]
			}
			return Conflict{Kind: kind, Holder: holder}, label
		}
	}
	return Conflict{}, label
}
