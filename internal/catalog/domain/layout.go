package catalog

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

// Options table column names.
const (
	ColumnBoardPin = "Board-Pin"
	ColumnMCUPin   = "MCU-Pin"
	ColumnComment  = "Comment"
)

const optionsTable = "options"

var altColumnPattern = regexp.MustCompile(`^ALT(\d+)-(Module|Function)$`)

// AltColumns locates one alternate-function slot in the options header.
type AltColumns struct {
	Slot     int
	Module   int
	Function int
}

// Layout is the options header resolved once at load time.
type Layout struct {
	BoardPin int
	MCUPin   int
	Comment  int // -1 when absent
	Alts     []AltColumns
}

// ParseLayout resolves the fixed and ALTn-Module/ALTn-Function columns of an options header.
// Slots are returned in header order of their module column.
func ParseLayout(header []string) (Layout, error) {
	layout := Layout{BoardPin: -1, MCUPin: -1, Comment: -1}
	seen := make(map[string]struct{}, len(header))
	slots := make(map[int]*AltColumns)

	for i, name := range header {
		if _, dup := seen[name]; dup && name != "" {
			return Layout{}, headerError(optionsTable, name, "duplicate column")
		}
		seen[name] = struct{}{}

		switch name {
		case ColumnBoardPin:
			layout.BoardPin = i
			continue
		case ColumnMCUPin:
			layout.MCUPin = i
			continue
		case ColumnComment:
			layout.Comment = i
			continue
		}

		match := altColumnPattern.FindStringSubmatch(name)
		if match == nil {
			continue
		}
		slot, err := strconv.Atoi(match[1])
		if err != nil {
			return Layout{}, headerError(optionsTable, name, "invalid slot number")
		}
		alt, ok := slots[slot]
		if !ok {
			alt = &AltColumns{Slot: slot, Module: -1, Function: -1}
			slots[slot] = alt
		}
		if match[2] == "Module" {
			alt.Module = i
		} else {
			alt.Function = i
		}
	}

	if layout.BoardPin < 0 {
		return Layout{}, headerError(optionsTable, ColumnBoardPin, "missing required column")
	}
	if layout.MCUPin < 0 {
		return Layout{}, headerError(optionsTable, ColumnMCUPin, "missing required column")
	}

	for _, alt := range slots {
		if alt.Module < 0 {
			return Layout{}, headerError(optionsTable, fmt.Sprintf("ALT%d-Module", alt.Slot), "missing module column for slot")
		}
		if alt.Function < 0 {
			return Layout{}, headerError(optionsTable, fmt.Sprintf("ALT%d-Function", alt.Slot), "missing function column for slot")
		}
		layout.Alts = append(layout.Alts, *alt)
	}
	sort.Slice(layout.Alts, func(i, j int) bool {
		return layout.Alts[i].Module < layout.Alts[j].Module
	})
	return layout, nil
}
