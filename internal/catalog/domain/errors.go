package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat is matched by every FormatError.
	ErrFormat = errors.New("catalog: malformed table")
	// ErrUnresolvedLabel is returned when a label does not name a catalog candidate.
	ErrUnresolvedLabel = errors.New("catalog: unresolved label")
	// ErrCandidateRange is returned for candidate keys outside the catalog.
	ErrCandidateRange = errors.New("catalog: candidate key out of range")
)

// FormatError describes a malformed options or mapping table. Row is -1 for header problems.
type FormatError struct {
	Table  string
	Row    int
	Column string
	Reason string
}

func (e *FormatError) Error() string {
	switch {
	case e.Row < 0 && e.Column == "":
		return fmt.Sprintf("catalog: %s table: %s", e.Table, e.Reason)
	case e.Row < 0:
		return fmt.Sprintf("catalog: %s table: column %q: %s", e.Table, e.Column, e.Reason)
	case e.Column == "":
		return fmt.Sprintf("catalog: %s table: row %d: %s", e.Table, e.Row, e.Reason)
	default:
		return fmt.Sprintf("catalog: %s table: row %d column %q: %s", e.Table, e.Row, e.Column, e.Reason)
	}
}

// Is reports ErrFormat so callers can match any format failure.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

func headerError(table, column, reason string) error {
	return &FormatError{Table: table, Row: -1, Column: column, Reason: reason}
}

func rowError(table string, row int, column, reason string) error {
	return &FormatError{Table: table, Row: row, Column: column, Reason: reason}
}
