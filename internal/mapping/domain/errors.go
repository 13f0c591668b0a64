package mapping

import (
	"errors"
	"fmt"
)

var (
	// ErrInvariant marks a request the engine cannot have produced itself, e.g. a label that
	// does not resolve in the catalog or a candidate key out of range.
	ErrInvariant = errors.New("mapping: invariant violation")
	// ErrUnresolvedLabel is matched by every UnresolvedLabelError.
	ErrUnresolvedLabel = errors.New("mapping: label not in legal set")
	// ErrEntryRange is returned for entry indexes outside the grid.
	ErrEntryRange = errors.New("mapping: entry index out of range")
)

// UnresolvedLabelError reports a submitted label that is not offered for the entry.
type UnresolvedLabelError struct {
	Column string
	Row    int
	Label  string
}

func (e *UnresolvedLabelError) Error() string {
	return fmt.Sprintf("mapping: entry %s: label %q not in legal set", Coordinate{Column: e.Column, Row: e.Row}, e.Label)
}

func (e *UnresolvedLabelError) Is(target error) bool {
	return target == ErrUnresolvedLabel
}
