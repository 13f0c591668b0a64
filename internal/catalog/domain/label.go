package catalog

import (
	"fmt"
	"strings"
)

const (
	labelSeparator = " - "
	// ConflictPrefixEnd terminates a conflict prefix in a display string.
	ConflictPrefixEnd = ">> "
)

// FormatLabel renders "<boardPin> - <mcuPin> - <module> - <function>".
func FormatLabel(r Resolved) string {
	return strings.Join([]string{r.BoardPin, r.MCUPin, r.Module, r.Function}, labelSeparator)
}

// Label returns the display label of a candidate.
func (c *Catalog) Label(key int) string {
	return FormatLabel(c.Resolve(key))
}

// StripConflictPrefix returns the part of a display string after the last conflict prefix.
func StripConflictPrefix(display string) string {
	if idx := strings.LastIndex(display, ConflictPrefixEnd); idx >= 0 {
		return display[idx+len(ConflictPrefixEnd):]
	}
	return display
}

// SplitLabel parses a label, with or without conflict prefix, into its four names.
func SplitLabel(label string) (Resolved, error) {
	bare := StripConflictPrefix(label)
	parts := strings.Split(bare, labelSeparator)
	if len(parts) != 4 {
		return Resolved{}, fmt.Errorf("%w: %q has %d components", ErrUnresolvedLabel, label, len(parts))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return Resolved{BoardPin: parts[0], MCUPin: parts[1], Module: parts[2], Function: parts[3]}, nil
}

// ResolveLabel finds the candidate named by a label by exact match of every component.
func (c *Catalog) ResolveLabel(label string) (int, error) {
	r, err := SplitLabel(label)
	if err != nil {
		return -1, err
	}
	pinKey, ok := c.PinKey(r.BoardPin, r.MCUPin)
	if !ok {
		return -1, fmt.Errorf("%w: unknown pin %q/%q", ErrUnresolvedLabel, r.BoardPin, r.MCUPin)
	}
	moduleKey, ok := c.ModuleKey(r.Module)
	if !ok {
		return -1, fmt.Errorf("%w: unknown module %q", ErrUnresolvedLabel, r.Module)
	}
	functionKey, ok := c.FunctionKey(r.Function)
	if !ok {
		return -1, fmt.Errorf("%w: unknown function %q", ErrUnresolvedLabel, r.Function)
	}
	mfKey, ok := c.ModFuncKey(moduleKey, functionKey)
	if !ok {
		return -1, fmt.Errorf("%w: no pair %s/%s", ErrUnresolvedLabel, r.Module, r.Function)
	}
	key, ok := c.CandidateKey(pinKey, mfKey)
	if !ok {
		return -1, fmt.Errorf("%w: pin %s does not offer %s/%s", ErrUnresolvedLabel, r.BoardPin, r.Module, r.Function)
	}
	return key, nil
}
