package catalog

import "slices"

// Sentinel cell values that mark an alternate function as unusable.
const (
	NotAvailable = "N/A"
	NotConnected = "N/C"
)

// IsSentinel reports whether an alternate-function cell holds no usable value.
func IsSentinel(value string) bool {
	return value == "" || value == NotAvailable || value == NotConnected
}

// Pin is one MCU-board pin row of the options table. Its key is the row index.
type Pin struct {
	BoardPin string
	MCUPin   string
	Comment  string
}

// ModFunc is a module/function pair observed in the options table.
type ModFunc struct {
	Module   int
	Function int
}

// Candidate is one alternate-function slot of a pin. Its key is its index in the catalog.
type Candidate struct {
	Pin     int
	ModFunc int
}

// Resolved is a candidate expressed by names.
type Resolved struct {
	BoardPin string
	MCUPin   string
	Module   string
	Function string
}

type pinName struct {
	board string
	mcu   string
}

// Catalog is the normalized, read-only relational form of an options table.
type Catalog struct {
	pins       []Pin
	modules    []string
	functions  []string
	modFuncs   []ModFunc
	candidates []Candidate

	pinKeys      map[pinName]int
	moduleKeys   map[string]int
	functionKeys map[string]int
	modFuncKeys  map[ModFunc]int
	candidateKey map[Candidate]int
	byPin        [][]int
	byModFunc    [][]int

	source Table
}

// Source returns a copy of the options table the catalog was built from.
func (c *Catalog) Source() Table { return c.source.Clone() }

func (c *Catalog) Pins() []Pin             { return slices.Clone(c.pins) }
func (c *Catalog) Modules() []string       { return slices.Clone(c.modules) }
func (c *Catalog) Functions() []string     { return slices.Clone(c.functions) }
func (c *Catalog) ModFuncs() []ModFunc     { return slices.Clone(c.modFuncs) }
func (c *Catalog) Candidates() []Candidate { return slices.Clone(c.candidates) }

func (c *Catalog) Pin(key int) Pin                { return c.pins[key] }
func (c *Catalog) Module(key int) string          { return c.modules[key] }
func (c *Catalog) Function(key int) string        { return c.functions[key] }
func (c *Catalog) ModFunc(key int) ModFunc        { return c.modFuncs[key] }
func (c *Catalog) Candidate(key int) Candidate    { return c.candidates[key] }
func (c *Catalog) NumCandidates() int             { return len(c.candidates) }
func (c *Catalog) ValidCandidate(key int) bool    { return key >= 0 && key < len(c.candidates) }
func (c *Catalog) CandidatesForPin(pin int) []int { return slices.Clone(c.byPin[pin]) }
func (c *Catalog) CandidateModule(key int) int    { return c.modFuncs[c.candidates[key].ModFunc].Module }
func (c *Catalog) CandidatesForModFunc(mf int) []int {
	return slices.Clone(c.byModFunc[mf])
}

// PinKey returns the first pin with the given board and MCU names.
func (c *Catalog) PinKey(boardPin, mcuPin string) (int, bool) {
	key, ok := c.pinKeys[pinName{board: boardPin, mcu: mcuPin}]
	return key, ok
}

// ModuleKey returns the key of a module name.
func (c *Catalog) ModuleKey(name string) (int, bool) {
	key, ok := c.moduleKeys[name]
	return key, ok
}

// FunctionKey returns the key of a function name.
func (c *Catalog) FunctionKey(name string) (int, bool) {
	key, ok := c.functionKeys[name]
	return key, ok
}

// ModFuncKey returns the key of a module/function pair.
func (c *Catalog) ModFuncKey(module, function int) (int, bool) {
	key, ok := c.modFuncKeys[ModFunc{Module: module, Function: function}]
	return key, ok
}

// CandidateKey returns the first candidate for a pin/modfunc combination.
func (c *Catalog) CandidateKey(pin, modFunc int) (int, bool) {
	key, ok := c.candidateKey[Candidate{Pin: pin, ModFunc: modFunc}]
	return key, ok
}

// Resolve expresses a candidate by names.
func (c *Catalog) Resolve(key int) Resolved {
	cand := c.candidates[key]
	pin := c.pins[cand.Pin]
	mf := c.modFuncs[cand.ModFunc]
	return Resolved{
		BoardPin: pin.BoardPin,
		MCUPin:   pin.MCUPin,
		Module:   c.modules[mf.Module],
		Function: c.functions[mf.Function],
	}
}
