package mapping

import (
	"slices"
)

// Option is one selectable value of an entry. Candidate -1 is the unassigned option.
type Option struct {
	Candidate int
	Label     string
	Conflict  Conflict
}

// Display returns the option as shown to the user.
func (o Option) Display() string {
	if o.Candidate < 0 {
		return ""
	}
	return o.Conflict.Prefix() + o.Label
}

// OptionSet is the ordered legal set of an entry. Selected indexes Options, or is -1 when
// the assigned candidate is no longer offered.
type OptionSet struct {
	Entry    int
	Options  []Option
	Selected int
}

// Displays returns the display strings in option order.
func (s OptionSet) Displays() []string {
	out := make([]string, len(s.Options))
	for i, o := range s.Options {
		out[i] = o.Display()
	}
	return out
}

// Lookup finds an option by display string, falling back to the bare label.
func (s OptionSet) Lookup(value string) (Option, bool) {
	for _, o := range s.Options {
		if o.Display() == value {
			return o, true
		}
	}
	_, bare := ParseConflict(value)
	for _, o := range s.Options {
		if o.Candidate >= 0 && o.Label == bare {
			return o, true
		}
	}
	return Option{}, false
}

// LegalCandidates computes the options of entry i from the current grid state without
// modifying it.
func (g *Grid) LegalCandidates(i int) OptionSet {
	e := g.entries[i]
	ownPin, ownModFunc := -1, -1
	if e.Assigned() && e.Primary {
		cand := g.catalog.Candidate(e.Candidate)
		switch e.Conflict.Kind {
		case ConflictPin:
			ownModFunc = cand.ModFunc
		case ConflictFunc:
			ownPin = cand.Pin
		default:
			ownPin, ownModFunc = cand.Pin, cand.ModFunc
		}
	}
	usedPins, usedModFuncs := g.usage(ownPin, ownModFunc)
	modules := g.allowedModules(i)
	functions := g.allowedFunctions(i)

	set := OptionSet{Entry: i, Options: []Option{{Candidate: unassignedCandidate}}}
	if e.Assigned() {
		set.Selected = -1
	}
	for key, cand := range g.catalog.Candidates() {
		mf := g.catalog.ModFunc(cand.ModFunc)
		if _, ok := modules[mf.Module]; !ok {
			continue
		}
		if _, ok := functions[mf.Function]; !ok {
			continue
		}
		opt := Option{Candidate: key, Label: g.catalog.Label(key)}
		if _, used := usedPins[cand.Pin]; used {
			opt.Conflict = g.conflictFor(i, ConflictPin, g.catalog.CandidatesForPin(cand.Pin))
		}
		if _, used := usedModFuncs[cand.ModFunc]; used && opt.Conflict.Kind == ConflictNone {
			opt.Conflict = g.conflictFor(i, ConflictFunc, g.catalog.CandidatesForModFunc(cand.ModFunc))
		}
		if key == e.Candidate {
			set.Selected = len(set.Options)
		}
		set.Options = append(set.Options, opt)
	}
	return set
}

// Recompute refreshes entry i's option set and stores the conflict tag of its selected option.
func (g *Grid) Recompute(i int) OptionSet {
	set := g.LegalCandidates(i)
	if set.Selected > 0 {
		g.entries[i].Conflict = set.Options[set.Selected].Conflict
	}
	return set
}

// usage collects the pins and modfuncs referenced by assigned entries, minus the excluded keys.
func (g *Grid) usage(excludePin, excludeModFunc int) (map[int]struct{}, map[int]struct{}) {
	pins := make(map[int]struct{})
	modFuncs := make(map[int]struct{})
	for _, e := range g.entries {
		if !e.Assigned() {
			continue
		}
		cand := g.catalog.Candidate(e.Candidate)
		if cand.Pin != excludePin {
			pins[cand.Pin] = struct{}{}
		}
		if cand.ModFunc != excludeModFunc {
			modFuncs[cand.ModFunc] = struct{}{}
		}
	}
	return pins, modFuncs
}

// conflictFor tags a resource with its first primary holder other than entry i.
func (g *Grid) conflictFor(i int, kind ConflictKind, candidates []int) Conflict {
	for j, e := range g.entries {
		if j == i || !e.Assigned() || !e.Primary {
			continue
		}
		if slices.Contains(candidates, e.Candidate) {
			return Conflict{Kind: kind, Holder: e.holder()}
		}
	}
	return Conflict{}
}

func (g *Grid) allowedModules(i int) map[int]struct{} {
	e := g.entries[i]
	filter := g.filters[i].module
	allowed := make(map[int]struct{})

	if bus := g.buses[e.Bus]; e.Bus != "" && bus != nil && bus.Locked() {
		if filter.MatchString(g.catalog.Module(bus.Module)) {
			allowed[bus.Module] = struct{}{}
		}
		return allowed
	}

	var locked map[int]struct{}
	if e.Bus != "" {
		locked = g.lockedModules()
	}
	for key, name := range g.catalog.Modules() {
		if _, taken := locked[key]; taken {
			continue
		}
		if filter.MatchString(name) {
			allowed[key] = struct{}{}
		}
	}
	return allowed
}

func (g *Grid) allowedFunctions(i int) map[int]struct{} {
	filter := g.filters[i].function
	allowed := make(map[int]struct{})
	for key, name := range g.catalog.Functions() {
		if filter.MatchString(name) {
			allowed[key] = struct{}{}
		}
	}
	return allowed
}
