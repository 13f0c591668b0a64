package mapping

import (
	"fmt"

	catalog "pinmap/internal/catalog/domain"
)

// Apply assigns the option's candidate to entry i, or clears the entry for the unassigned
// option. It updates primary designation and the entry's bus lock. Option sets are not
// recomputed.
func (g *Grid) Apply(i int, opt Option) error {
	if err := g.checkIndex(i); err != nil {
		return err
	}
	if opt.Candidate >= 0 && !g.catalog.ValidCandidate(opt.Candidate) {
		return fmt.Errorf("%w: candidate %d: %w", ErrInvariant, opt.Candidate, catalog.ErrCandidateRange)
	}

	e := &g.entries[i]
	previous := e.Candidate
	wasPrimary := e.Assigned() && e.Primary

	if opt.Candidate < 0 {
		e.Candidate = unassignedCandidate
		e.Label = ""
		e.Conflict = Conflict{}
		e.Primary = false
	} else {
		e.Candidate = opt.Candidate
		e.Label = g.catalog.Label(opt.Candidate)
		e.Conflict = opt.Conflict
		e.Primary = g.sharers(opt.Candidate) <= 1
	}

	if wasPrimary {
		g.transferPrimary(previous)
	}
	g.updateBusLock(e.Bus)
	return nil
}

// Clear resets entry i to unassigned.
func (g *Grid) Clear(i int) error {
	return g.Apply(i, Option{Candidate: unassignedCandidate})
}

// ApplyLabel assigns the candidate named by a display string or bare label, or clears the entry
// for "". Labels that do not resolve in the catalog are invariant violations and leave the grid
// untouched.
func (g *Grid) ApplyLabel(i int, display string) error {
	if err := g.checkIndex(i); err != nil {
		return err
	}
	if display == "" {
		return g.Clear(i)
	}
	conflict, label := ParseConflict(display)
	key, err := g.catalog.ResolveLabel(label)
	if err != nil {
		return fmt.Errorf("%w: entry %s: %w", ErrInvariant, g.entries[i].Coordinate(), err)
	}
	return g.Apply(i, Option{Candidate: key, Label: label, Conflict: conflict})
}

// sharers counts assigned entries whose candidate shares the pin or modfunc of key, taking the
// larger of the two counts. The count includes an entry already holding key.
func (g *Grid) sharers(key int) int {
	target := g.catalog.Candidate(key)
	pins, modFuncs := 0, 0
	for _, e := range g.entries {
		if !e.Assigned() {
			continue
		}
		cand := g.catalog.Candidate(e.Candidate)
		if cand.Pin == target.Pin {
			pins++
		}
		if cand.ModFunc == target.ModFunc {
			modFuncs++
		}
	}
	return max(pins, modFuncs)
}

// transferPrimary promotes the first entry in table order still using the pin, or else the
// modfunc, of a candidate whose primary holder went away.
func (g *Grid) transferPrimary(previous int) {
	old := g.catalog.Candidate(previous)
	usedPins, usedModFuncs := g.usage(-1, -1)

	var shares func(catalog.Candidate) bool
	if _, ok := usedPins[old.Pin]; ok {
		shares = func(c catalog.Candidate) bool { return c.Pin == old.Pin }
	} else if _, ok := usedModFuncs[old.ModFunc]; ok {
		shares = func(c catalog.Candidate) bool { return c.ModFunc == old.ModFunc }
	} else {
		return
	}

	for j := range g.entries {
		e := &g.entries[j]
		if e.Assigned() && shares(g.catalog.Candidate(e.Candidate)) {
			e.Primary = true
			e.Conflict = Conflict{}
			return
		}
	}
}
