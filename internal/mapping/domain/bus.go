package mapping

import "slices"

// Bus groups entries that must resolve to one module.
type Bus struct {
	Tag     string
	Members []int
	// Module is the locked module key, -1 when no member is assigned.
	Module int
}

func (b Bus) Locked() bool {
	return b.Module >= 0
}

func (b Bus) clone() Bus {
	b.Members = slices.Clone(b.Members)
	return b
}

// updateBusLock locks a bus to the module of its first assigned member.
func (g *Grid) updateBusLock(tag string) {
	if tag == "" {
		return
	}
	bus, ok := g.buses[tag]
	if !ok {
		return
	}
	bus.Module = -1
	for _, idx := range bus.Members {
		if e := g.entries[idx]; e.Assigned() {
			bus.Module = g.catalog.CandidateModule(e.Candidate)
			break
		}
	}
}

func (g *Grid) lockedModules() map[int]struct{} {
	locked := make(map[int]struct{})
	for _, bus := range g.buses {
		if bus.Locked() {
			locked[bus.Module] = struct{}{}
		}
	}
	return locked
}
