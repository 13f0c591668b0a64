package application

import (
	"time"

	mapping "pinmap/internal/mapping/domain"
)

// Snapshot is an immutable view of the grid published after every refresh.
type Snapshot struct {
	Version   uint64      `json:"version"`
	UpdatedAt time.Time   `json:"updated_at"`
	Columns   []string    `json:"columns"`
	Rows      []int       `json:"rows"`
	Entries   []EntryView `json:"entries"`
	Buses     []BusView   `json:"buses"`
}

// EntryView is the front-end state of one entry.
type EntryView struct {
	Position  string   `json:"position"`
	Column    string   `json:"column"`
	Row       int      `json:"row"`
	Signal    string   `json:"signal"`
	Bus       string   `json:"bus"`
	Status    string   `json:"status"`
	Open      bool     `json:"open"`
	Candidate int      `json:"candidate"`
	Selected  string   `json:"selected"`
	Index     int      `json:"selected_index"`
	Primary   bool     `json:"primary"`
	Options   []string `json:"options"`
}

// BusView is the lock state of one bus.
type BusView struct {
	Tag     string   `json:"tag"`
	Locked  bool     `json:"locked"`
	Module  string   `json:"module,omitempty"`
	Members []string `json:"members"`
}

// Entry finds an entry view by position, e.g. "C3".
func (s *Snapshot) Entry(position string) (EntryView, bool) {
	if s == nil {
		return EntryView{}, false
	}
	for _, e := range s.Entries {
		if e.Position == position {
			return e, true
		}
	}
	return EntryView{}, false
}

// Bus finds a bus view by tag.
func (s *Snapshot) Bus(tag string) (BusView, bool) {
	if s == nil {
		return BusView{}, false
	}
	for _, b := range s.Buses {
		if b.Tag == tag {
			return b, true
		}
	}
	return BusView{}, false
}

func buildSnapshot(g *mapping.Grid, sets []mapping.OptionSet, version uint64, now time.Time) *Snapshot {
	columns, rows := g.Shape()
	snap := &Snapshot{
		Version:   version,
		UpdatedAt: now,
		Columns:   columns,
		Rows:      rows,
		Entries:   make([]EntryView, 0, g.Len()),
	}
	for i, e := range g.Entries() {
		view := EntryView{
			Position:  e.Coordinate().String(),
			Column:    e.Column,
			Row:       e.Row,
			Signal:    e.Signal,
			Bus:       e.Bus,
			Status:    e.Status,
			Open:      e.Open(),
			Candidate: e.Candidate,
			Selected:  e.Display(),
			Primary:   e.Primary,
		}
		if i < len(sets) {
			view.Options = sets[i].Displays()
			view.Index = sets[i].Selected
		}
		snap.Entries = append(snap.Entries, view)
	}
	for _, bus := range g.Buses() {
		view := BusView{Tag: bus.Tag, Locked: bus.Locked(), Members: make([]string, 0, len(bus.Members))}
		if bus.Locked() {
			view.Module = g.Catalog().Module(bus.Module)
		}
		for _, idx := range bus.Members {
			view.Members = append(view.Members, g.Entry(idx).Coordinate().String())
		}
		snap.Buses = append(snap.Buses, view)
	}
	return snap
}
