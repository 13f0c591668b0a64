package application

import (
	mapping "pinmap/internal/mapping/domain"
)

// Request is a change submitted to the pipeline.
type Request interface {
	Kind() string
	isRequest()
}

// Assign selects a label for an entry. An empty label clears the entry.
type Assign struct {
	Entry mapping.Coordinate
	Label string
}

// Clear resets an entry to unassigned.
type Clear struct {
	Entry mapping.Coordinate
}

// ClearBus resets every member of a bus. "" addresses the ungrouped entries.
type ClearBus struct {
	Bus string
}

// ClearAll resets every entry.
type ClearAll struct{}

// barrier runs fn on the consumer once every earlier request is applied and refreshed.
type barrier struct {
	fn func(*mapping.Grid)
}

func (Assign) Kind() string   { return "assign" }
func (Clear) Kind() string    { return "clear" }
func (ClearBus) Kind() string { return "clear_bus" }
func (ClearAll) Kind() string { return "clear_all" }
func (barrier) Kind() string  { return "barrier" }

func (Assign) isRequest()   {}
func (Clear) isRequest()    {}
func (ClearBus) isRequest() {}
func (ClearAll) isRequest() {}
func (barrier) isRequest()  {}
