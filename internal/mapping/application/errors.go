package application

import (
	"errors"
	"fmt"
)

var (
	// ErrStateNotReady is returned when a session is used before import or generate.
	ErrStateNotReady = errors.New("mapping: session not loaded")
	// ErrUnsupported is matched by every UnsupportedOperationError.
	ErrUnsupported = errors.New("mapping: unsupported backend operation")
	// ErrUnknownEntry is returned for requests naming a position outside the grid.
	ErrUnknownEntry = errors.New("mapping: unknown entry")
	// ErrUnknownBus is returned for clear requests naming a missing bus.
	ErrUnknownBus = errors.New("mapping: unknown bus")
	// ErrPipelineRunning is returned when a second consumer is started.
	ErrPipelineRunning = errors.New("mapping: pipeline already running")
)

// UnsupportedOperationError reports a backend lacking a capability.
type UnsupportedOperationError struct {
	Backend   string
	Operation string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("mapping: backend %s cannot %s", e.Backend, e.Operation)
}

func (e *UnsupportedOperationError) Is(target error) bool {
	return target == ErrUnsupported
}
