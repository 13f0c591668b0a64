package application

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	mapping "pinmap/internal/mapping/domain"
	"pinmap/internal/observability/metrics"
	"pinmap/internal/platform/logger"
)

// Event types sent to the notifier.
const (
	EventRefresh = "refresh"
	EventError   = "error"
)

// barrierSlack leaves room for barriers on top of one pending change per entry.
const barrierSlack = 8

// State of the consumer.
type State int32

const (
	StateIdle State = iota
	StateDraining
)

func (s State) String() string {
	if s == StateDraining {
		return "draining"
	}
	return "idle"
}

// Notifier receives pipeline events.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// Event reports a published refresh or a failed request.
type Event struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
	Version   uint64 `json:"version,omitempty"`
	Entry     string `json:"entry,omitempty"`
	Label     string `json:"label,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

type envelope struct {
	id   string
	req  Request
	done chan struct{}
}

// Pipeline serializes change requests onto a single consumer that owns the grid. Producers
// only enqueue; readers use Snapshot.
type Pipeline struct {
	grid     *mapping.Grid
	queue    chan envelope
	notifier Notifier
	log      *logger.Logger
	clock    Clock
	buses    map[string]struct{}

	state    atomic.Int32
	running  atomic.Bool
	snapshot atomic.Pointer[Snapshot]

	// consumer-owned
	version uint64
	waiting []chan struct{}
	barrier []func(*mapping.Grid)
}

// PipelineOption customizes the pipeline.
type PipelineOption func(*Pipeline)

// WithNotifier assigns a notifier.
func WithNotifier(notifier Notifier) PipelineOption {
	return func(p *Pipeline) {
		p.notifier = notifier
	}
}

// WithLogger assigns a logger.
func WithLogger(log *logger.Logger) PipelineOption {
	return func(p *Pipeline) {
		if log != nil {
			p.log = log
		}
	}
}

// WithClock assigns a clock.
func WithClock(clock Clock) PipelineOption {
	return func(p *Pipeline) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// NewPipeline takes ownership of the grid and publishes its initial snapshot.
func NewPipeline(grid *mapping.Grid, opts ...PipelineOption) (*Pipeline, error) {
	if grid == nil {
		return nil, errors.New("pipeline: nil grid")
	}
	p := &Pipeline{
		grid:  grid,
		queue: make(chan envelope, grid.Len()+barrierSlack),
		log:   logger.Nop(),
		clock: systemClock{},
		buses: make(map[string]struct{}),
	}
	for _, tag := range grid.BusTags() {
		p.buses[tag] = struct{}{}
	}
	for _, opt := range opts {
		opt(p)
	}
	p.refresh(0, 0)
	return p, nil
}

// Submit enqueues a request and returns its id. It blocks only while the queue is full.
func (p *Pipeline) Submit(ctx context.Context, req Request) (string, error) {
	if req == nil {
		return "", errors.New("pipeline: nil request")
	}
	if err := p.validate(req); err != nil {
		return "", err
	}
	return p.enqueue(ctx, req, nil)
}

// Flush waits until every request submitted before it is applied and refreshed.
func (p *Pipeline) Flush(ctx context.Context) error {
	return p.Read(ctx, nil)
}

// Read runs fn on the consumer once every earlier request is applied and refreshed. fn must
// not retain the grid.
func (p *Pipeline) Read(ctx context.Context, fn func(*mapping.Grid)) error {
	done := make(chan struct{})
	if _, err := p.enqueue(ctx, barrier{fn: fn}, done); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns the last published state.
func (p *Pipeline) Snapshot() *Snapshot {
	return p.snapshot.Load()
}

// State reports whether the consumer is draining requests.
func (p *Pipeline) State() State {
	return State(p.state.Load())
}

// Pending returns the number of queued requests.
func (p *Pipeline) Pending() int {
	return len(p.queue)
}

// Run consumes requests until ctx is cancelled. Only one Run may be active.
func (p *Pipeline) Run(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return ErrPipelineRunning
	}
	defer p.running.Store(false)

	batch := 0
	trigger := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env := <-p.queue:
			p.state.Store(int32(StateDraining))
			if idx, ok := p.process(ctx, env); ok {
				trigger = idx
			}
			batch++
			metrics.SetPipelineQueue(len(p.queue))
			if len(p.queue) > 0 {
				continue
			}
			p.refresh(trigger, batch)
			batch = 0
			p.release()
			p.state.Store(int32(StateIdle))
		}
	}
}

func (p *Pipeline) enqueue(ctx context.Context, req Request, done chan struct{}) (string, error) {
	env := envelope{id: uuid.NewString(), req: req, done: done}
	select {
	case p.queue <- env:
		metrics.SetPipelineQueue(len(p.queue))
		return env.id, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// validate only touches state that is immutable after construction.
func (p *Pipeline) validate(req Request) error {
	switch r := req.(type) {
	case Assign:
		if _, ok := p.grid.Index(r.Entry); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownEntry, r.Entry)
		}
	case Clear:
		if _, ok := p.grid.Index(r.Entry); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownEntry, r.Entry)
		}
	case ClearBus:
		if _, ok := p.buses[r.Bus]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownBus, r.Bus)
		}
	}
	return nil
}

// process applies one request and returns the entry the refresh walk should start from.
func (p *Pipeline) process(ctx context.Context, env envelope) (int, bool) {
	log := p.log.With("request_id", env.id, "kind", env.req.Kind())
	switch req := env.req.(type) {
	case Assign:
		idx, _ := p.grid.Index(req.Entry)
		p.assign(ctx, log, env.id, idx, req.Label)
		return idx, true
	case Clear:
		idx, _ := p.grid.Index(req.Entry)
		p.apply(ctx, log, env, idx, func() error { return p.grid.Clear(idx) })
		return idx, true
	case ClearBus:
		bus, _ := p.grid.Bus(req.Bus)
		for _, idx := range bus.Members {
			p.apply(ctx, log, env, idx, func() error { return p.grid.Clear(idx) })
		}
		if len(bus.Members) == 0 {
			return 0, false
		}
		return bus.Members[0], true
	case ClearAll:
		for idx := 0; idx < p.grid.Len(); idx++ {
			p.apply(ctx, log, env, idx, func() error { return p.grid.Clear(idx) })
		}
		return 0, true
	case barrier:
		if env.done != nil {
			p.waiting = append(p.waiting, env.done)
		}
		if req.fn != nil {
			p.barrier = append(p.barrier, req.fn)
		}
		return 0, false
	}
	return 0, false
}

// assign resolves a submitted label against the entry's current legal set. A label that is
// not offered clears the entry.
func (p *Pipeline) assign(ctx context.Context, log *logger.Logger, id string, idx int, label string) {
	set := p.grid.LegalCandidates(idx)
	opt, ok := set.Lookup(label)
	if !ok {
		entry := p.grid.Entry(idx)
		err := &mapping.UnresolvedLabelError{Column: entry.Column, Row: entry.Row, Label: label}
		log.Warn("label not offered, clearing entry", "entry", entry.Coordinate().String(), "label", label)
		metrics.IncPipelineRequest(Assign{}.Kind(), metrics.RequestUnresolved)
		if clearErr := p.grid.Clear(idx); clearErr != nil {
			log.Error("clear failed", "error", clearErr)
		}
		p.notify(ctx, Event{Type: EventError, RequestID: id, Entry: entry.Coordinate().String(), Label: label, Error: err.Error()})
		return
	}
	p.apply(ctx, log, envelope{id: id, req: Assign{}}, idx, func() error { return p.grid.Apply(idx, opt) })
}

func (p *Pipeline) apply(ctx context.Context, log *logger.Logger, env envelope, idx int, fn func() error) {
	entry := p.grid.Entry(idx).Coordinate().String()
	if err := fn(); err != nil {
		log.Error("change failed", "entry", entry, "error", err)
		metrics.IncPipelineRequest(env.req.Kind(), metrics.RequestFailed)
		p.notify(ctx, Event{Type: EventError, RequestID: env.id, Entry: entry, Error: err.Error()})
		return
	}
	log.Debug("change applied", "entry", entry)
	metrics.IncPipelineRequest(env.req.Kind(), metrics.RequestApplied)
}

// refresh recomputes every entry, starting at trigger and walking outwards in both directions,
// then publishes a snapshot.
func (p *Pipeline) refresh(trigger, batch int) {
	start := p.clock.Now()
	n := p.grid.Len()
	sets := make([]mapping.OptionSet, n)
	if n > 0 {
		if trigger < 0 || trigger >= n {
			trigger = 0
		}
		sets[trigger] = p.grid.Recompute(trigger)
		for prev, next := trigger-1, trigger+1; prev >= 0 || next < n; prev, next = prev-1, next+1 {
			if prev >= 0 {
				sets[prev] = p.grid.Recompute(prev)
			}
			if next < n {
				sets[next] = p.grid.Recompute(next)
			}
		}
	}
	p.version++
	snap := buildSnapshot(p.grid, sets, p.version, p.clock.Now())
	p.snapshot.Store(snap)
	metrics.ObserveRefresh(batch, p.clock.Now().Sub(start))
	p.log.Debug("grid refreshed", "version", snap.Version, "batch", batch, "trigger", trigger)
	p.notify(context.Background(), Event{Type: EventRefresh, Version: snap.Version})
}

// release runs pending reads and wakes barrier waiters after a refresh.
func (p *Pipeline) release() {
	for _, fn := range p.barrier {
		fn(p.grid)
	}
	p.barrier = nil
	for _, done := range p.waiting {
		close(done)
	}
	p.waiting = nil
}

func (p *Pipeline) notify(ctx context.Context, event Event) {
	if p.notifier == nil {
		return
	}
	p.notifier.Notify(ctx, event)
}
