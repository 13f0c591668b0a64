package application

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	"pinmap/internal/board"
	catalog "pinmap/internal/catalog/domain"
	mapping "pinmap/internal/mapping/domain"
	"pinmap/internal/observability/metrics"
	"pinmap/internal/platform/logger"
)

// File names inside a session directory.
const (
	MappingFile = "mapping"
	OptionsFile = "options"
	NotesFile   = "notes"
)

// ErrAlreadyLoaded is returned when a loaded session is imported or generated again.
var ErrAlreadyLoaded = errors.New("mapping: session already loaded")

// Session is one adapter being edited: its catalog, grid pipeline and notes.
type Session struct {
	adapter  board.Adapter
	author   string
	log      *logger.Logger
	clock    Clock
	notifier Notifier

	mu       sync.RWMutex
	catalog  *catalog.Catalog
	pipeline *Pipeline
	notes    string
}

// SessionOption customizes a session.
type SessionOption func(*Session)

// WithAuthor sets the report author.
func WithAuthor(author string) SessionOption {
	return func(s *Session) {
		s.author = author
	}
}

// WithSessionLogger assigns a logger.
func WithSessionLogger(log *logger.Logger) SessionOption {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// WithSessionNotifier forwards pipeline events to notifier.
func WithSessionNotifier(notifier Notifier) SessionOption {
	return func(s *Session) {
		s.notifier = notifier
	}
}

// WithSessionClock assigns a clock.
func WithSessionClock(clock Clock) SessionOption {
	return func(s *Session) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewSession creates an empty session for an adapter. Missing board metadata gets defaults.
func NewSession(adapter board.Adapter, opts ...SessionOption) (*Session, error) {
	adapter = adapter.WithDefaults()
	if err := adapter.Validate(); err != nil {
		return nil, err
	}
	s := &Session{
		adapter: adapter,
		log:     logger.Nop(),
		clock:   systemClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("adapter", adapter.Name())
	return s, nil
}

// Name is the adapter name used for export locations.
func (s *Session) Name() string {
	return s.adapter.Name()
}

func (s *Session) Adapter() board.Adapter {
	return s.adapter
}

// Generate loads a fresh session from an options table and a mapping table.
func (s *Session) Generate(options, mappingTable catalog.Table) error {
	return s.load(options, mappingTable, "")
}

// Import loads a session previously written by Export from dir.
func (s *Session) Import(ctx context.Context, backend DataBackend, dir string) (err error) {
	if backend == nil {
		return errors.New("session: nil backend")
	}
	start := s.clock.Now()
	defer func() {
		metrics.ObserveImport(backend.Name(), resultOf(err), s.clock.Now().Sub(start))
	}()

	var bundle Bundle
	if backend.SupportsBundle() {
		bundle, err = backend.ReadBundle(ctx, BundleLocation(dir, s.Name(), backend))
		if err != nil {
			return err
		}
	} else {
		base := DirectoryLocation(dir, s.Name())
		if bundle.Mapping, err = backend.ReadTable(ctx, filepath.Join(base, MappingFile+backend.DataExt())); err != nil {
			return err
		}
		if bundle.Options, err = backend.ReadTable(ctx, filepath.Join(base, OptionsFile+backend.DataExt())); err != nil {
			return err
		}
		bundle.Notes, err = backend.ReadNotes(ctx, filepath.Join(base, NotesFile+backend.TextExt()))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	if err = s.load(bundle.Options, bundle.Mapping, bundle.Notes); err != nil {
		return err
	}
	s.log.Info("session imported", "backend", backend.Name(), "dir", dir)
	return nil
}

// Export writes the current state to dir and, when report is not nil, renders the report to
// dir/<name>/<name><ext>.
func (s *Session) Export(ctx context.Context, data DataBackend, report ReportBackend, dir string) error {
	if data == nil {
		return errors.New("session: nil backend")
	}
	bundle, err := s.Bundle(ctx)
	if err != nil {
		return err
	}
	if err := s.writeBundle(ctx, data, dir, bundle); err != nil {
		return err
	}
	if report == nil {
		return nil
	}
	return s.WriteReport(ctx, report, dir)
}

func (s *Session) writeBundle(ctx context.Context, data DataBackend, dir string, bundle Bundle) (err error) {
	start := s.clock.Now()
	defer func() {
		metrics.ObserveExport(data.Name(), resultOf(err), s.clock.Now().Sub(start))
	}()
	if data.SupportsBundle() {
		err = data.WriteBundle(ctx, BundleLocation(dir, s.Name(), data), bundle)
		if err == nil {
			s.log.Info("session exported", "backend", data.Name(), "dir", dir)
		}
		return err
	}
	base := DirectoryLocation(dir, s.Name())
	if err = data.WriteTable(ctx, filepath.Join(base, OptionsFile+data.DataExt()), bundle.Options); err != nil {
		return err
	}
	if err = data.WriteTable(ctx, filepath.Join(base, MappingFile+data.DataExt()), bundle.Mapping); err != nil {
		return err
	}
	if err = data.WriteNotes(ctx, filepath.Join(base, NotesFile+data.TextExt()), bundle.Notes); err != nil {
		return err
	}
	s.log.Info("session exported", "backend", data.Name(), "dir", base)
	return nil
}

// WriteReport renders the report into dir/<name>/<name><ext>.
func (s *Session) WriteReport(ctx context.Context, report ReportBackend, dir string) (err error) {
	if report == nil {
		return errors.New("session: nil report backend")
	}
	start := s.clock.Now()
	defer func() {
		metrics.ObserveReport(report.Name(), resultOf(err), s.clock.Now().Sub(start))
	}()
	r, err := s.BuildReport(ctx)
	if err != nil {
		return err
	}
	location := filepath.Join(DirectoryLocation(dir, s.Name()), s.Name()+report.Ext())
	if err = report.WriteReport(ctx, location, r); err != nil {
		return err
	}
	s.log.Info("report written", "backend", report.Name(), "location", location)
	return nil
}

// Bundle returns the exportable state once every pending change is applied.
func (s *Session) Bundle(ctx context.Context) (Bundle, error) {
	p, cat, err := s.loaded()
	if err != nil {
		return Bundle{}, err
	}
	var bundle Bundle
	if err := p.Read(ctx, func(g *mapping.Grid) {
		bundle.Mapping = g.ExportTable()
	}); err != nil {
		return Bundle{}, err
	}
	bundle.Options = cat.Source()
	bundle.Notes = s.Notes()
	return bundle, nil
}

// BuildReport collects the report data once every pending change is applied.
func (s *Session) BuildReport(ctx context.Context) (Report, error) {
	p, _, err := s.loaded()
	if err != nil {
		return Report{}, err
	}
	notes := s.Notes()
	date := s.clock.Now()
	var r Report
	if err := p.Read(ctx, func(g *mapping.Grid) {
		r = buildReport(g, s.adapter, s.author, date, notes)
	}); err != nil {
		return Report{}, err
	}
	return r, nil
}

// Notes returns the free-text notes.
func (s *Session) Notes() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notes
}

// SetNotes replaces the free-text notes.
func (s *Session) SetNotes(notes string) {
	s.mu.Lock()
	s.notes = notes
	s.mu.Unlock()
}

// Pipeline returns the change pipeline of a loaded session.
func (s *Session) Pipeline() (*Pipeline, error) {
	p, _, err := s.loaded()
	return p, err
}

// Catalog returns the options catalog of a loaded session.
func (s *Session) Catalog() (*catalog.Catalog, error) {
	_, cat, err := s.loaded()
	return cat, err
}

// Snapshot returns the last published grid state.
func (s *Session) Snapshot() (*Snapshot, error) {
	p, _, err := s.loaded()
	if err != nil {
		return nil, err
	}
	return p.Snapshot(), nil
}

// Submit forwards a change request to the pipeline.
func (s *Session) Submit(ctx context.Context, req Request) (string, error) {
	p, _, err := s.loaded()
	if err != nil {
		return "", err
	}
	return p.Submit(ctx, req)
}

// Run consumes change requests until ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	p, _, err := s.loaded()
	if err != nil {
		return err
	}
	return p.Run(ctx)
}

// BusTags returns the sorted bus tags of a loaded session.
func (s *Session) BusTags() ([]string, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	tags := make([]string, 0, len(snap.Buses))
	for _, b := range snap.Buses {
		tags = append(tags, b.Tag)
	}
	return tags, nil
}

// Shape returns the number of grid rows and columns.
func (s *Session) Shape() (rows, columns int, err error) {
	snap, err := s.Snapshot()
	if err != nil {
		return 0, 0, err
	}
	return len(snap.Rows), len(snap.Columns), nil
}

func (s *Session) load(options, mappingTable catalog.Table, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pipeline != nil {
		return ErrAlreadyLoaded
	}
	cat, err := catalog.Build(options)
	if err != nil {
		return fmt.Errorf("load options: %w", err)
	}
	grid, err := mapping.NewGrid(cat, mappingTable)
	if err != nil {
		return fmt.Errorf("load mapping: %w", err)
	}
	p, err := NewPipeline(grid, WithNotifier(s.notifier), WithLogger(s.log), WithClock(s.clock))
	if err != nil {
		return err
	}
	s.catalog = cat
	s.pipeline = p
	s.notes = notes
	s.log.Info("session loaded", "entries", grid.Len(), "candidates", cat.NumCandidates())
	return nil
}

func (s *Session) loaded() (*Pipeline, *catalog.Catalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.pipeline == nil {
		return nil, nil, ErrStateNotReady
	}
	return s.pipeline, s.catalog, nil
}

// BundleLocation is the location of a bundle for backends with bundle support.
func BundleLocation(dir, name string, backend DataBackend) string {
	return filepath.Join(dir, name+backend.BundleExt())
}

// DirectoryLocation is the session directory for backends without bundle support.
func DirectoryLocation(dir, name string) string {
	return filepath.Join(dir, name)
}

func resultOf(err error) string {
	if err != nil {
		return metrics.ResultError
	}
	return metrics.ResultSuccess
}
