package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"pinmap/internal/mapping/application"
	"pinmap/internal/platform/logger"
)

// sourceFlags select generating from options/mapping files instead of importing.
type sourceFlags struct {
	options string
	mapping string
	notes   string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.options, "options", "", "options table (.csv or .xlsx)")
	cmd.Flags().StringVar(&f.mapping, "mapping", "", "mapping table (.csv or .xlsx)")
	cmd.Flags().StringVar(&f.notes, "notes", "", "notes file")
}

func (f *sourceFlags) generate() bool {
	return f.options != "" || f.mapping != ""
}

// eventLog logs pipeline errors and remembers them for the command result.
type eventLog struct {
	log *logger.Logger

	mu       sync.Mutex
	rejected []application.Event
	next     application.Notifier
}

func (l *eventLog) Notify(ctx context.Context, event application.Event) {
	if event.Type == application.EventError {
		l.log.Warn("change rejected", "entry", event.Entry, "label", event.Label, "error", event.Error)
		l.mu.Lock()
		l.rejected = append(l.rejected, event)
		l.mu.Unlock()
	}
	if l.next != nil {
		l.next.Notify(ctx, event)
	}
}

func (l *eventLog) failed() []application.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]application.Event(nil), l.rejected...)
}

// openSession creates a session, loads it from files or the import backend and starts its
// pipeline. stop cancels the pipeline and waits for it.
func (a *app) openSession(ctx context.Context, src sourceFlags, events *eventLog) (*application.Session, func(), error) {
	s, err := application.NewSession(a.cfg.Adapter,
		application.WithAuthor(a.cfg.Author),
		application.WithSessionLogger(a.log),
		application.WithSessionNotifier(events),
	)
	if err != nil {
		return nil, nil, err
	}
	if err := a.load(ctx, s, src); err != nil {
		return nil, nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- s.Run(runCtx) }()
	stop := func() {
		cancel()
		if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
			a.log.Error("pipeline stopped", "error", err)
		}
	}
	return s, stop, nil
}

func (a *app) load(ctx context.Context, s *application.Session, src sourceFlags) error {
	if !src.generate() {
		backend, err := a.dataBackend(ctx, a.cfg.Import)
		if err != nil {
			return err
		}
		return s.Import(ctx, backend, a.cfg.Import.Dir)
	}
	if src.options == "" || src.mapping == "" {
		return errors.New("both --options and --mapping are required")
	}
	options, err := readTable(ctx, src.options)
	if err != nil {
		return err
	}
	mappingTable, err := readTable(ctx, src.mapping)
	if err != nil {
		return err
	}
	if err := s.Generate(options, mappingTable); err != nil {
		return err
	}
	if src.notes != "" {
		notes, err := os.ReadFile(src.notes)
		if err != nil {
			return fmt.Errorf("read notes: %w", err)
		}
		s.SetNotes(string(notes))
	}
	return nil
}
