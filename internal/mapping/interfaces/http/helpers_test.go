package http

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pinmap/internal/board"
	catalog "pinmap/internal/catalog/domain"
	"pinmap/internal/mapping/application"
)

const labelP1F1 = "J1.1 - P1 - ModA - Func1"

func optionsTable() catalog.Table {
	return catalog.NewTable(
		[]string{"Board-Pin", "MCU-Pin", "Comment", "ALT0-Module", "ALT0-Function", "ALT1-Module", "ALT1-Function"},
		[][]string{
			{"J1.1", "P1", "", "ModA", "Func1", "ModA", "Func2"},
			{"J1.2", "P2", "", "ModB", "Func1", "ModB", "Func2"},
		},
	)
}

func mappingTable() catalog.Table {
	return catalog.NewTable(
		[]string{"Column", "Row", "Bus", "Signal", "Status", "Regex-Module", "Regex-Function"},
		[][]string{
			{"C", "1", "B", "SIG_TX", "", "Mod", "Func1"},
			{"C", "2", "B", "SIG_RX", "", "Mod", "Func2"},
		},
	)
}

func newLoadedSession(t *testing.T, opts ...application.SessionOption) *application.Session {
	t.Helper()
	s, err := application.NewSession(board.Adapter{}, opts...)
	require.NoError(t, err)
	require.NoError(t, s.Generate(optionsTable(), mappingTable()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return s
}

func flushSession(t *testing.T, s *application.Session) {
	t.Helper()
	p, err := s.Pipeline()
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, p.Flush(ctx))
}
