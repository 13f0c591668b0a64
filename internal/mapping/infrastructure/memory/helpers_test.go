package memory

import (
	"context"
	"testing"

	"pinmap/internal/board"
	catalog "pinmap/internal/catalog/domain"
	"pinmap/internal/mapping/application"
	mapping "pinmap/internal/mapping/domain"
)

func testAdapter() board.Adapter {
	return board.Adapter{Revision: "B"}
}

func coord(column string, row int) mapping.Coordinate {
	return mapping.Coordinate{Column: column, Row: row}
}

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

func runSession(t *testing.T, s *application.Session) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}
