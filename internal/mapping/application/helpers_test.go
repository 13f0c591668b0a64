package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	catalog "pinmap/internal/catalog/domain"
	mapping "pinmap/internal/mapping/domain"
)

const (
	labelP1F1 = "J1.1 - P1 - ModA - Func1"
	labelP1F2 = "J1.1 - P1 - ModA - Func2"
	labelP2F1 = "J1.2 - P2 - ModB - Func1"
)

func optionsTable() catalog.Table {
	return catalog.NewTable(
		[]string{"Board-Pin", "MCU-Pin", "Comment", "ALT0-Module", "ALT0-Function", "ALT1-Module", "ALT1-Function"},
		[][]string{
			{"J1.1", "P1", "", "ModA", "Func1", "ModA", "Func2"},
			{"J1.2", "P2", "", "ModB", "Func1", "ModB", "Func2"},
			{"J1.3", "P3", "", "ModA", "Func2", "GPIO", "IO"},
		},
	)
}

func mappingTable() catalog.Table {
	return catalog.NewTable(
		[]string{"Column", "Row", "Bus", "Signal", "Status", "Regex-Module", "Regex-Function"},
		[][]string{
			{"C", "1", "B", "SIG_TX", "Open", "Mod", "Func1"},
			{"C", "2", "B", "SIG_RX/ALT", "Closed", "Mod", "Func2"},
			{"D", "1", "", "LED", "", "GPIO|ModA", "IO|Func"},
			{"D", "2", "S", "SPI_MOSI", "", "ModB", "."},
			{"D", "3", "S", "SPI_CLK", "", "Mod", "Func1"},
		},
	)
}

func newTestGrid(t *testing.T) *mapping.Grid {
	t.Helper()
	cat, err := catalog.Build(optionsTable())
	require.NoError(t, err)
	g, err := mapping.NewGrid(cat, mappingTable())
	require.NoError(t, err)
	return g
}

func pos(column string, row int) mapping.Coordinate {
	return mapping.Coordinate{Column: column, Row: row}
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (n *recordingNotifier) Notify(_ context.Context, event Event) {
	n.mu.Lock()
	n.events = append(n.events, event)
	n.mu.Unlock()
}

func (n *recordingNotifier) ofType(eventType string) []Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []Event
	for _, e := range n.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type fixedClock struct{}

func (fixedClock) Now() time.Time { return time.Date(2024, 5, 17, 9, 0, 0, 0, time.UTC) }

// runPipeline starts the consumer and stops it when the test ends.
func runPipeline(t *testing.T, run func(context.Context) error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func flush(t *testing.T, p *Pipeline) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, p.Flush(ctx))
}
