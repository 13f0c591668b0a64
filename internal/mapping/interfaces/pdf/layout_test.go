package pdf

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinmap/internal/board"
	"pinmap/internal/mapping/application"
)

func sampleReport() application.Report {
	adapter := board.Adapter{}.WithDefaults()
	return application.Report{
		Name:    adapter.Name(),
		Title:   adapter.Title(),
		Adapter: adapter,
		Author:  "jdoe",
		Date:    time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC),
		Notes:   "* Use 3V3 only\n\n- Jumper J4 - closed",
		Columns: []string{"C", "D"},
		Rows:    []int{1, 2},
		Entries: []application.ReportEntry{
			{Position: "C1", Signal: "SPI_MOSI", ColumnIndex: 0, RowIndex: 0, Assigned: true, BoardPin: "J1.2", MCUPin: "P0_1", Module: "SPI0", Function: "MOSI"},
			{Position: "C2", Signal: "LED", ColumnIndex: 0, RowIndex: 1},
			{Position: "D2", Signal: "UART_TX", ColumnIndex: 1, RowIndex: 1, Assigned: true, BoardPin: "J2.1", MCUPin: "P1_4", Module: "UART1", Function: "TX"},
		},
	}
}

func TestLayout_SinglePage(t *testing.T) {
	groups := Layout(sampleReport())
	require.Len(t, groups, 2)

	elo, sw := groups[0], groups[1]
	assert.Equal(t, GroupELO, elo.Name)
	require.Len(t, elo.Pages, 1)
	require.Len(t, sw.Pages, 1)

	page := elo.Pages[0]
	for _, table := range page {
		assert.Equal(t, [2]string{"Baseboard", "MCU Board Pin"}, table[0])
	}
	assert.Equal(t, [2]string{"C1: SPI_MOSI", "J1.2 - P0_1"}, page[0][1])
	assert.Equal(t, [2]string{"C2: LED", ""}, page[0][2])
	assert.Equal(t, [2]string{"D2: UART_TX", "J2.1 - P1_4"}, page[1][2])
	assert.Equal(t, [2]string{"", ""}, page[2][1])

	swPage := sw.Pages[0]
	assert.Equal(t, [2]string{"Baseboard", "MCU Pinfunction"}, swPage[0][0])
	assert.Equal(t, [2]string{"C1: SPI_MOSI", "P0_1 - SPI0_MOSI"}, swPage[0][1])
	assert.Equal(t, [2]string{"D2: UART_TX", "P1_4 - UART1_TX"}, swPage[1][2])
}

func TestLayout_Spill(t *testing.T) {
	r := application.Report{}
	for c := 0; c < 4; c++ {
		r.Columns = append(r.Columns, string(rune('A'+c)))
	}
	for row := 0; row < 40; row++ {
		r.Rows = append(r.Rows, row+1)
	}
	for c, column := range r.Columns {
		for row := range r.Rows {
			r.Entries = append(r.Entries, application.ReportEntry{
				Position:    column + strconv.Itoa(row+1),
				Signal:      "S",
				ColumnIndex: c,
				RowIndex:    row,
			})
		}
	}

	groups := Layout(r)
	pages := groups[0].Pages
	require.Len(t, pages, 4)
	// Column band 0: rows 1-32 then 33-40.
	assert.Equal(t, "A1: S", pages[0][0][1][0])
	assert.Equal(t, "A32: S", pages[0][0][32][0])
	assert.Equal(t, "A33: S", pages[1][0][1][0])
	assert.Equal(t, "C40: S", pages[1][2][8][0])
	// Column band 1 holds the fourth grid column.
	assert.Equal(t, "D1: S", pages[2][0][1][0])
	assert.Equal(t, "D40: S", pages[3][0][8][0])
	assert.Equal(t, "", pages[3][1][1][0])
}

func TestLayout_EmptyGrid(t *testing.T) {
	groups := Layout(application.Report{})
	assert.Empty(t, groups[0].Pages)
	assert.Empty(t, groups[1].Pages)
}

func TestNoteLines(t *testing.T) {
	assert.Equal(t, []string{"Use 3V3 only", "Jumper J4 - closed"}, NoteLines("* Use 3V3 only\n\n- Jumper J4 - closed\n"))
	assert.Empty(t, NoteLines(""))
}

func TestBackend_Render(t *testing.T) {
	b := NewBackend()
	data, err := b.Render(context.Background(), sampleReport())
	require.NoError(t, err)
	assert.True(t, len(data) > 4)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestBackend_WriteReport(t *testing.T) {
	b := NewBackend()
	r := sampleReport()
	location := filepath.Join(t.TempDir(), r.Name, r.Name+b.Ext())
	require.NoError(t, b.WriteReport(context.Background(), location, r))
	info, err := os.Stat(location)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestBackend_RenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewBackend().Render(ctx, sampleReport())
	assert.ErrorIs(t, err, context.Canceled)
}
