package csvfile

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalog "pinmap/internal/catalog/domain"
	"pinmap/internal/mapping/application"
)

func TestBackend_TableRoundTrip(t *testing.T) {
	ctx := context.Background()
	b := NewBackend()
	location := filepath.Join(t.TempDir(), "Adapter_A", "mapping.csv")
	table := catalog.NewTable(
		[]string{"Column", "Row", "Signal"},
		[][]string{{"C", "1", "SPI_MOSI, 3V3"}, {"D", "", `quoted "x"`}},
	)

	require.NoError(t, b.WriteTable(ctx, location, table))
	got, err := b.ReadTable(ctx, location)
	require.NoError(t, err)
	assert.Equal(t, table, got)
}

func TestBackend_RaggedRows(t *testing.T) {
	b := NewBackend(WithComma(';'))
	got, err := b.decode(strings.NewReader("Board-Pin;MCU-Pin;ALT0-Module\nJ1.1;P1\n"), "in")
	require.NoError(t, err)
	assert.Equal(t, []string{"J1.1", "P1"}, got.Rows[0])

	normalized, err := got.Normalize("options")
	require.NoError(t, err)
	assert.Equal(t, []string{"J1.1", "P1", ""}, normalized.Rows[0])
}

func TestBackend_EmptyFile(t *testing.T) {
	_, err := NewBackend().decode(strings.NewReader(""), "empty.csv")
	assert.ErrorIs(t, err, catalog.ErrFormat)
}

func TestBackend_Notes(t *testing.T) {
	ctx := context.Background()
	b := NewBackend()
	dir := t.TempDir()

	_, err := b.ReadNotes(ctx, filepath.Join(dir, "notes.md"))
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	location := filepath.Join(dir, "nested", "notes.md")
	require.NoError(t, b.WriteNotes(ctx, location, "* first\n- second"))
	notes, err := b.ReadNotes(ctx, location)
	require.NoError(t, err)
	assert.Equal(t, "* first\n- second", notes)
}

func TestBackend_NoBundle(t *testing.T) {
	var backend application.DataBackend = NewBackend()
	assert.False(t, backend.SupportsBundle())
	assert.Equal(t, ".csv", backend.DataExt())
	assert.Equal(t, ".md", backend.TextExt())

	_, err := backend.ReadBundle(context.Background(), "x")
	assert.ErrorIs(t, err, application.ErrUnsupported)
}
