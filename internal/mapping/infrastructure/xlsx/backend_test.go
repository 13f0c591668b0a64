package xlsx

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalog "pinmap/internal/catalog/domain"
	"pinmap/internal/mapping/application"
)

func sampleBundle() application.Bundle {
	return application.Bundle{
		Options: catalog.NewTable(
			[]string{"Board-Pin", "MCU-Pin", "Comment", "ALT0-Module", "ALT0-Function"},
			[][]string{{"J1.1", "P1", "", "ModA", "Func1"}, {"J1.2", "P2", "", "", ""}},
		),
		Mapping: catalog.NewTable(
			[]string{"Column", "Row", "Bus", "Signal", "Status", "Regex-Module", "Regex-Function", "Mapped-PinModFunc", "Mapped-PinModFunc-Key", "Primary"},
			[][]string{{"C", "1", "B", "SIG_TX", "", "Mod", "Func1", "J1.1 - P1 - ModA - Func1", "0", "x"}},
		),
		Notes: "* check\n- verify",
	}
}

func TestBackend_BundleRoundTrip(t *testing.T) {
	ctx := context.Background()
	b := NewBackend()
	location := filepath.Join(t.TempDir(), "out", "Adapter_A.xlsx")

	want := sampleBundle()
	require.NoError(t, b.WriteBundle(ctx, location, want))
	got, err := b.ReadBundle(ctx, location)
	require.NoError(t, err)

	assert.Equal(t, want.Options, got.Options)
	assert.Equal(t, want.Mapping, got.Mapping)
	assert.Equal(t, want.Notes, got.Notes)
}

func TestBackend_SingleTable(t *testing.T) {
	ctx := context.Background()
	b := NewBackend()
	location := filepath.Join(t.TempDir(), "options.xlsx")

	table := sampleBundle().Options
	require.NoError(t, b.WriteTable(ctx, location, table))
	got, err := b.ReadTable(ctx, location)
	require.NoError(t, err)
	assert.Equal(t, table, got)
}

func TestBackend_Capabilities(t *testing.T) {
	var backend application.DataBackend = NewBackend()
	assert.True(t, backend.SupportsBundle())
	assert.Equal(t, ".xlsx", backend.BundleExt())

	err := backend.WriteNotes(context.Background(), "notes.md", "x")
	assert.ErrorIs(t, err, application.ErrUnsupported)
}

func TestBackend_MissingFile(t *testing.T) {
	_, err := NewBackend().ReadBundle(context.Background(), filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
}
